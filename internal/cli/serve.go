package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdesk/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the task HTTP API",
	Long: `Start the JSON task API under /api/tasks.

The listen address defaults to server.addr from .taskdesk.yaml (":5000").
The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args:    cobra.NoArgs,
	PreRunE: openTaskService,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskSvc == nil {
			return fmt.Errorf("task service not initialized")
		}

		addr := serveAddr
		if addr == "" {
			addr = config().Server.Addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := api.NewServer(TaskSvc, logger())
		if err := srv.Run(ctx, addr); err != nil {
			return fmt.Errorf("running API server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
