package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	taskmcp "github.com/valter-silva-au/taskdesk/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the taskdesk MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the taskdesk MCP server on stdio",
	Long: `Start the taskdesk MCP server on stdio transport.

The server exposes the task store as MCP tools that AI assistants can call:
list_tasks, get_task, create_task, update_task, delete_task, get_metrics.
It uses the configured store directly and does not need "taskdesk serve".`,
	Args:    cobra.NoArgs,
	PreRunE: openTaskService,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskSvc == nil {
			return fmt.Errorf("task service not initialized")
		}

		srv := taskmcp.NewServer(TaskSvc, MetricsCalc, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
