package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdesk/internal/client"
	"github.com/valter-silva-au/taskdesk/internal/ui"
)

var (
	uiServer   string
	uiPageSize int
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Interactive task manager in the terminal",
	Long: `Launch the terminal task manager against a running taskdesk API.

Keys: a add, e edit, d delete, / search, 1/2/3 sort by title, comment or
status, s page size, left/right change page, q quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pageSize := uiPageSize
		if pageSize <= 0 {
			pageSize = config().UI.PageSize
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		model := ui.NewModel(ctx, newAPIClient(uiServer), pageSize)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running task UI: %w", err)
		}
		return nil
	},
}

// newAPIClient builds a client for server, falling back to client.base_url.
func newAPIClient(server string) *client.Client {
	cfg := config()
	if server == "" {
		server = cfg.Client.BaseURL
	}
	return client.New(server, cfg.Client.Timeout)
}

func init() {
	uiCmd.Flags().StringVar(&uiServer, "server", "", "API base URL (overrides client.base_url)")
	uiCmd.Flags().IntVar(&uiPageSize, "page-size", 0, "Rows per page (overrides ui.page_size)")
	rootCmd.AddCommand(uiCmd)
}
