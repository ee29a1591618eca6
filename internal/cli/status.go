package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

var statusFilter string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display tasks grouped by status",
	Long: `Display all tasks grouped into Pending and Completed.

Optionally show a single group with --filter pending or --filter completed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := strings.ToLower(statusFilter)
		if filter != "" && filter != "pending" && filter != "completed" {
			return fmt.Errorf("invalid --filter %q (use pending or completed)", statusFilter)
		}

		tasks, err := newAPIClient(taskServer).ListTasks(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("fetching tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		var pending, completed []models.Task
		for _, task := range tasks {
			if task.Completed {
				completed = append(completed, task)
			} else {
				pending = append(pending, task)
			}
		}

		if filter != "completed" {
			printStatusGroup(out, models.StatusLabelPending, pending)
		}
		if filter == "" {
			fmt.Fprintln(out)
		}
		if filter != "pending" {
			printStatusGroup(out, models.StatusLabelCompleted, completed)
		}
		return nil
	},
}

// printStatusGroup prints a table of tasks under a status heading.
func printStatusGroup(w io.Writer, status string, tasks []models.Task) {
	fmt.Fprintf(w, "== %s (%d) ==\n", strings.ToUpper(status), len(tasks))
	fmt.Fprintf(w, "  %-36s %s\n", "ID", "TITLE")
	fmt.Fprintf(w, "  %-36s %s\n", "--", "-----")
	for _, task := range tasks {
		fmt.Fprintf(w, "  %-36s %s\n", task.ID, task.Title)
	}
}

func init() {
	statusCmd.Flags().StringVar(&statusFilter, "filter", "", "Show one group (pending, completed)")
	statusCmd.Flags().StringVar(&taskServer, "server", "", "API base URL (overrides client.base_url)")
	rootCmd.AddCommand(statusCmd)
}
