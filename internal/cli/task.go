package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdesk/internal/client"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

var (
	taskServer string
	taskJSON   bool

	taskTitle       string
	taskDescription string
	taskCompleted   bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks through the API (list, get, add, update, delete)",
	Long: `Task commands talk to a running taskdesk API, the same way the terminal
UI does. The API address defaults to client.base_url and can be overridden
with --server.`,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := newAPIClient(taskServer).ListTasks(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if taskJSON {
			return writeJSON(out, tasks)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks.")
			return nil
		}
		fmt.Fprintf(out, "%-36s  %-9s  %-30s  %s\n", "ID", "STATUS", "TITLE", "DESCRIPTION")
		for _, t := range tasks {
			fmt.Fprintf(out, "%-36s  %-9s  %-30s  %s\n", t.ID, t.StatusLabel(), t.Title, t.Description)
		}
		return nil
	},
}

var taskGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := newAPIClient(taskServer).GetTask(cmdContext(cmd), args[0])
		if err != nil {
			return fmt.Errorf("getting task %s: %w", args[0], err)
		}
		if taskJSON {
			return writeJSON(cmd.OutOrStdout(), task)
		}
		printTask(cmd.OutOrStdout(), task)
		return nil
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a task",
	Long: `Create a task. --title is required and must be at least 3 characters.
New tasks are pending unless --completed is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := newAPIClient(taskServer).CreateTask(cmdContext(cmd), taskRequestFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task added successfully: %s\n", task.ID)
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Long: `Update a task. --title is required; --description and --completed are
changed only when given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := newAPIClient(taskServer).UpdateTask(cmdContext(cmd), args[0], taskRequestFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("updating task %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task updated successfully: %s\n", task.ID)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newAPIClient(taskServer).DeleteTask(cmdContext(cmd), args[0]); err != nil {
			return fmt.Errorf("deleting task %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task deleted successfully: %s\n", args[0])
		return nil
	},
}

// taskRequestFromFlags sends only the flags the user set.
func taskRequestFromFlags(cmd *cobra.Command) client.TaskRequest {
	var req client.TaskRequest
	if cmd.Flags().Changed("title") {
		title := taskTitle
		req.Title = &title
	}
	if cmd.Flags().Changed("description") {
		desc := taskDescription
		req.Description = &desc
	}
	if cmd.Flags().Changed("completed") {
		done := taskCompleted
		req.Completed = &done
	}
	return req
}

func printTask(w io.Writer, t *models.Task) {
	fmt.Fprintf(w, "ID:          %s\n", t.ID)
	fmt.Fprintf(w, "Title:       %s\n", t.Title)
	fmt.Fprintf(w, "Description: %s\n", t.Description)
	fmt.Fprintf(w, "Status:      %s\n", t.StatusLabel())
	fmt.Fprintf(w, "Created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated:     %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func addTaskFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&taskTitle, "title", "", "Task title (at least 3 characters)")
	cmd.Flags().StringVar(&taskDescription, "description", "", "Task description")
	cmd.Flags().BoolVar(&taskCompleted, "completed", false, "Mark the task completed")
}

func init() {
	taskCmd.PersistentFlags().StringVar(&taskServer, "server", "", "API base URL (overrides client.base_url)")

	taskListCmd.Flags().BoolVar(&taskJSON, "json", false, "Output as JSON")
	taskGetCmd.Flags().BoolVar(&taskJSON, "json", false, "Output as JSON")
	addTaskFieldFlags(taskAddCmd)
	addTaskFieldFlags(taskUpdateCmd)

	taskCmd.AddCommand(taskListCmd, taskGetCmd, taskAddCmd, taskUpdateCmd, taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}

// cmdContext returns the command's context, or Background when RunE is
// invoked directly.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
