package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "taskdesk",
	Short: "taskdesk - a small task manager with an HTTP API and a terminal UI",
	Long: `taskdesk keeps a list of tasks (title, optional description, completion
flag) behind a JSON API.

Run "taskdesk serve" to start the API, then manage tasks interactively with
"taskdesk ui" or from scripts with the "taskdesk task" subcommands. AI
assistants can reach the same tasks through "taskdesk mcp serve".`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "taskdesk %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
