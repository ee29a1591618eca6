package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdesk/internal/core"
)

// ProjectInit is the ProjectInitializer used by the init command.
// Set during application wiring.
var ProjectInit core.ProjectInitializer

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a taskdesk workspace",
	Long: `Write a .taskdesk.yaml with default settings and a .gitignore for the
task data into path (default: current directory).

Safe to run on existing workspaces -- files that already exist are skipped
and not overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		driver, _ := cmd.Flags().GetString("driver")
		addr, _ := cmd.Flags().GetString("addr")

		result, err := ProjectInit.Init(core.InitConfig{
			BasePath: absPath,
			Driver:   driver,
			Addr:     addr,
		})
		if err != nil {
			return fmt.Errorf("initializing workspace: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Created) > 0 {
			fmt.Fprintln(out, "Created:")
			for _, p := range result.Created {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(out, "  %s\n", rel)
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Fprintln(out, "Skipped (already exist):")
			for _, p := range result.Skipped {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(out, "  %s\n", rel)
			}
		}

		fmt.Fprintf(out, "\nWorkspace initialized at %s\n", absPath)
		return nil
	},
}

func init() {
	initCmd.Flags().String("driver", "sqlite", "Store driver (sqlite, yaml, mongo, memory)")
	initCmd.Flags().String("addr", "", "API listen address, e.g. :8080")
	rootCmd.AddCommand(initCmd)
}
