package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display task activity metrics",
	Long: `Display counters derived from the event log: tasks created, updated,
completed and deleted, plus a breakdown by event type.`,
	Args:    cobra.NoArgs,
	PreRunE: openEventLog,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (event log may be disabled)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			return writeJSON(out, metrics)
		}

		fmt.Fprintf(out, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks created:", metrics.TasksCreated)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks updated:", metrics.TasksUpdated)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks completed:", metrics.TasksCompleted)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks deleted:", metrics.TasksDeleted)
		fmt.Fprintf(out, "  %-24s %d\n", "Distinct tasks:", metrics.TasksTouched)

		if len(metrics.EventsByType) > 0 {
			fmt.Fprintln(out, "\n  Events by type:")
			types := make([]string, 0, len(metrics.EventsByType))
			for eventType := range metrics.EventsByType {
				types = append(types, eventType)
			}
			sort.Strings(types)
			for _, eventType := range types {
				fmt.Fprintf(out, "    %-20s %d\n", eventType+":", metrics.EventsByType[eventType])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
