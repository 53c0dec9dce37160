package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Dead-letter queue inspection",
	Long:  "Inspect records the engine could not process",
}

var dlqStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Dead-letter queue statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		client := newAPIClient(serverURL)

		stats, err := client.dlqStats()
		if err != nil {
			return fmt.Errorf("failed to get dlq stats: %w", err)
		}

		format, _ := cmd.Flags().GetString("output")
		if done, err := writeStructured(format, stats); done {
			return err
		}

		return writeJSON(stats)
	},
}

var dlqEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List dead-lettered records",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		client := newAPIClient(serverURL)

		limit, _ := cmd.Flags().GetInt("limit")

		events, err := client.dlqEvents(limit)
		if err != nil {
			return fmt.Errorf("failed to list dlq events: %w", err)
		}

		format, _ := cmd.Flags().GetString("output")
		if done, err := writeStructured(format, events); done {
			return err
		}

		if len(events) == 0 {
			fmt.Println("Dead-letter queue is empty")
			return nil
		}

		t := newTable("TIMESTAMP", "SUBJECT", "REASON", "DELIVERIES", "ERROR")
		for _, e := range events {
			t.addRow(
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Subject,
				e.Reason,
				fmt.Sprintf("%d", e.Deliveries),
				e.Error,
			)
		}
		t.render()
		return nil
	},
}

func init() {
	dlqEventsCmd.Flags().Int("limit", 100, "maximum records to fetch")

	dlqCmd.AddCommand(dlqStatsCmd)
	dlqCmd.AddCommand(dlqEventsCmd)
}
