package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assessmentsCmd = &cobra.Command{
	Use:   "assessments",
	Short: "Assessment history",
	Long:  "Inspect the risk assessment history of a running engine",
}

var assessmentsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List assessments",
	Long:    "List risk assessments, optionally filtered by shipment or risk level",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		client := newAPIClient(serverURL)

		shipmentID, _ := cmd.Flags().GetString("shipment")
		riskLevel, _ := cmd.Flags().GetString("level")
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := client.listAssessments(shipmentID, riskLevel, page, limit)
		if err != nil {
			return fmt.Errorf("failed to list assessments: %w", err)
		}

		format, _ := cmd.Flags().GetString("output")
		if done, err := writeStructured(format, resp); done {
			return err
		}

		if len(resp.Assessments) == 0 {
			fmt.Println("No assessments found")
			return nil
		}

		t := newTable("SHIPMENT", "LEVEL", "DELAY (MIN)", "DEGRADED", "ASSESSED AT")
		for _, a := range resp.Assessments {
			degraded := ""
			if a.Degraded {
				degraded = "yes"
			}
			t.addRow(
				a.ShipmentID,
				string(a.RiskLevel),
				fmt.Sprintf("%d", a.DelayMinutes),
				degraded,
				a.AssessedAt.Format("2006-01-02 15:04:05"),
			)
		}
		t.render()

		fmt.Printf("\nShowing %d of %d total assessments\n", len(resp.Assessments), resp.Pagination.Total)
		return nil
	},
}

var assessmentsLatestCmd = &cobra.Command{
	Use:   "latest [shipment-id]",
	Short: "Latest assessment for a shipment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		client := newAPIClient(serverURL)

		a, err := client.latestAssessment(args[0])
		if err != nil {
			return fmt.Errorf("failed to get latest assessment: %w", err)
		}

		format, _ := cmd.Flags().GetString("output")
		if done, err := writeStructured(format, a); done {
			return err
		}

		fmt.Printf("Shipment:    %s\n", a.ShipmentID)
		fmt.Printf("Risk level:  %s\n", a.RiskLevel)
		fmt.Printf("Reason:      %s\n", a.Reason)
		fmt.Printf("Delay:       %d minutes\n", a.DelayMinutes)
		fmt.Printf("Route risk:  %.2f\n", a.RouteRiskScore)
		fmt.Printf("Vendor ok:   %t\n", a.VendorReliable)
		fmt.Printf("Degraded:    %t\n", a.Degraded)
		fmt.Printf("Assessed at: %s\n", a.AssessedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	assessmentsListCmd.Flags().String("shipment", "", "filter by shipment ID")
	assessmentsListCmd.Flags().String("level", "", "filter by risk level (LOW, MEDIUM, HIGH)")
	assessmentsListCmd.Flags().Int("page", 1, "page number")
	assessmentsListCmd.Flags().Int("limit", 50, "page size")

	assessmentsCmd.AddCommand(assessmentsListCmd)
	assessmentsCmd.AddCommand(assessmentsLatestCmd)
}
