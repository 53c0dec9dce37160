// Package cmd implements the riskctl command tree.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "riskctl",
	Short: "FreightWatch risk engine CLI",
	Long: `riskctl is the command-line interface for the FreightWatch risk engine.

Inspect assessment history and the dead-letter queue of a running
risk-engine instance over its HTTP API.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8086", "risk engine base URL")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(assessmentsCmd)
	rootCmd.AddCommand(dlqCmd)
}
