package main

import (
	"os"

	"github.com/freightwatch-systems/risk-engine/cmd/riskctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
