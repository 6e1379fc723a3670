package main

import (
	"github.com/spf13/cobra"

	"github.com/faultmesh/faultmesh/internal/orchestrator"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Poll the health of every service in the topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOrchestrator(orchestrator.Config{})
		if err != nil {
			return err
		}
		return printJSON(o.PollHealth(cmd.Context()))
	},
}
