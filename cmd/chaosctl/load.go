package main

import (
	"github.com/spf13/cobra"

	"github.com/faultmesh/faultmesh/internal/orchestrator"
)

var loadConcurrency int

var loadCmd = &cobra.Command{
	Use:   "load <service>",
	Short: "Fire a burst of concurrent requests at one service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOrchestrator(orchestrator.Config{Concurrency: loadConcurrency})
		if err != nil {
			return err
		}
		return o.SimulateHighLoad(cmd.Context(), args[0])
	},
}

func init() {
	loadCmd.Flags().IntVar(&loadConcurrency, "concurrency", 30, "Number of parallel requests")
}
