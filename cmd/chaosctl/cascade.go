package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/faultmesh/faultmesh/internal/orchestrator"
)

var cascadeStepDelay time.Duration

var cascadeCmd = &cobra.Command{
	Use:   "cascade [service...]",
	Short: "Trigger an ordered failure cascade across services",
	Long:  "cascade injects a generic error fault into each named service in order, pausing between steps. With no arguments the whole topology fails in declaration order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOrchestrator(orchestrator.Config{StepDelay: cascadeStepDelay})
		if err != nil {
			return err
		}

		topo, err := loadTopology()
		if err != nil {
			return err
		}
		services := args
		if len(services) == 0 {
			services = topo.Names()
		}

		health := o.CascadeFailure(cmd.Context(), services)
		return printJSON(health)
	},
}

func init() {
	cascadeCmd.Flags().DurationVar(&cascadeStepDelay, "step-delay", 500*time.Millisecond, "Pause between cascade steps")
}
