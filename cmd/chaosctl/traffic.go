package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/faultmesh/faultmesh/internal/orchestrator"
)

var (
	trafficCycles int
	trafficPace   time.Duration
)

var trafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Generate synthetic shopper traffic",
	Long:  "traffic runs simulated shopper journeys against the topology: paced browsing followed by a cart mutation per cycle. Zero cycles runs until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOrchestrator(orchestrator.Config{Pace: trafficPace})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		for i := 0; trafficCycles == 0 || i < trafficCycles; i++ {
			if ctx.Err() != nil {
				return nil
			}
			o.GenerateNormalTraffic(ctx)
		}
		return nil
	},
}

func init() {
	trafficCmd.Flags().IntVar(&trafficCycles, "cycles", 1, "Number of shopper journeys to run (0 = until interrupted)")
	trafficCmd.Flags().DurationVar(&trafficPace, "pace", 300*time.Millisecond, "Pause between traffic steps")
}
