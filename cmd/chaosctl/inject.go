package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/orchestrator"
)

var (
	injectDuration  float64
	injectIntensity float64
	injectDelay     float64
	injectErrorType string
	injectSizeMB    int
	injectDelayMs   int
)

var injectCmd = &cobra.Command{
	Use:   "inject <service> <operation>",
	Short: "Inject a single fault into one service",
	Long: "inject applies one chaos operation to the named service and reports the service's health immediately after.\n\n" +
		"Operations: " + strings.Join(operationNames(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, op := args[0], args[1]

		body, err := faultBody(op)
		if err != nil {
			return err
		}

		o, err := newOrchestrator(orchestrator.Config{})
		if err != nil {
			return err
		}

		health, err := o.ApplySingle(cmd.Context(), service, orchestrator.FaultSpec{
			Operation: op,
			Body:      body,
		})
		if err != nil {
			return err
		}
		return printJSON(health)
	},
}

func init() {
	injectCmd.Flags().Float64Var(&injectDuration, "duration", 10, "Fault duration in seconds")
	injectCmd.Flags().Float64Var(&injectIntensity, "intensity", 0.8, "CPU stress intensity in (0, 1]")
	injectCmd.Flags().Float64Var(&injectDelay, "delay", 2, "Added response delay in seconds")
	injectCmd.Flags().StringVar(&injectErrorType, "error-type", "generic", "Error mode: exception, timeout or generic")
	injectCmd.Flags().IntVar(&injectSizeMB, "size-mb", 10, "Memory to leak in MB")
	injectCmd.Flags().IntVar(&injectDelayMs, "delay-ms", 500, "Added cache latency in milliseconds")
}

func operationNames() []string {
	return []string{
		orchestrator.OpStressCPU,
		orchestrator.OpSlowResponse,
		orchestrator.OpTriggerError,
		orchestrator.OpMemoryLeak,
		orchestrator.OpDBFailure,
		orchestrator.OpRedisLatency,
		orchestrator.OpRestoreDB,
		orchestrator.OpRestoreRedis,
	}
}

func faultBody(op string) (any, error) {
	switch op {
	case orchestrator.OpStressCPU:
		return models.StressCPURequest{Duration: injectDuration, Intensity: injectIntensity}, nil
	case orchestrator.OpSlowResponse:
		return models.SlowResponseRequest{Delay: injectDelay, Duration: injectDuration}, nil
	case orchestrator.OpTriggerError:
		return models.TriggerErrorRequest{ErrorType: injectErrorType, Duration: injectDuration}, nil
	case orchestrator.OpMemoryLeak:
		return models.MemoryLeakRequest{SizeMB: injectSizeMB}, nil
	case orchestrator.OpDBFailure:
		return models.DBFailureRequest{Duration: injectDuration}, nil
	case orchestrator.OpRedisLatency:
		return models.RedisLatencyRequest{DelayMs: injectDelayMs, Duration: injectDuration}, nil
	case orchestrator.OpRestoreDB, orchestrator.OpRestoreRedis:
		return struct{}{}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q (one of: %s)", op, strings.Join(operationNames(), ", "))
	}
}
