package health_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/faultmesh/faultmesh/internal/fault"
	"github.com/faultmesh/faultmesh/internal/health"
)

func snapWith(leakedMB int, faults ...fault.Fault) fault.Snapshot {
	return fault.Snapshot{Taken: time.Now(), Faults: faults, LeakedMB: leakedMB}
}

func TestEvaluate_Healthy(t *testing.T) {
	h := health.Evaluate(snapWith(0), health.Baseline{CPUPercent: 3, MemoryMB: 40})
	assert.Equal(t, health.StatusHealthy, h.Status)
	assert.Equal(t, 3.0, h.CPUPercent)
	assert.Equal(t, 40.0, h.MemoryMB)
	assert.Zero(t, h.LatencyMs)
}

func TestEvaluate_Unhealthy(t *testing.T) {
	tests := []struct {
		name string
		f    fault.Fault
	}{
		{"error injection", fault.Fault{Kind: fault.KindErrorInjection, Params: fault.Params{ErrorType: "timeout"}}},
		{"database outage", fault.Fault{Kind: fault.KindDependencyOutage, Target: fault.TargetDatabase}},
		{"cache outage", fault.Fault{Kind: fault.KindDependencyOutage, Target: fault.TargetCache}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.Evaluate(snapWith(0, tt.f), health.Baseline{})
			assert.Equal(t, health.StatusUnhealthy, h.Status)
		})
	}
}

func TestEvaluate_Degraded(t *testing.T) {
	cpu := fault.Fault{Kind: fault.KindCPUStress, Params: fault.Params{Intensity: 0.8}}
	h := health.Evaluate(snapWith(0, cpu), health.Baseline{CPUPercent: 5})
	assert.Equal(t, health.StatusDegraded, h.Status)
	assert.Equal(t, 85.0, h.CPUPercent)

	slow := fault.Fault{Kind: fault.KindLatencyInjection, Params: fault.Params{Delay: 2 * time.Second}}
	h = health.Evaluate(snapWith(0, slow), health.Baseline{})
	assert.Equal(t, health.StatusDegraded, h.Status)
	assert.Equal(t, 2000.0, h.LatencyMs)
}

func TestEvaluate_MemoryGrowthThreshold(t *testing.T) {
	below := fault.Fault{Kind: fault.KindMemoryGrowth, Params: fault.Params{SizeMB: 10}}
	h := health.Evaluate(snapWith(10, below), health.Baseline{MemoryMB: 50})
	assert.Equal(t, health.StatusHealthy, h.Status, "small leaks do not degrade health")
	assert.Equal(t, 60.0, h.MemoryMB)

	above := fault.Fault{Kind: fault.KindMemoryGrowth, Params: fault.Params{SizeMB: 128}}
	h = health.Evaluate(snapWith(128, above), health.Baseline{MemoryMB: 50})
	assert.Equal(t, health.StatusDegraded, h.Status)
	assert.Equal(t, 178.0, h.MemoryMB)
}

func TestEvaluate_UnhealthyWinsOverDegraded(t *testing.T) {
	snap := snapWith(0,
		fault.Fault{Kind: fault.KindCPUStress, Params: fault.Params{Intensity: 0.5}},
		fault.Fault{Kind: fault.KindErrorInjection, Params: fault.Params{ErrorType: "generic"}},
	)
	h := health.Evaluate(snap, health.Baseline{})
	assert.Equal(t, health.StatusUnhealthy, h.Status)
}

func TestEvaluate_CPUCappedAtHundred(t *testing.T) {
	cpu := fault.Fault{Kind: fault.KindCPUStress, Params: fault.Params{Intensity: 1.0}}
	h := health.Evaluate(snapWith(0, cpu), health.Baseline{CPUPercent: 20})
	assert.Equal(t, 100.0, h.CPUPercent)
}
