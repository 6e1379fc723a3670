// Package health derives a point-in-time service health classification from
// the active fault set and baseline resource readings. Health is computed at
// query time and never stored.
package health

import (
	"runtime"

	"github.com/faultmesh/faultmesh/internal/fault"
)

// Status classifies service operability.
type Status string

// Health statuses.
const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// LeakDegradedThresholdMB is the leaked-memory level above which a memory
// growth fault degrades health on its own.
const LeakDegradedThresholdMB = 64

// ServiceHealth is the derived health of one service instance.
type ServiceHealth struct {
	Status     Status  `json:"status"`
	LatencyMs  float64 `json:"latency_ms"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memory_mb"`
}

// Baseline holds resource readings taken with no faults applied.
type Baseline struct {
	CPUPercent float64
	MemoryMB   float64
}

// RuntimeBaseline samples the current process for baseline readings.
func RuntimeBaseline() Baseline {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Baseline{
		CPUPercent: 0,
		MemoryMB:   float64(ms.HeapAlloc) / (1 << 20),
	}
}

// Evaluate computes ServiceHealth from a registry snapshot. Pure: it has no
// side effects and is safe to call concurrently with injector operations as
// long as the snapshot itself was taken consistently.
func Evaluate(snap fault.Snapshot, base Baseline) ServiceHealth {
	h := ServiceHealth{
		Status:     StatusHealthy,
		CPUPercent: base.CPUPercent,
		MemoryMB:   base.MemoryMB + float64(snap.LeakedMB),
	}

	degraded := false
	unhealthy := false

	for _, f := range snap.Faults {
		switch f.Kind {
		case fault.KindErrorInjection, fault.KindDependencyOutage:
			unhealthy = true
		case fault.KindCPUStress:
			degraded = true
			h.CPUPercent = base.CPUPercent + f.Params.Intensity*100
			if h.CPUPercent > 100 {
				h.CPUPercent = 100
			}
		case fault.KindLatencyInjection:
			degraded = true
			h.LatencyMs = float64(f.Params.Delay.Milliseconds())
		case fault.KindMemoryGrowth:
			if f.Params.SizeMB > LeakDegradedThresholdMB {
				degraded = true
			}
		}
	}

	switch {
	case unhealthy:
		h.Status = StatusUnhealthy
	case degraded:
		h.Status = StatusDegraded
	}
	return h
}
