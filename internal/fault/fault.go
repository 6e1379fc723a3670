// Package fault implements the per-service fault-injection registry.
//
// Each service instance owns exactly one Registry. Operations add or refresh
// a single fault entry keyed by kind (and dependency target for outages);
// they never queue. A fault is active while now < StartedAt+Duration; a zero
// Duration means the fault has no expiry and persists until process restart.
package fault

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies a fault variant.
type Kind string

// Fault kinds.
const (
	KindCPUStress        Kind = "cpu_stress"
	KindLatencyInjection Kind = "latency_injection"
	KindErrorInjection   Kind = "error_injection"
	KindMemoryGrowth     Kind = "memory_growth"
	KindDependencyOutage Kind = "dependency_outage"
)

// DependencyTarget names a downstream dependency affected by an outage fault.
type DependencyTarget string

// Dependency targets.
const (
	TargetDatabase DependencyTarget = "database"
	TargetCache    DependencyTarget = "cache"
)

// Recognized error types for error injection. Unrecognized types degrade to
// ErrorTypeGeneric rather than being rejected.
const (
	ErrorTypeGeneric = "generic"
	ErrorTypeTimeout = "timeout"
)

// ErrInvalidParameter is returned when a fault operation receives a malformed
// or out-of-range parameter. The registry is never mutated in that case.
var ErrInvalidParameter = errors.New("invalid fault parameter")

// Params carries the kind-specific parameters of a fault.
type Params struct {
	// Intensity is the target CPU load fraction for cpu_stress, in (0, 1].
	Intensity float64 `json:"intensity,omitempty"`

	// Delay is the added response delay for latency_injection, or the added
	// per-operation delay for a cache outage.
	Delay time.Duration `json:"delay,omitempty"`

	// ErrorType selects the failure mode for error_injection.
	ErrorType string `json:"error_type,omitempty"`

	// SizeMB is the allocation size for memory_growth.
	SizeMB int `json:"size_mb,omitempty"`
}

// Fault is one active or expired fault entry.
type Fault struct {
	Kind      Kind             `json:"kind"`
	Target    DependencyTarget `json:"target,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Params    Params           `json:"params"`
}

// Active reports whether the fault is active at the given instant.
// Faults with zero duration never expire.
func (f Fault) Active(now time.Time) bool {
	if f.Duration == 0 {
		return true
	}
	return now.Before(f.StartedAt.Add(f.Duration))
}

// ExpiresAt returns the expiry instant and true, or a zero time and false
// for faults without an expiry.
func (f Fault) ExpiresAt() (time.Time, bool) {
	if f.Duration == 0 {
		return time.Time{}, false
	}
	return f.StartedAt.Add(f.Duration), true
}

func (f Fault) String() string {
	if f.Target != "" {
		return fmt.Sprintf("%s(%s)", f.Kind, f.Target)
	}
	return string(f.Kind)
}

func invalidParam(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
