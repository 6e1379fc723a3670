package fault

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultErrorDuration bounds an error_injection fault when the caller
	// does not supply a duration.
	DefaultErrorDuration = 30 * time.Second

	burnFrame = 100 * time.Millisecond
	mb        = 1 << 20
)

type faultKey struct {
	kind   Kind
	target DependencyTarget
}

// Snapshot is a consistent view of the registry at one instant. Faults holds
// only entries active at the snapshot time.
type Snapshot struct {
	Taken    time.Time
	Faults   []Fault
	LeakedMB int
}

// Has reports whether the snapshot contains an active fault of the given kind.
func (s Snapshot) Has(kind Kind) bool {
	for _, f := range s.Faults {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// Get returns the active fault of the given kind, if any.
func (s Snapshot) Get(kind Kind) (Fault, bool) {
	for _, f := range s.Faults {
		if f.Kind == kind {
			return f, true
		}
	}
	return Fault{}, false
}

// HasOutage reports whether an active dependency outage targets dep.
func (s Snapshot) HasOutage(dep DependencyTarget) bool {
	for _, f := range s.Faults {
		if f.Kind == KindDependencyOutage && f.Target == dep {
			return true
		}
	}
	return false
}

// Registry holds the fault state of a single service instance. All reads and
// mutations are serialized by one mutex so health evaluation always observes
// a consistent active-fault set. Expiry is wall-clock based: an expired fault
// drops out of snapshots with no traffic required.
type Registry struct {
	log zerolog.Logger
	now func() time.Time

	mu     sync.Mutex
	faults map[faultKey]Fault

	// leaked holds allocations that are intentionally never released.
	// Growth is one-directional by design of the fault.
	leaked   [][]byte
	leakedMB int
}

// NewRegistry creates an empty fault registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		log:    log,
		now:    time.Now,
		faults: make(map[faultKey]Fault),
	}
}

// WithClock overrides the registry clock. Test hook.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// StressCPU begins synthetic CPU consumption for the given window and
// returns immediately; the burn runs on a background goroutine.
func (r *Registry) StressCPU(duration time.Duration, intensity float64) (Fault, error) {
	if duration <= 0 {
		return Fault{}, invalidParam("duration must be positive, got %v", duration)
	}
	if intensity <= 0 || intensity > 1 {
		return Fault{}, invalidParam("intensity must be in (0, 1], got %v", intensity)
	}

	f := Fault{
		Kind:      KindCPUStress,
		StartedAt: r.now(),
		Duration:  duration,
		Params:    Params{Intensity: intensity},
	}
	r.put(f)

	go r.burn(f.StartedAt.Add(duration), intensity)

	r.log.Warn().
		Dur("duration", duration).
		Float64("intensity", intensity).
		Msg("cpu stress fault injected")
	return f, nil
}

// burn consumes CPU in fixed frames with a busy/sleep duty cycle until the
// deadline passes. There is no early cancellation; accepted faults run out
// their window.
func (r *Registry) burn(deadline time.Time, intensity float64) {
	busy := time.Duration(float64(burnFrame) * intensity)
	idle := burnFrame - busy
	for r.now().Before(deadline) {
		frameEnd := time.Now().Add(busy)
		x := 0
		for time.Now().Before(frameEnd) {
			for i := 0; i < 10000; i++ {
				x += i * i
			}
		}
		_ = x
		if idle > 0 {
			time.Sleep(idle)
		}
	}
}

// SlowResponse delays every subsequent request by delay. A zero duration
// keeps the fault in place until process restart; there is no other way to
// clear it.
func (r *Registry) SlowResponse(delay, duration time.Duration) (Fault, error) {
	if delay < 0 {
		return Fault{}, invalidParam("delay must be non-negative, got %v", delay)
	}
	if duration < 0 {
		return Fault{}, invalidParam("duration must be non-negative, got %v", duration)
	}

	f := Fault{
		Kind:      KindLatencyInjection,
		StartedAt: r.now(),
		Duration:  duration,
		Params:    Params{Delay: delay},
	}
	r.put(f)

	r.log.Warn().
		Dur("delay", delay).
		Dur("duration", duration).
		Msg("latency fault injected")
	return f, nil
}

// TriggerError makes subsequent requests fail with the given error type for
// the window. Unrecognized types are kept but behave as generic failures.
// A zero duration falls back to DefaultErrorDuration.
func (r *Registry) TriggerError(errorType string, duration time.Duration) (Fault, error) {
	if duration < 0 {
		return Fault{}, invalidParam("duration must be non-negative, got %v", duration)
	}
	if duration == 0 {
		duration = DefaultErrorDuration
	}
	if errorType == "" {
		errorType = ErrorTypeGeneric
	}

	f := Fault{
		Kind:      KindErrorInjection,
		StartedAt: r.now(),
		Duration:  duration,
		Params:    Params{ErrorType: errorType},
	}
	r.put(f)

	r.log.Error().
		Str("error_type", errorType).
		Dur("duration", duration).
		Msg("error fault injected")
	return f, nil
}

// MemoryLeak grows resident memory by sizeMB and holds the allocation for
// the lifetime of the process. Cumulative across calls. Returns the total
// leaked so far in MB.
func (r *Registry) MemoryLeak(sizeMB int) (int, error) {
	if sizeMB <= 0 {
		return 0, invalidParam("size_mb must be positive, got %d", sizeMB)
	}

	buf := make([]byte, sizeMB*mb)
	// Touch each page so the allocation is actually resident.
	for i := 0; i < len(buf); i += 4096 {
		buf[i] = 1
	}

	r.mu.Lock()
	r.leaked = append(r.leaked, buf)
	r.leakedMB += sizeMB
	total := r.leakedMB
	r.faults[faultKey{kind: KindMemoryGrowth}] = Fault{
		Kind:      KindMemoryGrowth,
		StartedAt: r.now(),
		Params:    Params{SizeMB: total},
	}
	r.mu.Unlock()

	r.log.Warn().
		Int("size_mb", sizeMB).
		Int("total_leaked_mb", total).
		Msg("memory leak fault injected")
	return total, nil
}

// SimulateDBFailure blocks all relational-store access for the window.
func (r *Registry) SimulateDBFailure(duration time.Duration) (Fault, error) {
	if duration <= 0 {
		return Fault{}, invalidParam("duration must be positive, got %v", duration)
	}

	f := Fault{
		Kind:      KindDependencyOutage,
		Target:    TargetDatabase,
		StartedAt: r.now(),
		Duration:  duration,
	}
	r.put(f)

	r.log.Warn().Dur("duration", duration).Msg("database outage fault injected")
	return f, nil
}

// SimulateCacheLatency delays every cache operation by delay for the window.
func (r *Registry) SimulateCacheLatency(delay, duration time.Duration) (Fault, error) {
	if delay < 0 {
		return Fault{}, invalidParam("delay must be non-negative, got %v", delay)
	}
	if duration <= 0 {
		return Fault{}, invalidParam("duration must be positive, got %v", duration)
	}

	f := Fault{
		Kind:      KindDependencyOutage,
		Target:    TargetCache,
		StartedAt: r.now(),
		Duration:  duration,
		Params:    Params{Delay: delay},
	}
	r.put(f)

	r.log.Warn().
		Dur("delay", delay).
		Dur("duration", duration).
		Msg("cache latency fault injected")
	return f, nil
}

// RestoreDatabase clears a database outage fault before its window elapses.
func (r *Registry) RestoreDatabase() {
	r.clear(faultKey{kind: KindDependencyOutage, target: TargetDatabase})
	r.log.Info().Msg("database outage fault cleared")
}

// RestoreCache clears a cache latency fault before its window elapses.
func (r *Registry) RestoreCache() {
	r.clear(faultKey{kind: KindDependencyOutage, target: TargetCache})
	r.log.Info().Msg("cache latency fault cleared")
}

// Snapshot returns the set of faults active right now together with the
// cumulative leaked memory. Expired entries are swept as a side effect.
func (r *Registry) Snapshot() Snapshot {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{Taken: now, LeakedMB: r.leakedMB}
	for key, f := range r.faults {
		if !f.Active(now) {
			delete(r.faults, key)
			continue
		}
		snap.Faults = append(snap.Faults, f)
	}
	return snap
}

// ResponseDelay returns the delay an active latency fault imposes on the
// request path, or zero.
func (r *Registry) ResponseDelay() time.Duration {
	if f, ok := r.Snapshot().Get(KindLatencyInjection); ok {
		return f.Params.Delay
	}
	return 0
}

// InjectedError returns the active error type and true while an error fault
// is in effect.
func (r *Registry) InjectedError() (string, bool) {
	if f, ok := r.Snapshot().Get(KindErrorInjection); ok {
		return f.Params.ErrorType, true
	}
	return "", false
}

// DatabaseBlocked reports whether a database outage is currently active.
func (r *Registry) DatabaseBlocked() bool {
	return r.Snapshot().HasOutage(TargetDatabase)
}

// CacheDelay returns the delay an active cache outage imposes on store
// operations, or zero.
func (r *Registry) CacheDelay() time.Duration {
	snap := r.Snapshot()
	for _, f := range snap.Faults {
		if f.Kind == KindDependencyOutage && f.Target == TargetCache {
			return f.Params.Delay
		}
	}
	return 0
}

// LeakedMB returns the cumulative leaked memory in MB.
func (r *Registry) LeakedMB() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leakedMB
}

func (r *Registry) put(f Fault) {
	r.mu.Lock()
	r.faults[faultKey{kind: f.Kind, target: f.Target}] = f
	r.mu.Unlock()
}

func (r *Registry) clear(key faultKey) {
	r.mu.Lock()
	delete(r.faults, key)
	r.mu.Unlock()
}
