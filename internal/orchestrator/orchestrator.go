// Package orchestrator drives fault-injection scenarios and synthetic
// traffic against a topology of running services.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/resilience"
	"github.com/faultmesh/faultmesh/internal/topology"
)

// Chaos operation names as exposed under /chaos on every service.
const (
	OpStressCPU    = "stress-cpu"
	OpSlowResponse = "slow-response"
	OpTriggerError = "trigger-error"
	OpMemoryLeak   = "memory-leak"
	OpDBFailure    = "simulate-db-failure"
	OpRedisLatency = "simulate-redis-latency"
	OpRestoreDB    = "restore-db"
	OpRestoreRedis = "restore-redis"
)

const (
	defaultStepDelay   = 500 * time.Millisecond
	defaultConcurrency = 30
	defaultPace        = 300 * time.Millisecond
)

// FaultSpec names a chaos operation and its request body.
type FaultSpec struct {
	Operation string
	Body      any
}

// HealthStatus is the observed health of one service at a point in time.
type HealthStatus struct {
	Service   string  `json:"service"`
	Reachable bool    `json:"reachable"`
	Status    string  `json:"status"`
	CPU       float64 `json:"cpu_percent"`
	MemoryMB  float64 `json:"memory_mb"`
	Error     string  `json:"error,omitempty"`
}

// Config configures an Orchestrator. Zero durations and counts take
// the defaults documented on each field.
type Config struct {
	Topology *topology.Topology
	Client   *resilience.Client
	Logger   zerolog.Logger

	// StepDelay is the pause between cascade steps. Defaults to 500ms.
	StepDelay time.Duration

	// Concurrency is the number of parallel requests issued by
	// SimulateHighLoad. Defaults to 30.
	Concurrency int

	// Pace is the pause between synthetic traffic steps. Defaults to 300ms.
	Pace time.Duration
}

// Orchestrator applies faults and generates traffic. All state is held
// here; nothing is shared through package globals.
type Orchestrator struct {
	topo        *topology.Topology
	client      *resilience.Client
	log         zerolog.Logger
	stepDelay   time.Duration
	concurrency int
	pace        time.Duration
}

func New(cfg Config) *Orchestrator {
	if cfg.StepDelay <= 0 {
		cfg.StepDelay = defaultStepDelay
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Pace <= 0 {
		cfg.Pace = defaultPace
	}
	return &Orchestrator{
		topo:        cfg.Topology,
		client:      cfg.Client,
		log:         cfg.Logger,
		stepDelay:   cfg.StepDelay,
		concurrency: cfg.Concurrency,
		pace:        cfg.Pace,
	}
}

// ApplySingle injects one fault into the named service and immediately
// re-polls that service's health so the caller sees the effect.
func (o *Orchestrator) ApplySingle(ctx context.Context, service string, spec FaultSpec) (*HealthStatus, error) {
	target, ok := o.topo.Find(service)
	if !ok {
		return nil, fmt.Errorf("unknown service %q", service)
	}

	var ack models.ChaosResponse
	url := target.URL + "/chaos/" + spec.Operation
	if err := o.client.PostJSON(ctx, url, spec.Body, &ack); err != nil {
		return nil, fmt.Errorf("inject %s into %s: %w", spec.Operation, service, err)
	}
	o.log.Info().
		Str("service", service).
		Str("fault", spec.Operation).
		Str("status", ack.Status).
		Msg("fault injected")

	health := o.pollOne(ctx, target)
	return &health, nil
}

// CascadeFailure triggers a generic error fault on each named service in
// order, pausing StepDelay between steps. Unreachable services are
// logged and skipped; the cascade always runs to completion. It
// concludes with a health poll across the full topology.
func (o *Orchestrator) CascadeFailure(ctx context.Context, services []string) []HealthStatus {
	body := models.TriggerErrorRequest{ErrorType: "generic"}

	for i, name := range services {
		if i > 0 {
			select {
			case <-time.After(o.stepDelay):
			case <-ctx.Done():
				return o.PollHealth(ctx)
			}
		}

		target, ok := o.topo.Find(name)
		if !ok {
			o.log.Warn().Str("service", name).Msg("cascade step skipped: unknown service")
			continue
		}

		var ack models.ChaosResponse
		url := target.URL + "/chaos/" + OpTriggerError
		if err := o.client.PostJSON(ctx, url, body, &ack); err != nil {
			o.log.Warn().Err(err).Str("service", name).Msg("cascade step failed")
			continue
		}
		o.log.Info().Str("service", name).Int("step", i+1).Msg("cascade step applied")
	}

	return o.PollHealth(ctx)
}

// SimulateHighLoad fires Concurrency parallel read requests at the named
// service. Individual request failures are ignored; the call returns
// once every request has completed.
func (o *Orchestrator) SimulateHighLoad(ctx context.Context, service string) error {
	target, ok := o.topo.Find(service)
	if !ok {
		return fmt.Errorf("unknown service %q", service)
	}

	url := target.URL + target.ReadPath
	var wg sync.WaitGroup
	for i := 0; i < o.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Best effort: errors here are the point of the exercise.
			_ = o.client.GetJSON(ctx, url, nil)
		}()
	}
	wg.Wait()

	o.log.Info().
		Str("service", service).
		Int("requests", o.concurrency).
		Msg("load burst complete")
	return nil
}

// GenerateNormalTraffic simulates one shopper journey: paced reads
// across the topology followed by a single cart mutation. Failures are
// logged and ignored so traffic keeps flowing during an outage.
func (o *Orchestrator) GenerateNormalTraffic(ctx context.Context) {
	userID := fmt.Sprintf("user-%04d", rand.Intn(10000))

	for _, svc := range o.topo.Services {
		if err := o.client.GetJSON(ctx, svc.URL+svc.ReadPath, nil); err != nil {
			o.log.Debug().Err(err).Str("service", svc.Name).Msg("traffic read failed")
		}
		if !o.pause(ctx) {
			return
		}
	}

	cart, ok := o.topo.Find("cart")
	if !ok {
		return
	}

	if err := o.client.GetJSON(ctx, cart.URL+"/cart/"+userID, nil); err != nil {
		o.log.Debug().Err(err).Msg("traffic cart read failed")
	}
	if !o.pause(ctx) {
		return
	}

	item := fmt.Sprintf("PROD-%03d", 1+rand.Intn(5))
	add := map[string]any{"user_id": userID, "item_id": item, "quantity": 1}
	if err := o.client.PostJSON(ctx, cart.URL+"/cart/add", add, nil); err != nil {
		o.log.Debug().Err(err).Str("item", item).Msg("traffic cart add failed")
	}
}

// PollHealth probes every service in the topology concurrently.
// Results come back in topology order.
func (o *Orchestrator) PollHealth(ctx context.Context) []HealthStatus {
	results := make([]HealthStatus, len(o.topo.Services))
	var wg sync.WaitGroup
	for i, svc := range o.topo.Services {
		wg.Add(1)
		go func(i int, svc topology.Service) {
			defer wg.Done()
			results[i] = o.pollOne(ctx, svc)
		}(i, svc)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) pollOne(ctx context.Context, svc topology.Service) HealthStatus {
	var health models.HealthResponse
	if err := o.client.GetJSON(ctx, svc.URL+"/health", &health); err != nil {
		return HealthStatus{Service: svc.Name, Status: "unknown", Error: err.Error()}
	}
	return HealthStatus{
		Service:   svc.Name,
		Reachable: true,
		Status:    health.Status,
		CPU:       health.CPUPercent,
		MemoryMB:  health.MemoryMB,
	}
}

// pause sleeps for the traffic pace, returning false if ctx ended first.
func (o *Orchestrator) pause(ctx context.Context) bool {
	select {
	case <-time.After(o.pace):
		return true
	case <-ctx.Done():
		return false
	}
}

// NewClient builds the HTTP client the orchestrator uses: short
// timeout, no retries, so scenario timing stays deterministic.
func NewClient(timeout time.Duration) *resilience.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return resilience.NewClient(resilience.NoRetryClientConfig("orchestrator", timeout))
}
