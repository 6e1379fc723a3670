// Package collector pulls telemetry from the services under test and
// normalizes it into flat records suitable for tabular export.
package collector

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/resilience"
	"github.com/faultmesh/faultmesh/internal/topology"
)

const (
	defaultTimeout = 5 * time.Second

	// Gauge names scraped from each service's exposition feed.
	cpuSecondsMetric     = "process_cpu_seconds_total"
	residentMemoryMetric = "process_resident_memory_bytes"

	syntheticTraceCount = 10
	logsPerService      = 5
)

// MetricRecord is one normalized telemetry sample. Source tells which
// endpoint produced it; Status is "error" when the source was
// unreachable and the numeric fields are zero.
type MetricRecord struct {
	Timestamp string  `json:"timestamp"`
	Service   string  `json:"service"`
	CPU       float64 `json:"cpu"`
	Memory    float64 `json:"memory"`
	Latency   int     `json:"latency"`
	Status    string  `json:"status"`
	Source    string  `json:"source"`
}

// LogRecord is one synthesized log line.
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// TraceRecord summarizes one distributed trace. Synthetic marks
// records fabricated because the trace store was unreachable.
type TraceRecord struct {
	TraceID   string `json:"traceId"`
	SpanCount int    `json:"spanCount"`
	Synthetic bool   `json:"synthetic"`
}

// Config configures a Collector.
type Config struct {
	Topology *topology.Topology
	Client   *resilience.Client
	Logger   zerolog.Logger

	// Timeout bounds each individual pull. Defaults to 5s.
	Timeout time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Collector holds the topology view for one collection cycle. It keeps
// no state between cycles; every call rebuilds its view from live queries.
type Collector struct {
	topo    *topology.Topology
	client  *resilience.Client
	log     zerolog.Logger
	timeout time.Duration
	now     func() time.Time
}

func New(cfg Config) *Collector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Collector{
		topo:    cfg.Topology,
		client:  cfg.Client,
		log:     cfg.Logger,
		timeout: cfg.Timeout,
		now:     cfg.Now,
	}
}

// CollectMetrics pulls the exposition feed and the health endpoint of
// every service. Each service contributes exactly two records per
// cycle, one per source; an unreachable source yields a zero-valued
// record with status "error" instead of a gap.
func (c *Collector) CollectMetrics(ctx context.Context) []MetricRecord {
	records := make([]MetricRecord, 0, 2*len(c.topo.Services))
	for _, svc := range c.topo.Services {
		records = append(records, c.scrapeFeed(ctx, svc), c.scrapeHealth(ctx, svc))
	}
	return records
}

func (c *Collector) scrapeFeed(ctx context.Context, svc topology.Service) MetricRecord {
	rec := MetricRecord{
		Timestamp: c.timestamp(),
		Service:   svc.Name,
		Status:    "error",
		Source:    "feed",
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.URL+"/metrics", nil)
	if err != nil {
		return rec
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("service", svc.Name).Msg("metrics feed unreachable")
		return rec
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("service", svc.Name).Msg("metrics feed refused")
		return rec
	}

	cpu, mem, err := parseGauges(resp.Body)
	if err != nil {
		c.log.Warn().Err(err).Str("service", svc.Name).Msg("metrics feed unparsable")
		return rec
	}

	rec.CPU = cpu
	rec.Memory = mem
	rec.Status = "ok"
	return rec
}

func (c *Collector) scrapeHealth(ctx context.Context, svc topology.Service) MetricRecord {
	rec := MetricRecord{
		Timestamp: c.timestamp(),
		Service:   svc.Name,
		Status:    "error",
		Source:    "health",
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var health models.HealthResponse
	if err := c.client.GetJSON(ctx, svc.URL+"/health", &health); err != nil {
		c.log.Warn().Err(err).Str("service", svc.Name).Msg("health endpoint unreachable")
		return rec
	}

	rec.CPU = health.CPUPercent
	rec.Memory = health.MemoryMB
	rec.Latency = int(health.LatencyMs)
	rec.Status = health.Status
	return rec
}

// parseGauges extracts the CPU-seconds and resident-memory samples
// from a text exposition feed. Memory is converted to megabytes.
func parseGauges(r io.Reader) (cpu, memoryMB float64, err error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(r)
	if err != nil {
		return 0, 0, fmt.Errorf("parse exposition: %w", err)
	}

	cpuFam, ok := families[cpuSecondsMetric]
	if !ok || len(cpuFam.GetMetric()) == 0 {
		return 0, 0, fmt.Errorf("gauge %s missing", cpuSecondsMetric)
	}
	memFam, ok := families[residentMemoryMetric]
	if !ok || len(memFam.GetMetric()) == 0 {
		return 0, 0, fmt.Errorf("gauge %s missing", residentMemoryMetric)
	}

	cpu = sampleValue(cpuFam.GetMetric()[0])
	memoryMB = sampleValue(memFam.GetMetric()[0]) / (1024 * 1024)
	return cpu, memoryMB, nil
}

func sampleValue(m *dto.Metric) float64 {
	if c := m.GetCounter(); c != nil {
		return c.GetValue()
	}
	if g := m.GetGauge(); g != nil {
		return g.GetValue()
	}
	if u := m.GetUntyped(); u != nil {
		return u.GetValue()
	}
	return 0
}

// CollectLogs synthesizes a fixed-size log sample per service, with the
// level mix biased by current health. There is no live log stream to
// tail, so this is a declared simulation, not a replay.
func (c *Collector) CollectLogs(ctx context.Context) []LogRecord {
	records := make([]LogRecord, 0, logsPerService*len(c.topo.Services))
	for _, svc := range c.topo.Services {
		healthy := true
		probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		var health models.HealthResponse
		if err := c.client.GetJSON(probeCtx, svc.URL+"/health", &health); err != nil || health.Status != "healthy" {
			healthy = false
		}
		cancel()

		for i := 0; i < logsPerService; i++ {
			level, msg := sampleLogLine(svc.Name, healthy)
			records = append(records, LogRecord{
				Timestamp: c.timestamp(),
				Service:   svc.Name,
				Level:     level,
				Message:   msg,
			})
		}
	}
	return records
}

func sampleLogLine(service string, healthy bool) (level, message string) {
	if healthy {
		// Mostly INFO with the occasional WARNING.
		if rand.Float64() < 0.8 {
			return "INFO", fmt.Sprintf("%s request completed", service)
		}
		return "WARNING", fmt.Sprintf("%s slow downstream call", service)
	}
	switch r := rand.Float64(); {
	case r < 0.5:
		return "ERROR", fmt.Sprintf("%s request failed", service)
	case r < 0.8:
		return "WARNING", fmt.Sprintf("%s degraded response", service)
	default:
		return "INFO", fmt.Sprintf("%s request completed", service)
	}
}

// jaegerTraces mirrors the trace query API's response shape.
type jaegerTraces struct {
	Data []struct {
		TraceID string `json:"traceID"`
		Spans   []struct {
			SpanID string `json:"spanID"`
		} `json:"spans"`
	} `json:"data"`
}

// CollectTraces pulls trace summaries from the external trace store.
// When the store is unreachable it synthesizes a fixed batch of
// placeholder traces, marked Synthetic so consumers can tell.
func (c *Collector) CollectTraces(ctx context.Context) []TraceRecord {
	seen := make(map[string]bool)
	var records []TraceRecord

	for _, svc := range c.topo.Services {
		probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		url := fmt.Sprintf("%s/api/traces?service=%s&limit=100&lookback=1h", c.topo.JaegerURL, svc.Name)
		var resp jaegerTraces
		err := c.client.GetJSON(probeCtx, url, &resp)
		cancel()
		if err != nil {
			c.log.Warn().Err(err).Str("service", svc.Name).Msg("trace store unreachable")
			continue
		}
		for _, tr := range resp.Data {
			if seen[tr.TraceID] {
				continue
			}
			seen[tr.TraceID] = true
			records = append(records, TraceRecord{TraceID: tr.TraceID, SpanCount: len(tr.Spans)})
		}
	}

	if len(records) == 0 {
		return c.syntheticTraces()
	}
	return records
}

func (c *Collector) syntheticTraces() []TraceRecord {
	records := make([]TraceRecord, 0, syntheticTraceCount)
	for i := 0; i < syntheticTraceCount; i++ {
		records = append(records, TraceRecord{
			TraceID:   fmt.Sprintf("synthetic-%032x", i+1),
			SpanCount: 1 + rand.Intn(8),
			Synthetic: true,
		})
	}
	return records
}

func (c *Collector) timestamp() string {
	return c.now().UTC().Format(time.RFC3339)
}
