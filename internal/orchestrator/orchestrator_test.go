package orchestrator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/topology"
)

// recorder is an httptest target that logs every request it receives.
type recorder struct {
	mu   sync.Mutex
	hits []hit
	srv  *httptest.Server
}

type hit struct {
	method string
	path   string
	at     time.Time
	body   []byte
}

func newRecorder(t *testing.T, name string) *recorder {
	t.Helper()
	rec := &recorder{}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.hits = append(rec.hits, hit{method: r.Method, path: r.URL.Path, at: time.Now(), body: body})
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			json.NewEncoder(w).Encode(models.HealthResponse{
				Service:    name,
				Status:     "healthy",
				CPUPercent: 3.5,
				MemoryMB:   42,
			})
		default:
			json.NewEncoder(w).Encode(models.ChaosResponse{Status: "injected"})
		}
	}))
	t.Cleanup(rec.srv.Close)
	return rec
}

func (r *recorder) recorded(path string) []hit {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []hit
	for _, h := range r.hits {
		if h.path == path {
			out = append(out, h)
		}
	}
	return out
}

func newOrchestrator(t *testing.T, topo *topology.Topology, cfg Config) *Orchestrator {
	t.Helper()
	cfg.Topology = topo
	cfg.Client = NewClient(2 * time.Second)
	cfg.Logger = zerolog.Nop()
	return New(cfg)
}

func TestDefaults(t *testing.T) {
	o := New(Config{Topology: &topology.Topology{}})
	assert.Equal(t, 500*time.Millisecond, o.stepDelay)
	assert.Equal(t, 30, o.concurrency)
}

func TestApplySingle(t *testing.T) {
	cart := newRecorder(t, "cart")
	topo := &topology.Topology{Services: []topology.Service{
		{Name: "cart", URL: cart.srv.URL, ReadPath: "/products"},
	}}
	o := newOrchestrator(t, topo, Config{})

	health, err := o.ApplySingle(context.Background(), "cart", FaultSpec{
		Operation: OpStressCPU,
		Body:      models.StressCPURequest{Duration: 10, Intensity: 0.8},
	})
	require.NoError(t, err)

	require.Len(t, cart.recorded("/chaos/stress-cpu"), 1)
	require.Len(t, cart.recorded("/health"), 1)
	assert.True(t, health.Reachable)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 3.5, health.CPU)
}

func TestApplySingle_UnknownService(t *testing.T) {
	o := newOrchestrator(t, &topology.Topology{}, Config{})
	_, err := o.ApplySingle(context.Background(), "nope", FaultSpec{Operation: OpMemoryLeak})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown service")
}

func TestCascadeFailure_OrderAndSpacing(t *testing.T) {
	a := newRecorder(t, "cart")
	b := newRecorder(t, "payment")
	c := newRecorder(t, "inventory")
	topo := &topology.Topology{Services: []topology.Service{
		{Name: "cart", URL: a.srv.URL},
		{Name: "payment", URL: b.srv.URL},
		{Name: "inventory", URL: c.srv.URL},
	}}
	step := 80 * time.Millisecond
	o := newOrchestrator(t, topo, Config{StepDelay: step})

	health := o.CascadeFailure(context.Background(), []string{"cart", "payment", "inventory"})

	hitsA := a.recorded("/chaos/trigger-error")
	hitsB := b.recorded("/chaos/trigger-error")
	hitsC := c.recorded("/chaos/trigger-error")
	require.Len(t, hitsA, 1)
	require.Len(t, hitsB, 1)
	require.Len(t, hitsC, 1)

	assert.True(t, hitsA[0].at.Before(hitsB[0].at))
	assert.True(t, hitsB[0].at.Before(hitsC[0].at))
	assert.GreaterOrEqual(t, hitsB[0].at.Sub(hitsA[0].at), step)
	assert.GreaterOrEqual(t, hitsC[0].at.Sub(hitsB[0].at), step)

	assert.Contains(t, string(hitsA[0].body), `"error_type":"generic"`)

	require.Len(t, health, 3)
	for _, h := range health {
		assert.True(t, h.Reachable)
	}
}

func TestCascadeFailure_SurvivesUnreachableService(t *testing.T) {
	a := newRecorder(t, "cart")
	c := newRecorder(t, "inventory")
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	topo := &topology.Topology{Services: []topology.Service{
		{Name: "cart", URL: a.srv.URL},
		{Name: "payment", URL: deadURL},
		{Name: "inventory", URL: c.srv.URL},
	}}
	o := newOrchestrator(t, topo, Config{StepDelay: 10 * time.Millisecond})

	health := o.CascadeFailure(context.Background(), []string{"cart", "payment", "inventory"})

	require.Len(t, a.recorded("/chaos/trigger-error"), 1)
	require.Len(t, c.recorded("/chaos/trigger-error"), 1)

	require.Len(t, health, 3)
	assert.True(t, health[0].Reachable)
	assert.False(t, health[1].Reachable)
	assert.Equal(t, "unknown", health[1].Status)
	assert.NotEmpty(t, health[1].Error)
	assert.True(t, health[2].Reachable)
}

func TestSimulateHighLoad(t *testing.T) {
	inv := newRecorder(t, "inventory")
	topo := &topology.Topology{Services: []topology.Service{
		{Name: "inventory", URL: inv.srv.URL, ReadPath: "/inventory"},
	}}
	o := newOrchestrator(t, topo, Config{Concurrency: 12})

	require.NoError(t, o.SimulateHighLoad(context.Background(), "inventory"))
	assert.Len(t, inv.recorded("/inventory"), 12)
}

func TestSimulateHighLoad_UnknownService(t *testing.T) {
	o := newOrchestrator(t, &topology.Topology{}, Config{})
	require.Error(t, o.SimulateHighLoad(context.Background(), "ghost"))
}

func TestGenerateNormalTraffic(t *testing.T) {
	cart := newRecorder(t, "cart")
	topo := &topology.Topology{Services: []topology.Service{
		{Name: "cart", URL: cart.srv.URL, ReadPath: "/products"},
	}}
	o := newOrchestrator(t, topo, Config{Pace: time.Millisecond})

	o.GenerateNormalTraffic(context.Background())

	assert.Len(t, cart.recorded("/products"), 1)

	adds := cart.recorded("/cart/add")
	require.Len(t, adds, 1)
	assert.Equal(t, http.MethodPost, adds[0].method)
	assert.Contains(t, string(adds[0].body), `"quantity":1`)
	assert.Contains(t, string(adds[0].body), `"item_id":"PROD-0`)
}

func TestGenerateNormalTraffic_SilentOnFailure(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	topo := &topology.Topology{Services: []topology.Service{
		{Name: "cart", URL: deadURL, ReadPath: "/products"},
	}}
	o := newOrchestrator(t, topo, Config{Pace: time.Millisecond})

	// Must not panic or block; failures are discarded by policy.
	o.GenerateNormalTraffic(context.Background())
}
