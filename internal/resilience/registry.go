package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// PeerHealth represents the observed health of a downstream service.
type PeerHealth struct {
	// Name is the downstream service identifier.
	Name string

	// CircuitState is the current circuit breaker state.
	CircuitState gobreaker.State

	// Counts contains circuit breaker statistics.
	Counts gobreaker.Counts

	// LastSuccessAt is the timestamp of the last successful request.
	LastSuccessAt *time.Time

	// LastFailureAt is the timestamp of the last failed request.
	LastFailureAt *time.Time

	// LastError is the most recent error message, if any.
	LastError string
}

// IsHealthy returns true if the peer is considered healthy.
func (h *PeerHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded returns true if the peer is in a degraded state (half-open).
func (h *PeerHealth) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy returns true if the peer is unhealthy (circuit open).
func (h *PeerHealth) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Registry tracks downstream service clients and their health status.
type Registry struct {
	mu    sync.RWMutex
	peers map[string]*registeredPeer
}

type registeredPeer struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates a new peer registry.
func NewRegistry() *Registry {
	return &Registry{
		peers: make(map[string]*registeredPeer),
	}
}

// Register adds a peer client to the registry.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[name] = &registeredPeer{
		client: client,
	}
}

// Unregister removes a peer from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, name)
}

// RecordSuccess records a successful request to a peer.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.peers[name]; ok {
		now := time.Now()
		p.lastSuccessAt = &now
	}
}

// RecordFailure records a failed request to a peer.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.peers[name]; ok {
		now := time.Now()
		p.lastFailureAt = &now
		if err != nil {
			p.lastError = err.Error()
		}
	}
}

// GetHealth returns the health status of a specific peer.
func (r *Registry) GetHealth(name string) *PeerHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.peers[name]
	if !ok {
		return nil
	}

	return &PeerHealth{
		Name:          name,
		CircuitState:  p.client.CircuitBreakerState(),
		Counts:        p.client.CircuitBreakerCounts(),
		LastSuccessAt: p.lastSuccessAt,
		LastFailureAt: p.lastFailureAt,
		LastError:     p.lastError,
	}
}

// GetAllHealth returns the health status of all registered peers.
func (r *Registry) GetAllHealth() []*PeerHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*PeerHealth, 0, len(r.peers))
	for name, p := range r.peers {
		health = append(health, &PeerHealth{
			Name:          name,
			CircuitState:  p.client.CircuitBreakerState(),
			Counts:        p.client.CircuitBreakerCounts(),
			LastSuccessAt: p.lastSuccessAt,
			LastFailureAt: p.lastFailureAt,
			LastError:     p.lastError,
		})
	}

	return health
}

// PeerNames returns the names of all registered peers.
func (r *Registry) PeerNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.peers))
	for name := range r.peers {
		names = append(names, name)
	}
	return names
}

// PeerCount returns the number of registered peers.
func (r *Registry) PeerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}
