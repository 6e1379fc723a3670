package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/api/response"
	"github.com/faultmesh/faultmesh/internal/resilience"
)

// statusProbeTimeout bounds each peer health call.
const statusProbeTimeout = 5 * time.Second

// FrontendHandler aggregates peer service health for the frontend role.
type FrontendHandler struct {
	peers  map[string]string // name -> base URL
	client *resilience.Client
	log    zerolog.Logger
}

// NewFrontendHandler creates a new FrontendHandler. peers maps service
// names to their base URLs.
func NewFrontendHandler(peers map[string]string, client *resilience.Client, log zerolog.Logger) *FrontendHandler {
	return &FrontendHandler{peers: peers, client: client, log: log}
}

// Status handles GET /api/status. Peers are probed concurrently; an
// unreachable peer shows up as unreachable rather than failing the
// whole status page.
func (h *FrontendHandler) Status(w http.ResponseWriter, r *http.Request) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		summaries []models.PeerStatusSummary
	)

	for name, baseURL := range h.peers {
		wg.Add(1)
		go func(name, baseURL string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(r.Context(), statusProbeTimeout)
			defer cancel()

			summary := models.PeerStatusSummary{Name: name}

			var peerHealth models.HealthResponse
			if err := h.client.GetJSON(ctx, baseURL+"/health", &peerHealth); err != nil {
				h.log.Warn().Err(err).Str("peer", name).Msg("peer health probe failed")
				summary.Status = "unknown"
				summary.Error = err.Error()
			} else {
				summary.Reachable = true
				summary.Status = peerHealth.Status
				summary.LatencyMs = peerHealth.LatencyMs
			}

			mu.Lock()
			summaries = append(summaries, summary)
			mu.Unlock()
		}(name, baseURL)
	}
	wg.Wait()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	response.JSON(w, r, http.StatusOK, models.StatusResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  summaries,
	})
}
