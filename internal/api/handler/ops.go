// Package handler provides HTTP handlers for the faultmesh services.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/api/response"
	"github.com/faultmesh/faultmesh/internal/fault"
	"github.com/faultmesh/faultmesh/internal/health"
)

// DependencyCheck reports whether a backing dependency is reachable.
// A nil check means the role has no such dependency.
type DependencyCheck func(ctx context.Context) error

// OpsHandler handles the health endpoint.
type OpsHandler struct {
	service  string
	registry *fault.Registry
	baseline health.Baseline

	checkRedis    DependencyCheck
	checkDatabase DependencyCheck
}

// NewOpsHandler creates a new OpsHandler. The checks may be nil for roles
// without the corresponding dependency.
func NewOpsHandler(service string, registry *fault.Registry, baseline health.Baseline, checkRedis, checkDatabase DependencyCheck) *OpsHandler {
	return &OpsHandler{
		service:       service,
		registry:      registry,
		baseline:      baseline,
		checkRedis:    checkRedis,
		checkDatabase: checkDatabase,
	}
}

// HealthCheck handles GET /health. The health fields are recomputed from
// the active fault set on every call; connectivity flags reflect a live
// dependency probe. An active database outage fault makes the probe fail,
// so the flag reports the simulated failure too.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.registry.Snapshot()
	sh := health.Evaluate(snap, h.baseline)

	resp := models.HealthResponse{
		Service:    h.service,
		Status:     string(sh.Status),
		LatencyMs:  sh.LatencyMs,
		CPUPercent: sh.CPUPercent,
		MemoryMB:   sh.MemoryMB,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.checkRedis != nil {
		ok := h.checkRedis(ctx) == nil
		resp.RedisConnected = &ok
	}
	if h.checkDatabase != nil {
		ok := h.checkDatabase(ctx) == nil && !snap.HasOutage(fault.TargetDatabase)
		resp.DatabaseConnected = &ok
	}

	response.JSON(w, r, http.StatusOK, resp)
}
