package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/api/response"
	"github.com/faultmesh/faultmesh/internal/fault"
)

// ChaosHandler exposes the fault-injection endpoints.
type ChaosHandler struct {
	registry *fault.Registry
	log      zerolog.Logger
}

// NewChaosHandler creates a new ChaosHandler.
func NewChaosHandler(registry *fault.Registry, log zerolog.Logger) *ChaosHandler {
	return &ChaosHandler{registry: registry, log: log}
}

// StressCPU handles POST /chaos/stress-cpu.
func (h *ChaosHandler) StressCPU(w http.ResponseWriter, r *http.Request) {
	var input models.StressCPURequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	f, err := h.registry.StressCPU(secondsToDuration(input.Duration), input.Intensity)
	if err != nil {
		h.writeFaultError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ChaosResponse{
		Status:  "injected",
		Fault:   f.String(),
		Message: fmt.Sprintf("stressing CPU at intensity %.2f for %.0fs", input.Intensity, input.Duration),
	})
}

// SlowResponse handles POST /chaos/slow-response.
func (h *ChaosHandler) SlowResponse(w http.ResponseWriter, r *http.Request) {
	var input models.SlowResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	f, err := h.registry.SlowResponse(secondsToDuration(input.Delay), secondsToDuration(input.Duration))
	if err != nil {
		h.writeFaultError(w, r, err)
		return
	}

	msg := fmt.Sprintf("delaying responses by %.2fs", input.Delay)
	if input.Duration == 0 {
		msg += " until restart"
	}
	response.JSON(w, r, http.StatusOK, models.ChaosResponse{
		Status:  "injected",
		Fault:   f.String(),
		Message: msg,
	})
}

// TriggerError handles POST /chaos/trigger-error.
func (h *ChaosHandler) TriggerError(w http.ResponseWriter, r *http.Request) {
	var input models.TriggerErrorRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	f, err := h.registry.TriggerError(input.ErrorType, secondsToDuration(input.Duration))
	if err != nil {
		h.writeFaultError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ChaosResponse{
		Status:  "injected",
		Fault:   f.String(),
		Message: fmt.Sprintf("requests will fail with %s errors", f.Params.ErrorType),
	})
}

// MemoryLeak handles POST /chaos/memory-leak.
func (h *ChaosHandler) MemoryLeak(w http.ResponseWriter, r *http.Request) {
	var input models.MemoryLeakRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	total, err := h.registry.MemoryLeak(input.SizeMB)
	if err != nil {
		h.writeFaultError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ChaosResponse{
		Status:        "injected",
		Fault:         string(fault.KindMemoryGrowth),
		Message:       fmt.Sprintf("leaked %d MB", input.SizeMB),
		TotalLeakedMB: total,
	})
}

// SimulateDBFailure handles POST /chaos/simulate-db-failure.
func (h *ChaosHandler) SimulateDBFailure(w http.ResponseWriter, r *http.Request) {
	var input models.DBFailureRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	f, err := h.registry.SimulateDBFailure(secondsToDuration(input.Duration))
	if err != nil {
		h.writeFaultError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ChaosResponse{
		Status:  "injected",
		Fault:   f.String(),
		Message: fmt.Sprintf("database calls fail for %.0fs", input.Duration),
	})
}

// SimulateRedisLatency handles POST /chaos/simulate-redis-latency.
func (h *ChaosHandler) SimulateRedisLatency(w http.ResponseWriter, r *http.Request) {
	var input models.RedisLatencyRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	delay := time.Duration(input.DelayMs) * time.Millisecond
	f, err := h.registry.SimulateCacheLatency(delay, secondsToDuration(input.Duration))
	if err != nil {
		h.writeFaultError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ChaosResponse{
		Status:  "injected",
		Fault:   f.String(),
		Message: fmt.Sprintf("cache operations delayed by %dms for %.0fs", input.DelayMs, input.Duration),
	})
}

// RestoreDB handles POST /chaos/restore-db: clears a database outage early.
func (h *ChaosHandler) RestoreDB(w http.ResponseWriter, r *http.Request) {
	h.registry.RestoreDatabase()
	response.JSON(w, r, http.StatusOK, models.ChaosResponse{
		Status:  "restored",
		Fault:   string(fault.KindDependencyOutage),
		Message: "database connectivity restored",
	})
}

// RestoreRedis handles POST /chaos/restore-redis: clears a cache latency
// fault early.
func (h *ChaosHandler) RestoreRedis(w http.ResponseWriter, r *http.Request) {
	h.registry.RestoreCache()
	response.JSON(w, r, http.StatusOK, models.ChaosResponse{
		Status:  "restored",
		Fault:   string(fault.KindDependencyOutage),
		Message: "cache latency cleared",
	})
}

func (h *ChaosHandler) writeFaultError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, fault.ErrInvalidParameter) {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	h.log.Error().Err(err).Str("path", r.URL.Path).Msg("fault injection failed")
	response.InternalError(w, r, "fault injection failed")
}

// secondsToDuration converts a fractional seconds value from a request body.
func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
