package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultmesh/faultmesh/internal/api/middleware"
	"github.com/faultmesh/faultmesh/internal/fault"
)

func newTestRegistry() *fault.Registry {
	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return fault.NewRegistry(log)
}

func TestFaultInjection_PassthroughWhenNoFaults(t *testing.T) {
	reg := newTestRegistry()

	handler := middleware.FaultInjection(reg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFaultInjection_InjectedErrorReturns500(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.TriggerError(fault.ErrorTypeGeneric, time.Minute)
	require.NoError(t, err)

	handler := middleware.FaultInjection(reg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestFaultInjection_TimeoutErrorReturns504(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.TriggerError(fault.ErrorTypeTimeout, time.Minute)
	require.NoError(t, err)

	handler := middleware.FaultInjection(reg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestFaultInjection_DelayBeforeServing(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.SlowResponse(50*time.Millisecond, time.Minute)
	require.NoError(t, err)

	handler := middleware.FaultInjection(reg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", http.NoBody)
	rec := httptest.NewRecorder()

	start := time.Now()
	handler.ServeHTTP(rec, req)
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}
