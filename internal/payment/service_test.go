package payment_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/payment"
	"github.com/faultmesh/faultmesh/internal/resilience"
)

func newTestService(t *testing.T, inventoryHandler http.HandlerFunc, roll float64) *payment.Service {
	t.Helper()

	server := httptest.NewServer(inventoryHandler)
	t.Cleanup(server.Close)

	client := resilience.NewClient(resilience.NoRetryClientConfig("inventory", 2*time.Second))
	return payment.NewService(server.URL, client, zerolog.Nop(),
		payment.WithRandom(func() float64 { return roll }),
		payment.WithGatewayDelay(0),
	)
}

func TestService_Process(t *testing.T) {
	var reserved models.ReserveRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inventory/reserve", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reserved))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}

	// Roll above the reject rate so the gateway accepts.
	service := newTestService(t, handler, 0.99)

	result, err := service.Process(context.Background(), &models.PaymentRequest{
		OrderID:  "ORD-TEST00000001",
		ItemID:   "PROD-001",
		Quantity: 2,
		Amount:   1999.98,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, payment.StatusCompleted, result.Status)
	assert.Contains(t, result.PaymentID, "PAY-")
	assert.Equal(t, "ORD-TEST00000001", result.OrderID)
	assert.Equal(t, models.ReserveRequest{ItemID: "PROD-001", Quantity: 2}, reserved)
}

func TestService_Process_GatewayRejection(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}

	// Roll below the reject rate so the gateway rejects.
	service := newTestService(t, handler, 0.0)

	result, err := service.Process(context.Background(), &models.PaymentRequest{
		OrderID:  "ORD-TEST00000002",
		ItemID:   "PROD-002",
		Quantity: 1,
		Amount:   599.99,
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, payment.StatusRejected, result.Status)
}

func TestService_Process_ReservationRefused(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient stock", http.StatusBadRequest)
	}

	service := newTestService(t, handler, 0.99)

	result, err := service.Process(context.Background(), &models.PaymentRequest{
		OrderID:  "ORD-TEST00000003",
		ItemID:   "PROD-001",
		Quantity: 9999,
		Amount:   1.0,
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, payment.StatusFailed, result.Status)
	assert.Contains(t, result.Message, "status 400")
}

func TestService_Process_InventoryUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused from here on

	client := resilience.NewClient(resilience.NoRetryClientConfig("inventory", time.Second))
	service := payment.NewService(server.URL, client, zerolog.Nop(),
		payment.WithGatewayDelay(0),
	)

	_, err := service.Process(context.Background(), &models.PaymentRequest{
		OrderID:  "ORD-TEST00000004",
		ItemID:   "PROD-001",
		Quantity: 1,
		Amount:   999.99,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, payment.ErrInventoryUnavailable))
}

func TestService_Process_InvalidRequest(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {}, 0.99)

	tests := []struct {
		name string
		req  *models.PaymentRequest
	}{
		{"missing item", &models.PaymentRequest{OrderID: "ORD-X", Quantity: 1}},
		{"zero quantity", &models.PaymentRequest{OrderID: "ORD-X", ItemID: "PROD-001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Process(context.Background(), tt.req)
			assert.True(t, errors.Is(err, payment.ErrInvalidRequest))
		})
	}
}

func TestService_Refund(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {}, 0.99)

	result, err := service.Refund(context.Background(), "PAY-ABC123DEF456", 149.99)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, payment.StatusRefunded, result.Status)
	assert.Contains(t, result.RefundID, "REF-")
	assert.Equal(t, "PAY-ABC123DEF456", result.PaymentID)
	assert.Equal(t, 149.99, result.Amount)
}

func TestService_Refund_MissingPaymentID(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {}, 0.99)

	_, err := service.Refund(context.Background(), "", 10)
	assert.True(t, errors.Is(err, payment.ErrInvalidRequest))
}
