package cart_test

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
	"github.com/faultmesh/faultmesh/internal/cart"
	"github.com/faultmesh/faultmesh/internal/fault"
	"github.com/faultmesh/faultmesh/internal/orders"
	"github.com/faultmesh/faultmesh/internal/resilience"
)

type testEnv struct {
	service *cart.Service
	store   *cart.InMemoryStore
	orders  *orders.InMemoryRepository
	faults  *fault.Registry
}

// newTestEnv wires a cart service against a stub inventory and payment
// server. The stub serves the inventory catalog endpoints and accepts
// every payment unless paymentHandler overrides it.
func newTestEnv(t *testing.T, paymentHandler http.HandlerFunc) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /inventory/{itemID}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("itemID") {
		case "PROD-001":
			json.NewEncoder(w).Encode(map[string]any{
				"item_id": "PROD-001", "name": "Laptop", "price": 999.99, "quantity": 50,
			})
		case "PROD-003":
			json.NewEncoder(w).Encode(map[string]any{
				"item_id": "PROD-003", "name": "Headphones", "price": 149.99, "quantity": 200,
			})
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})
	if paymentHandler == nil {
		paymentHandler = func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true, "payment_id": "PAY-TEST00000001", "status": "completed",
			})
		}
	}
	mux.HandleFunc("POST /payment/process", paymentHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store := cart.NewInMemoryStore()
	orderRepo := orders.NewInMemoryRepository()
	faults := fault.NewRegistry(zerolog.Nop())
	client := resilience.NewClient(resilience.NoRetryClientConfig("peers", 2*time.Second))

	service := cart.NewService(store, orderRepo, faults, client, server.URL, server.URL, zerolog.Nop())

	return &testEnv{service: service, store: store, orders: orderRepo, faults: faults}
}

func TestService_AddMergesQuantities(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.service.Add(ctx, &models.AddItemRequest{
		UserID: "user-1", ItemID: "PROD-001", Quantity: 1,
	})
	require.NoError(t, err)

	result, err := env.service.Add(ctx, &models.AddItemRequest{
		UserID: "user-1", ItemID: "PROD-001", Quantity: 2,
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, 3, result.Items[0].Quantity)
	assert.Equal(t, "Laptop", result.Items[0].Name)
	assert.InDelta(t, 3*999.99, result.Total, 0.001)
}

func TestService_Add_UnknownProduct(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.service.Add(context.Background(), &models.AddItemRequest{
		UserID: "user-1", ItemID: "PROD-999", Quantity: 1,
	})
	assert.True(t, errors.Is(err, cart.ErrProductNotFound))
}

func TestService_Add_FallsBackToStaticCatalog(t *testing.T) {
	// Inventory is down, but PROD-002 is in the seed catalog.
	env := newTestEnv(t, nil)
	broken := cart.NewService(
		env.store,
		env.orders,
		env.faults,
		resilience.NewClient(resilience.NoRetryClientConfig("peers", 200*time.Millisecond)),
		"http://127.0.0.1:1",
		"http://127.0.0.1:1",
		zerolog.Nop(),
	)

	result, err := broken.Add(context.Background(), &models.AddItemRequest{
		UserID: "user-1", ItemID: "PROD-002", Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Smartphone", result.Items[0].Name)
	assert.Equal(t, 599.99, result.Items[0].Price)
}

func TestService_GetEmptyCart(t *testing.T) {
	env := newTestEnv(t, nil)

	result, err := env.service.Get(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
	assert.Zero(t, result.ItemCount)
}

func TestService_Checkout(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.service.Add(ctx, &models.AddItemRequest{UserID: "user-1", ItemID: "PROD-001", Quantity: 1})
	require.NoError(t, err)
	_, err = env.service.Add(ctx, &models.AddItemRequest{UserID: "user-1", ItemID: "PROD-003", Quantity: 2})
	require.NoError(t, err)

	result, err := env.service.Checkout(ctx, "user-1", "")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, cart.StatusCompleted, result.Status)
	assert.Contains(t, result.OrderID, "ORD-")
	assert.InDelta(t, 999.99+2*149.99, result.TotalAmount, 0.001)

	// Order persisted with both lines.
	saved, err := env.orders.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, result.OrderID, saved[0].OrderID)
	assert.Equal(t, "PAY-TEST00000001", saved[0].PaymentID)
	assert.Len(t, saved[0].Items, 2)

	// Cart cleared.
	after, err := env.service.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, after.Items)
}

func TestService_Checkout_EmptyCart(t *testing.T) {
	env := newTestEnv(t, nil)

	result, err := env.service.Checkout(context.Background(), "user-1", "")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, cart.StatusFailed, result.Status)
	assert.Equal(t, "cart is empty", result.Message)
}

func TestService_Checkout_PaymentRejected(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false, "status": "rejected", "message": "payment rejected by gateway",
		})
	})
	ctx := context.Background()

	_, err := env.service.Add(ctx, &models.AddItemRequest{UserID: "user-1", ItemID: "PROD-001", Quantity: 1})
	require.NoError(t, err)

	result, err := env.service.Checkout(ctx, "user-1", "")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, cart.StatusPaymentFailed, result.Status)
	assert.Equal(t, "payment rejected by gateway", result.Message)

	// No order persisted for a failed checkout.
	saved, err := env.orders.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestService_Checkout_CacheError(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.FailWith = errors.New("connection refused")

	result, err := env.service.Checkout(context.Background(), "user-1", "")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, cart.StatusFailed, result.Status)
	assert.Contains(t, result.Message, "cache error")
}

func TestService_Orders_DatabaseOutage(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.faults.SimulateDBFailure(time.Minute)
	require.NoError(t, err)

	_, err = env.service.Orders(context.Background(), "user-1")
	assert.True(t, errors.Is(err, cart.ErrDatabaseUnavailable))

	env.faults.RestoreDatabase()

	_, err = env.service.Orders(context.Background(), "user-1")
	assert.NoError(t, err)
}
