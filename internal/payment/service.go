package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/resilience"
)

// Service errors.
var (
	ErrInvalidRequest       = errors.New("invalid payment request")
	ErrInventoryUnavailable = errors.New("inventory service unavailable")
)

// Payment statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
	StatusRefunded  = "refunded"
)

// gatewayRejectRate is the fraction of transactions the simulated
// gateway rejects.
const gatewayRejectRate = 0.05

// Result is the outcome of a payment attempt.
type Result struct {
	Success   bool    `json:"success"`
	PaymentID string  `json:"payment_id"`
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
}

// RefundResult is the outcome of a refund.
type RefundResult struct {
	Success   bool    `json:"success"`
	RefundID  string  `json:"refund_id"`
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

// Service processes payments against a simulated gateway. Inventory is
// reserved over HTTP before the gateway is charged, so a reservation
// failure never costs the customer money.
type Service struct {
	inventoryURL string
	client       *resilience.Client
	log          zerolog.Logger
	random       func() float64
	gatewayDelay time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithRandom overrides the gateway rejection roll. Used in tests.
func WithRandom(fn func() float64) Option {
	return func(s *Service) {
		s.random = fn
	}
}

// WithGatewayDelay overrides the simulated gateway processing time.
func WithGatewayDelay(d time.Duration) Option {
	return func(s *Service) {
		s.gatewayDelay = d
	}
}

// NewService creates a new payment service.
func NewService(inventoryURL string, client *resilience.Client, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		inventoryURL: strings.TrimSuffix(inventoryURL, "/"),
		client:       client,
		log:          log,
		random:       rand.Float64,
		gatewayDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process reserves inventory and charges the simulated gateway.
// Business failures (reservation refused, gateway rejection) come back
// as an unsuccessful Result; only an unreachable inventory service is
// an error.
func (s *Service) Process(ctx context.Context, req *models.PaymentRequest) (*Result, error) {
	if req.ItemID == "" || req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: item_id and a positive quantity are required", ErrInvalidRequest)
	}

	paymentID := newID("PAY")

	s.log.Info().
		Str("payment_id", paymentID).
		Str("order_id", req.OrderID).
		Str("item_id", req.ItemID).
		Float64("amount", req.Amount).
		Msg("processing payment")

	reserve := models.ReserveRequest{ItemID: req.ItemID, Quantity: req.Quantity}
	err := s.client.PostJSON(ctx, s.inventoryURL+"/inventory/reserve", reserve, nil)
	if err != nil {
		var statusErr *resilience.StatusError
		if errors.As(err, &statusErr) {
			s.log.Error().
				Str("payment_id", paymentID).
				Int("status_code", statusErr.StatusCode).
				Msg("inventory reservation failed")
			return &Result{
				Success:   false,
				PaymentID: paymentID,
				OrderID:   req.OrderID,
				Amount:    req.Amount,
				Status:    StatusFailed,
				Message:   fmt.Sprintf("inventory reservation failed (status %d)", statusErr.StatusCode),
			}, nil
		}
		s.log.Error().Err(err).Str("payment_id", paymentID).Msg("inventory service unreachable")
		return nil, fmt.Errorf("%w: %s", ErrInventoryUnavailable, err)
	}

	// Simulated gateway round trip.
	select {
	case <-time.After(s.gatewayDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if s.random() < gatewayRejectRate {
		s.log.Error().Str("payment_id", paymentID).Msg("payment rejected by gateway")
		return &Result{
			Success:   false,
			PaymentID: paymentID,
			OrderID:   req.OrderID,
			Amount:    req.Amount,
			Status:    StatusRejected,
			Message:   "payment rejected by gateway",
		}, nil
	}

	s.log.Info().Str("payment_id", paymentID).Str("order_id", req.OrderID).Msg("payment processed")

	return &Result{
		Success:   true,
		PaymentID: paymentID,
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Status:    StatusCompleted,
		Message:   "payment processed successfully",
	}, nil
}

// Refund issues a refund against a previous payment. The simulated
// gateway always accepts refunds.
func (s *Service) Refund(ctx context.Context, paymentID string, amount float64) (*RefundResult, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("%w: payment_id is required", ErrInvalidRequest)
	}

	refundID := newID("REF")

	select {
	case <-time.After(s.gatewayDelay / 2):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.log.Info().
		Str("refund_id", refundID).
		Str("payment_id", paymentID).
		Float64("amount", amount).
		Msg("refund processed")

	return &RefundResult{
		Success:   true,
		RefundID:  refundID,
		PaymentID: paymentID,
		Amount:    amount,
		Status:    StatusRefunded,
	}, nil
}

// newID generates an identifier like PAY-1A2B3C4D5E6F.
func newID(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "-" + strings.ToUpper(hex[:12])
}
