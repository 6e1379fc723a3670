package inventory

import (
	"context"
	"errors"

	"github.com/faultmesh/faultmesh/internal/fault"
)

// Service errors.
var (
	ErrDatabaseUnavailable = errors.New("database connection unavailable")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
)

// Service provides inventory operations. Every operation is gated on
// the fault registry so a simulated database outage fails reads and
// writes the same way a real connection loss would.
type Service struct {
	repo   Repository
	faults *fault.Registry
}

// NewService creates a new inventory service.
func NewService(repo Repository, faults *fault.Registry) *Service {
	return &Service{repo: repo, faults: faults}
}

// List retrieves all products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	if s.faults.DatabaseBlocked() {
		return nil, ErrDatabaseUnavailable
	}
	return s.repo.List(ctx)
}

// Get retrieves a product by item ID.
func (s *Service) Get(ctx context.Context, itemID string) (*Product, error) {
	if s.faults.DatabaseBlocked() {
		return nil, ErrDatabaseUnavailable
	}
	return s.repo.Get(ctx, itemID)
}

// Reserve decrements stock for an order.
func (s *Service) Reserve(ctx context.Context, itemID string, quantity int) (*Reservation, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if s.faults.DatabaseBlocked() {
		return nil, ErrDatabaseUnavailable
	}
	return s.repo.Reserve(ctx, itemID, quantity)
}

// AddStock increments stock for a product.
func (s *Service) AddStock(ctx context.Context, itemID string, quantity int) (*Restock, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if s.faults.DatabaseBlocked() {
		return nil, ErrDatabaseUnavailable
	}
	return s.repo.AddStock(ctx, itemID, quantity)
}
