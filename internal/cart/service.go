package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/fault"
	"github.com/faultmesh/faultmesh/internal/inventory"
	"github.com/faultmesh/faultmesh/internal/orders"
	"github.com/faultmesh/faultmesh/internal/resilience"
)

// Service provides cart operations and checkout orchestration.
type Service struct {
	store        Store
	orders       orders.Repository
	faults       *fault.Registry
	client       *resilience.Client
	inventoryURL string
	paymentURL   string
	log          zerolog.Logger
}

// NewService creates a new cart service.
func NewService(
	store Store,
	orderRepo orders.Repository,
	faults *fault.Registry,
	client *resilience.Client,
	inventoryURL, paymentURL string,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:        store,
		orders:       orderRepo,
		faults:       faults,
		client:       client,
		inventoryURL: strings.TrimSuffix(inventoryURL, "/"),
		paymentURL:   strings.TrimSuffix(paymentURL, "/"),
		log:          log,
	}
}

// inventoryListResponse mirrors the inventory service's list payload.
type inventoryListResponse struct {
	Items []inventory.Product `json:"items"`
}

// paymentResponse mirrors the fields of the payment service's reply
// that checkout cares about.
type paymentResponse struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"payment_id"`
	Message   string `json:"message"`
}

// Products lists the catalog with live stock from the inventory
// service. When inventory cannot be reached the static seed catalog is
// returned with unknown stock, so browsing keeps working through an
// inventory outage.
func (s *Service) Products(ctx context.Context) []ProductView {
	var live inventoryListResponse
	err := s.client.GetJSON(ctx, s.inventoryURL+"/inventory", &live)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not fetch inventory, using static catalog")
		views := make([]ProductView, 0, len(inventory.SeedProducts))
		for _, p := range inventory.SeedProducts {
			views = append(views, ProductView{
				ItemID:  p.ItemID,
				Name:    p.Name,
				Price:   p.Price,
				InStock: true,
			})
		}
		return views
	}

	views := make([]ProductView, 0, len(live.Items))
	for _, p := range live.Items {
		qty := p.Quantity
		views = append(views, ProductView{
			ItemID:            p.ItemID,
			Name:              p.Name,
			Price:             p.Price,
			InStock:           p.Quantity > 0,
			QuantityAvailable: &qty,
		})
	}
	return views
}

// Get retrieves a user's cart with derived totals.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	items, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCacheUnavailable, err)
	}
	return buildCart(userID, items), nil
}

// Add puts an item in the user's cart. The item's name and price come
// from the inventory service, falling back to the static catalog when
// inventory is unreachable.
func (s *Service) Add(ctx context.Context, req *models.AddItemRequest) (*Cart, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	name, price, err := s.lookupProduct(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	item := Item{
		ItemID:   req.ItemID,
		Name:     name,
		Quantity: quantity,
		Price:    price,
	}

	items, err := s.store.Add(ctx, req.UserID, item)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCacheUnavailable, err)
	}

	s.log.Info().
		Str("user_id", req.UserID).
		Str("item_id", req.ItemID).
		Int("quantity", quantity).
		Msg("added item to cart")

	return buildCart(req.UserID, items), nil
}

// Remove deletes an item from the user's cart.
func (s *Service) Remove(ctx context.Context, userID, itemID string) (*Cart, error) {
	items, err := s.store.Remove(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCacheUnavailable, err)
	}
	return buildCart(userID, items), nil
}

// Clear deletes the user's entire cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("%w: %s", ErrCacheUnavailable, err)
	}
	return nil
}

// Orders retrieves the user's order history.
func (s *Service) Orders(ctx context.Context, userID string) ([]orders.Order, error) {
	if s.faults.DatabaseBlocked() {
		return nil, ErrDatabaseUnavailable
	}
	return s.orders.ListByUser(ctx, userID)
}

// Checkout runs the full checkout flow: read the cart, charge each
// line through the payment service, persist the order, clear the cart.
// Payment already happened by the time the order is saved, so a failed
// save is logged and the checkout still succeeds.
func (s *Service) Checkout(ctx context.Context, userID, paymentMethod string) (*CheckoutResult, error) {
	if paymentMethod == "" {
		paymentMethod = "credit_card"
	}

	orderID := orders.NewOrderID()
	log := s.log.With().Str("order_id", orderID).Str("user_id", userID).Logger()
	log.Info().Msg("starting checkout")

	items, err := s.store.Get(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("cache error during checkout")
		return &CheckoutResult{
			OrderID: orderID,
			UserID:  userID,
			Status:  StatusFailed,
			Message: "cache error: " + err.Error(),
		}, nil
	}

	if len(items) == 0 {
		log.Warn().Msg("checkout failed: empty cart")
		return &CheckoutResult{
			OrderID: orderID,
			UserID:  userID,
			Status:  StatusFailed,
			Message: "cart is empty",
		}, nil
	}

	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}

	var paymentID string
	for _, item := range items {
		req := models.PaymentRequest{
			OrderID:       orderID,
			ItemID:        item.ItemID,
			Quantity:      item.Quantity,
			Amount:        item.Price * float64(item.Quantity),
			PaymentMethod: paymentMethod,
		}

		var resp paymentResponse
		err := s.client.PostJSON(ctx, s.paymentURL+"/payment/process", req, &resp)
		if err != nil {
			log.Error().Err(err).Str("item_id", item.ItemID).Msg("payment service unavailable")
			return &CheckoutResult{
				OrderID:     orderID,
				UserID:      userID,
				TotalAmount: total,
				Status:      StatusServiceUnavailable,
				Message:     "payment service unavailable",
			}, nil
		}

		if !resp.Success {
			log.Error().Str("item_id", item.ItemID).Str("reason", resp.Message).Msg("payment failed")
			message := resp.Message
			if message == "" {
				message = "payment failed"
			}
			return &CheckoutResult{
				OrderID:     orderID,
				UserID:      userID,
				TotalAmount: total,
				Status:      StatusPaymentFailed,
				Message:     message,
			}, nil
		}

		paymentID = resp.PaymentID
	}

	order := &orders.Order{
		OrderID:     orderID,
		UserID:      userID,
		TotalAmount: total,
		PaymentID:   paymentID,
		Status:      orders.StatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}
	for _, item := range items {
		order.Items = append(order.Items, orders.Item{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	if s.faults.DatabaseBlocked() {
		log.Error().Msg("database unavailable, order not persisted")
	} else if err := s.orders.Create(ctx, order); err != nil {
		// Payment went through; losing the order row is an ops problem,
		// not the customer's.
		log.Error().Err(err).Msg("failed to save order")
	}

	if err := s.store.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Msg("failed to clear cart after checkout")
	}

	log.Info().Float64("total", total).Msg("checkout completed")

	return &CheckoutResult{
		Success:     true,
		OrderID:     orderID,
		UserID:      userID,
		TotalAmount: total,
		Status:      StatusCompleted,
	}, nil
}

// lookupProduct resolves an item's display name and price.
func (s *Service) lookupProduct(ctx context.Context, itemID string) (string, float64, error) {
	var product inventory.Product
	err := s.client.GetJSON(ctx, s.inventoryURL+"/inventory/"+itemID, &product)
	if err == nil {
		return product.Name, product.Price, nil
	}
	s.log.Warn().Err(err).Str("item_id", itemID).Msg("could not fetch product from inventory")

	for _, p := range inventory.SeedProducts {
		if p.ItemID == itemID {
			return p.Name, p.Price, nil
		}
	}
	return "", 0, ErrProductNotFound
}

func buildCart(userID string, items []Item) *Cart {
	cart := &Cart{
		UserID:    userID,
		Items:     items,
		ItemCount: len(items),
	}
	if cart.Items == nil {
		cart.Items = []Item{}
	}
	for _, item := range items {
		cart.Total += item.Price * float64(item.Quantity)
	}
	return cart
}
