package cart

import "errors"

// Service errors.
var (
	ErrCacheUnavailable    = errors.New("cart cache unavailable")
	ErrDatabaseUnavailable = errors.New("database connection unavailable")
	ErrProductNotFound     = errors.New("product not found")
)

// Item is a single cart line.
type Item struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Cart is a user's cart with derived totals.
type Cart struct {
	UserID    string  `json:"user_id"`
	Items     []Item  `json:"items"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// ProductView is a catalog entry as shown to shoppers. QuantityAvailable
// is nil when the inventory service could not be reached and the static
// catalog was used instead.
type ProductView struct {
	ItemID            string  `json:"item_id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	InStock           bool    `json:"in_stock"`
	QuantityAvailable *int    `json:"quantity_available"`
}

// CheckoutResult is the outcome of a checkout attempt.
type CheckoutResult struct {
	Success     bool    `json:"success"`
	OrderID     string  `json:"order_id"`
	UserID      string  `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
	Message     string  `json:"message,omitempty"`
}

// Checkout statuses.
const (
	StatusCompleted          = "completed"
	StatusFailed             = "failed"
	StatusPaymentFailed      = "payment_failed"
	StatusServiceUnavailable = "service_unavailable"
)
