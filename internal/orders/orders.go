package orders

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrOrderNotFound is returned when an order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// Order statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Order is a completed checkout with its line items.
type Order struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	PaymentID   string    `json:"payment_id,omitempty"`
	Status      string    `json:"status"`
	Items       []Item    `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
}

// Item is a single line of an order.
type Item struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// NewOrderID generates an order identifier like ORD-1A2B3C4D5E6F.
func NewOrderID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ORD-" + strings.ToUpper(hex[:12])
}
