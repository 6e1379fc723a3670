package models

// AddItemRequest is the body for POST /cart/add.
type AddItemRequest struct {
	UserID   string  `json:"user_id"`
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CheckoutRequest is the body for POST /cart/checkout.
type CheckoutRequest struct {
	UserID        string `json:"user_id"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// ReserveRequest is the body for POST /inventory/reserve.
type ReserveRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// RestockRequest is the body for POST /inventory/restock.
type RestockRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// PaymentRequest is the body for POST /payment/process.
type PaymentRequest struct {
	OrderID       string  `json:"order_id"`
	ItemID        string  `json:"item_id"`
	Quantity      int     `json:"quantity"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}

// RefundRequest is the body for POST /payment/refund.
type RefundRequest struct {
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
}
