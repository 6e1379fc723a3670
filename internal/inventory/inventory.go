package inventory

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product is a row in the products table.
type Product struct {
	ItemID    string    `json:"item_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Reservation is the result of a successful stock reservation.
type Reservation struct {
	ItemID    string
	Reserved  int
	Remaining int
}

// Restock is the result of adding stock to a product.
type Restock struct {
	ItemID   string
	Added    int
	NewTotal int
}

// SeedProducts is the catalog loaded into an empty products table.
var SeedProducts = []Product{
	{ItemID: "PROD-001", Name: "Laptop", Price: 999.99, Quantity: 50},
	{ItemID: "PROD-002", Name: "Smartphone", Price: 599.99, Quantity: 100},
	{ItemID: "PROD-003", Name: "Headphones", Price: 149.99, Quantity: 200},
	{ItemID: "PROD-004", Name: "Tablet", Price: 449.99, Quantity: 75},
	{ItemID: "PROD-005", Name: "Smartwatch", Price: 299.99, Quantity: 150},
}
