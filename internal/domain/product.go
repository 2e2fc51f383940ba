package domain

import "time"

// Product represents a catalog product.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	SKU           *string   `json:"sku,omitempty"`
	Price         float64   `json:"price"`
	CategoryID    string    `json:"category_id"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
	IsDeleted     bool      `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InStock reports whether the product has any stock available.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// ProductFilter holds search and filter criteria for product listings.
type ProductFilter struct {
	Search     string
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
	IsActive   *bool
}
