package products

import (
	"time"
)

// Product represents a catalog product.
type Product struct {
	ID           int64             `json:"id"`
	SKU          string            `json:"sku"`
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	Description  string            `json:"description"`
	Unit         string            `json:"unit"`
	VendorID     *int64            `json:"vendorId,omitempty"`
	ImageURL     string            `json:"imageUrl"`
	ReorderPoint int64             `json:"reorderPoint"`
	ReorderQty   int64             `json:"reorderQty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Defaults applied when a product is created without replenishment thresholds.
const (
	DefaultReorderPoint = 10
	DefaultReorderQty   = 50
)
