// Package stock owns the balance and ledger stores. Balances are mutated
// exclusively through a TxStore obtained by the transaction engine inside a
// database transaction; everything else in the system reads.
package stock

import (
	"errors"
	"time"
)

// Balance is the current quantity per (product, warehouse, location).
type Balance struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"productId"`
	WarehouseID int64     `json:"warehouseId"`
	LocationID  string    `json:"locationId"`
	Quantity    int64     `json:"quantity"`
	Reserved    int64     `json:"reserved"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// LedgerEntry is one immutable audit record of a signed quantity change.
type LedgerEntry struct {
	ID            int64     `json:"id"`
	OccurredAt    time.Time `json:"timestamp"`
	EntryType     string    `json:"type"`
	Label         string    `json:"label,omitempty"`
	TransactionID int64     `json:"refId"`
	ProductID     int64     `json:"productId"`
	WarehouseID   int64     `json:"warehouseId"`
	LocationID    string    `json:"locationId"`
	QtyChange     int64     `json:"qtyChange"`
	BalanceAfter  int64     `json:"balanceAfter"`
	ActorID       int64     `json:"userId"`
	Note          string    `json:"note"`
}

// Adjustment ledger sub-labels.
const (
	LabelInventoryGain = "Inventory Gain"
	LabelInventoryLoss = "Inventory Loss"
)

// LedgerFilter narrows ledger listings.
type LedgerFilter struct {
	EntryType   string
	ProductID   int64
	WarehouseID int64
	LocationID  string
	Limit       int
}

// BalanceFilter narrows balance listings.
type BalanceFilter struct {
	ProductID   int64
	WarehouseID int64
	LocationID  string
}

// LowStockRow reports a product whose total on-hand quantity fell below its
// reorder point.
type LowStockRow struct {
	ProductID     int64  `json:"productId"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	ReorderPoint  int64  `json:"reorderPoint"`
	ReorderQty    int64  `json:"reorderQty"`
	TotalQuantity int64  `json:"totalQuantity"`
}

// DriftRow is a balance whose stored quantity disagrees with the ledger sum.
type DriftRow struct {
	ProductID   int64  `json:"productId"`
	WarehouseID int64  `json:"warehouseId"`
	LocationID  string `json:"locationId"`
	Quantity    int64  `json:"quantity"`
	LedgerSum   int64  `json:"ledgerSum"`
}

// ErrBalanceNotFound indicates a missing balance row.
var ErrBalanceNotFound = errors.New("stock balance not found")

// ErrInsufficientStock triggered when an outbound movement exceeds the balance.
var ErrInsufficientStock = errors.New("insufficient stock")
