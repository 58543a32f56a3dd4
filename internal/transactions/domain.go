// Package transactions implements the stock-moving transaction engine: the
// four workflow state machines and the only write path into the stock
// balance and ledger stores.
package transactions

import (
	"errors"
	"time"
)

// Type enumerates the stock-moving transaction kinds.
type Type string

const (
	TypeReceipt    Type = "Receipt"
	TypeDelivery   Type = "Delivery"
	TypeTransfer   Type = "Transfer"
	TypeAdjustment Type = "Adjustment"
)

// IsValid checks if the type is one of the known kinds.
func (t Type) IsValid() bool {
	switch t {
	case TypeReceipt, TypeDelivery, TypeTransfer, TypeAdjustment:
		return true
	default:
		return false
	}
}

// Status represents the workflow state of a transaction.
type Status string

const (
	StatusDraft           Status = "Draft"
	StatusCounting        Status = "Counting"
	StatusWaiting         Status = "Waiting"
	StatusReady           Status = "Ready"
	StatusPacked          Status = "Packed"
	StatusPendingApproval Status = "Pending Approval"
	StatusDone            Status = "Done"
	StatusCancelled       Status = "Cancelled"
)

// CanEdit checks if the transaction document may still be modified.
func (s Status) CanEdit() bool {
	return s == StatusDraft
}

// CanDelete checks if the transaction may be deleted.
func (s Status) CanDelete() bool {
	return s == StatusDraft
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Line is one product movement within a transaction. LocationFrom and
// LocationTo are free-text location ids; which of the two is required
// depends on the transaction type.
type Line struct {
	ID           int64    `json:"id"`
	ProductID    int64    `json:"productId"`
	Qty          int64    `json:"qty"`
	DoneQuantity int64    `json:"doneQuantity"`
	LocationFrom string   `json:"locationFrom,omitempty"`
	LocationTo   string   `json:"locationTo,omitempty"`
	UnitCost     *float64 `json:"unitCost,omitempty"`
}

// Transaction is the aggregate root of the engine.
type Transaction struct {
	ID          int64             `json:"id"`
	RefNo       string            `json:"refNo"`
	Type        Type              `json:"type"`
	Status      Status            `json:"status"`
	WarehouseID int64             `json:"warehouseId"`
	PartnerID   *int64            `json:"partnerId,omitempty"`
	Lines       []Line            `json:"lines"`
	CreatedBy   int64             `json:"createdBy"`
	ValidatedBy *int64            `json:"validatedBy,omitempty"`
	ValidatedAt *time.Time        `json:"validatedAt,omitempty"`
	Notes       string            `json:"notes"`
	Meta        map[string]string `json:"meta,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// LineDetails joins product display fields onto a line.
type LineDetails struct {
	Line
	ProductName string `json:"productName"`
	ProductSKU  string `json:"productSku"`
}

// Details joins human-readable names onto a transaction for responses.
type Details struct {
	Transaction
	WarehouseName   string        `json:"warehouseName"`
	PartnerName     string        `json:"partnerName,omitempty"`
	CreatedByName   string        `json:"createdByName,omitempty"`
	ValidatedByName string        `json:"validatedByName,omitempty"`
	LineDetails     []LineDetails `json:"lineDetails"`
}

// CreateInput carries the fields accepted when creating a transaction.
type CreateInput struct {
	RefNo       string            `json:"refNo"`
	Type        Type              `json:"type,omitempty"`
	WarehouseID int64             `json:"warehouseId" validate:"required,gt=0"`
	PartnerID   *int64            `json:"partnerId,omitempty"`
	Lines       []LineInput       `json:"lines" validate:"required,min=1,dive"`
	Notes       string            `json:"notes"`
	Meta        map[string]string `json:"meta,omitempty"`
}

// LineInput is the request form of a line.
type LineInput struct {
	ProductID    int64    `json:"productId" validate:"required,gt=0"`
	Qty          int64    `json:"qty"`
	DoneQuantity int64    `json:"doneQuantity"`
	LocationFrom string   `json:"locationFrom"`
	LocationTo   string   `json:"locationTo"`
	UnitCost     *float64 `json:"unitCost,omitempty"`
}

// CountUpdate sets the counted quantity on one line.
type CountUpdate struct {
	LineID       int64 `json:"lineId" validate:"required,gt=0"`
	DoneQuantity int64 `json:"doneQuantity"`
}

// AvailabilityItem is the per-line result of a delivery availability check.
type AvailabilityItem struct {
	ProductID  int64 `json:"productId"`
	Requested  int64 `json:"requested"`
	Available  int64 `json:"available"`
	Sufficient bool  `json:"sufficient"`
}

// AvailabilityReport aggregates the per-line availability results.
type AvailabilityReport struct {
	AllAvailable bool               `json:"allAvailable"`
	Items        []AvailabilityItem `json:"items"`
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	Type   Type
	Status Status
	Limit  int
}

// Engine errors.
var (
	ErrNotFound        = errors.New("transaction not found")
	ErrDuplicateRefNo  = errors.New("transaction refNo already exists")
	ErrWrongType       = errors.New("transaction type mismatch")
	ErrInvalidStatus   = errors.New("transaction status does not allow this transition")
	ErrMissingLocation = errors.New("line location is required")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNoLines         = errors.New("transaction requires at least one line")
)
