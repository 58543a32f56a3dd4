package partners

import (
	"time"
)

// PartnerType distinguishes suppliers from customers.
type PartnerType string

const (
	TypeSupplier PartnerType = "Supplier"
	TypeCustomer PartnerType = "Customer"
)

// IsValid reports whether the type is one of the known kinds.
func (t PartnerType) IsValid() bool {
	return t == TypeSupplier || t == TypeCustomer
}

// Partner is a business partner referenced by transactions.
type Partner struct {
	ID        int64       `json:"id"`
	Type      PartnerType `json:"type"`
	Name      string      `json:"name"`
	Contact   string      `json:"contact"`
	Code      string      `json:"code"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
