package warehouses

import (
	"time"
)

// Location is a named sub-area of a warehouse. Locations only exist embedded
// inside their warehouse and are referenced elsewhere by LocationID alone.
type Location struct {
	LocationID string `json:"locationId"`
	Name       string `json:"name"`
	Code       string `json:"code"`
}

// Warehouse represents a physical warehouse with its ordered locations.
type Warehouse struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Locations []Location `json:"locations"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// HasLocation reports whether locationID is declared on the warehouse.
func (w Warehouse) HasLocation(locationID string) bool {
	for _, loc := range w.Locations {
		if loc.LocationID == locationID {
			return true
		}
	}
	return false
}
