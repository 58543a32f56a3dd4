package warehouses

import (
	"fmt"
	"strings"

	"github.com/warelog/warelog/internal/platform/httpx"
)

func invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, httpx.ErrValidation)
}

func (s *Service) validate(w Warehouse) error {
	if strings.TrimSpace(w.Code) == "" {
		return invalid("warehouse code is required")
	}
	if strings.TrimSpace(w.Name) == "" {
		return invalid("warehouse name is required")
	}
	seen := make(map[string]struct{}, len(w.Locations))
	for _, loc := range w.Locations {
		if err := validateLocation(loc); err != nil {
			return err
		}
		if _, dup := seen[loc.LocationID]; dup {
			return invalid("duplicate location id " + loc.LocationID)
		}
		seen[loc.LocationID] = struct{}{}
	}
	return nil
}

func validateLocation(loc Location) error {
	if strings.TrimSpace(loc.LocationID) == "" {
		return invalid("location id is required")
	}
	if strings.TrimSpace(loc.Name) == "" {
		return invalid("location name is required")
	}
	if strings.TrimSpace(loc.Code) == "" {
		return invalid("location code is required")
	}
	return nil
}
