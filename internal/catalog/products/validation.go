package products

import (
	"fmt"
	"strings"

	"github.com/warelog/warelog/internal/platform/httpx"
)

func invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, httpx.ErrValidation)
}

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.SKU) == "" {
		return invalid("product sku is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return invalid("product name is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return invalid("product category is required")
	}
	if strings.TrimSpace(p.Unit) == "" {
		return invalid("product unit is required")
	}
	if p.ReorderPoint < 0 || p.ReorderQty < 0 {
		return invalid("reorder thresholds must not be negative")
	}
	return nil
}
