package products

import (
	"context"
)

// Service implements product catalog business rules.
type Service struct {
	repo Repository
}

// NewService constructs the products service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, invalid("invalid product ID")
	}
	return s.repo.Get(ctx, id)
}

// Create validates the product and applies reorder defaults before saving.
func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	if product.ReorderPoint == 0 {
		product.ReorderPoint = DefaultReorderPoint
	}
	if product.ReorderQty == 0 {
		product.ReorderQty = DefaultReorderQty
	}
	return s.repo.Create(ctx, product)
}

// Update replaces a product's fields after validation.
func (s *Service) Update(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return invalid("invalid product ID")
	}
	if err := s.validate(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, product)
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("invalid product ID")
	}
	return s.repo.Delete(ctx, id)
}
