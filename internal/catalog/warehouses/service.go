package warehouses

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, search string) ([]Warehouse, error) {
	return s.repo.List(ctx, search)
}

func (s *Service) Get(ctx context.Context, id int64) (Warehouse, error) {
	if id <= 0 {
		return Warehouse{}, invalid("invalid warehouse ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	if err := s.validate(warehouse); err != nil {
		return Warehouse{}, err
	}
	return s.repo.Create(ctx, warehouse)
}

func (s *Service) Update(ctx context.Context, id int64, warehouse Warehouse) error {
	if id <= 0 {
		return invalid("invalid warehouse ID")
	}
	if err := s.validate(warehouse); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, warehouse)
}

// AddLocation appends a location to the warehouse document.
func (s *Service) AddLocation(ctx context.Context, id int64, location Location) (Warehouse, error) {
	warehouse, err := s.Get(ctx, id)
	if err != nil {
		return Warehouse{}, err
	}
	if err := validateLocation(location); err != nil {
		return Warehouse{}, err
	}
	if warehouse.HasLocation(location.LocationID) {
		return Warehouse{}, invalid("location id already exists in warehouse")
	}
	warehouse.Locations = append(warehouse.Locations, location)
	if err := s.repo.Update(ctx, id, warehouse); err != nil {
		return Warehouse{}, err
	}
	return warehouse, nil
}

// RemoveLocation drops a location from the warehouse document. Stock rows
// referencing the removed id are left untouched.
func (s *Service) RemoveLocation(ctx context.Context, id int64, locationID string) (Warehouse, error) {
	warehouse, err := s.Get(ctx, id)
	if err != nil {
		return Warehouse{}, err
	}
	kept := warehouse.Locations[:0]
	found := false
	for _, loc := range warehouse.Locations {
		if loc.LocationID == locationID {
			found = true
			continue
		}
		kept = append(kept, loc)
	}
	if !found {
		return Warehouse{}, invalid("location id not found in warehouse")
	}
	warehouse.Locations = kept
	if err := s.repo.Update(ctx, id, warehouse); err != nil {
		return Warehouse{}, err
	}
	return warehouse, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("invalid warehouse ID")
	}
	return s.repo.Delete(ctx, id)
}
