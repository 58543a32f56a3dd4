package partners

import (
	"context"
	"fmt"
	"strings"

	"github.com/warelog/warelog/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, httpx.ErrValidation)
}

func (s *Service) validate(p Partner) error {
	if !p.Type.IsValid() {
		return invalid("partner type must be Supplier or Customer")
	}
	if strings.TrimSpace(p.Name) == "" {
		return invalid("partner name is required")
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Partner, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Partner, error) {
	if id <= 0 {
		return Partner{}, invalid("invalid partner ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, partner Partner) (Partner, error) {
	if err := s.validate(partner); err != nil {
		return Partner{}, err
	}
	return s.repo.Create(ctx, partner)
}

func (s *Service) Update(ctx context.Context, id int64, partner Partner) error {
	if id <= 0 {
		return invalid("invalid partner ID")
	}
	if err := s.validate(partner); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, partner)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("invalid partner ID")
	}
	return s.repo.Delete(ctx, id)
}
