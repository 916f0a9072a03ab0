package location

import (
	"context"
)

// Service defines business logic for locations.
type Service interface {
	Create(ctx context.Context, loc *Location) error
	GetByID(ctx context.Context, id string) (*Location, error)
	List(ctx context.Context, filter Filter) ([]*Location, int, error)
	Update(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, loc *Location) error {
	loc.Normalize()
	if err := loc.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, loc)
}

func (s *service) GetByID(ctx context.Context, id string) (*Location, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Location, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, loc *Location) error {
	loc.Normalize()
	if err := loc.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, loc)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
