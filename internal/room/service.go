package room

import (
	"context"
	"time"

	"roombook/internal/location"
)

// Service defines business logic for rooms.
type Service interface {
	Create(ctx context.Context, rm *Room, resourceIDs []string) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, rm *Room, resourceIDs []string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo       Repository
	locService location.Service
}

func NewService(repo Repository, locService location.Service) Service {
	return &service{
		repo:       repo,
		locService: locService,
	}
}

func (s *service) Create(ctx context.Context, rm *Room, resourceIDs []string) error {
	if rm.Capacity < 1 {
		return ErrInvalidCapacity
	}

	if _, err := s.locService.GetByID(ctx, rm.LocationID); err != nil {
		return ErrLocationMissing
	}

	if err := s.repo.Create(ctx, rm); err != nil {
		return err
	}

	if len(resourceIDs) > 0 {
		if err := s.repo.SetResources(ctx, rm.ID, resourceIDs); err != nil {
			return err
		}
	}

	// Re-read so the response carries location name and resource tags.
	created, err := s.repo.GetByID(ctx, rm.ID)
	if err != nil {
		return err
	}
	*rm = *created

	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, rm *Room, resourceIDs []string) error {
	if rm.Capacity < 1 {
		return ErrInvalidCapacity
	}

	if err := s.repo.Update(ctx, rm); err != nil {
		return err
	}

	if resourceIDs != nil {
		if err := s.repo.SetResources(ctx, rm.ID, resourceIDs); err != nil {
			return err
		}
	}

	updated, err := s.repo.GetByID(ctx, rm.ID)
	if err != nil {
		return err
	}
	*rm = *updated

	return nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx, time.Now().UTC())
}
