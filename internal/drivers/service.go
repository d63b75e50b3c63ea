package drivers

import (
	"context"
	"errors"
	"fmt"

	"parkwise/internal/shared/constants"
	"parkwise/pkg/cache"
)

// Service resolves license plates to driver profiles with a cache in front of
// the directory table. Lookup never fails for an unknown plate; it reports
// ErrNotFound so callers can default to the guest profile.
type Service interface {
	Lookup(ctx context.Context, plate string) (*Profile, error)
	List(ctx context.Context) ([]Driver, error)
	Register(ctx context.Context, driver *Driver) error
	Remove(ctx context.Context, plate string) error
}

type serviceImpl struct {
	repo  Repository
	cache cache.Service
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &serviceImpl{repo: repo, cache: cacheService}
}

func (s *serviceImpl) Lookup(ctx context.Context, plate string) (*Profile, error) {
	if plate == "" {
		return nil, ErrNotFound
	}

	if s.cache != nil {
		var profile Profile
		key := constants.BuildDriverKey(plate)
		err := s.cache.GetOrSet(ctx, key, constants.TTLDriverDirectory, func() (interface{}, error) {
			driver, err := s.repo.GetByPlate(ctx, plate)
			if err != nil {
				return nil, err
			}
			return Profile{Name: driver.Name, Email: driver.Email}, nil
		}, &profile)
		if err == nil {
			return &profile, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		// Degraded cache: fall through to the table.
	}

	driver, err := s.repo.GetByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory lookup for %s: %w", plate, err)
	}
	return &Profile{Name: driver.Name, Email: driver.Email}, nil
}

func (s *serviceImpl) List(ctx context.Context) ([]Driver, error) {
	return s.repo.List(ctx)
}

func (s *serviceImpl) Register(ctx context.Context, driver *Driver) error {
	if err := s.repo.Upsert(ctx, driver); err != nil {
		return fmt.Errorf("register driver %s: %w", driver.LicensePlate, err)
	}
	s.invalidate(ctx, driver.LicensePlate)
	return nil
}

func (s *serviceImpl) Remove(ctx context.Context, plate string) error {
	if err := s.repo.Delete(ctx, plate); err != nil {
		return fmt.Errorf("remove driver %s: %w", plate, err)
	}
	s.invalidate(ctx, plate)
	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, plate string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, constants.BuildDriverKey(plate))
}
