package spots

import (
	"context"
	"fmt"
)

// Service exposes read access to the live registry for the ops API.
type Service interface {
	ListSpots(ctx context.Context) []Spot
	ListFreeSpots(ctx context.Context) []Spot
	GetSpot(ctx context.Context, id string) (*Spot, error)
	Occupancy(ctx context.Context) OccupancySummary
}

// OccupancySummary is a quick per-status count of the lot.
type OccupancySummary struct {
	Total    int `json:"total"`
	Free     int `json:"free"`
	Reserved int `json:"reserved"`
	Occupied int `json:"occupied"`
}

type service struct {
	registry *Registry
}

func NewService(registry *Registry) Service {
	return &service{registry: registry}
}

func (s *service) ListSpots(ctx context.Context) []Spot {
	return s.registry.Snapshot()
}

func (s *service) ListFreeSpots(ctx context.Context) []Spot {
	return s.registry.ListFree()
}

func (s *service) GetSpot(ctx context.Context, id string) (*Spot, error) {
	spot, err := s.registry.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get spot %s: %w", id, err)
	}
	return &spot, nil
}

func (s *service) Occupancy(ctx context.Context) OccupancySummary {
	var sum OccupancySummary
	for _, spot := range s.registry.Snapshot() {
		sum.Total++
		switch spot.Status {
		case StatusFree:
			sum.Free++
		case StatusReserved:
			sum.Reserved++
		case StatusOccupied:
			sum.Occupied++
		}
	}
	return sum
}
