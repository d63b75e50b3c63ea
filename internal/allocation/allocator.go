package allocation

import (
	"context"
	"errors"
	"time"

	"parkwise/internal/shared/config"
	"parkwise/internal/spots"
	"parkwise/pkg/logger"
)

// ErrNoAvailability is returned when no free spot exists, or when contention
// contention exhausted the retry allowance (a lot that busy is effectively full).
var ErrNoAvailability = errors.New("no parking availability")

// ArrivalRequest is the transient input for one vehicle at a gate.
type ArrivalRequest struct {
	LicensePlate string
	GateID       string
	DriverName   string
}

// Assignment is the outcome of a successful allocation. EstimatedTime is in
// seconds: the drive-plus-park estimate from the cost model.
type Assignment struct {
	SpotID        string  `json:"spot_id"`
	Floor         int     `json:"floor"`
	TotalCost     float64 `json:"total_cost"`
	EstimatedTime float64 `json:"estimated_time"`
}

// EstimatedDuration returns the travel estimate as a duration.
func (a Assignment) EstimatedDuration() time.Duration {
	return time.Duration(a.EstimatedTime * float64(time.Second))
}

// Allocator picks the cheapest free spot for an arriving vehicle and reserves
// it atomically against competing arrivals.
type Allocator struct {
	registry *spots.Registry
	weights  Weights
	gate     Coords
	elevator Coords
	log      *logger.Logger
}

func NewAllocator(registry *spots.Registry, cfg config.ParkingConfig, log *logger.Logger) *Allocator {
	w, gate, elevator := WeightsFromConfig(cfg)
	return &Allocator{
		registry: registry,
		weights:  w,
		gate:     gate,
		elevator: elevator,
		log:      log,
	}
}

// Allocate scores every free spot, reserves the cheapest one, and returns the
// assignment. Ties break toward the first spot in the registry's stable free
// listing, so selection is reproducible. Losing a reserve race refreshes the
// free list and tries again, bounded by the number of spots that were free on
// the first pass.
func (a *Allocator) Allocate(ctx context.Context, req ArrivalRequest) (*Assignment, error) {
	free := a.registry.ListFree()
	if len(free) == 0 {
		return nil, ErrNoAvailability
	}

	// Allow one retry per originally-free spot before giving up.
	maxAttempts := len(free)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			free = a.registry.ListFree()
			if len(free) == 0 {
				return nil, ErrNoAvailability
			}
		}

		best, bestTotal, bestTravel := a.pickBest(free)

		_, err := a.registry.Transition(best.ID, []spots.Status{spots.StatusFree}, spots.StatusReserved, req.LicensePlate, req.DriverName)
		if err != nil {
			if errors.Is(err, spots.ErrConflict) {
				// Another arrival won this spot between listing and reserving.
				a.log.WithSpot(best.ID).Debug("lost reserve race, retrying",
					"license_plate", req.LicensePlate, "attempt", attempt+1)
				continue
			}
			return nil, err
		}

		assignment := &Assignment{
			SpotID:        best.ID,
			Floor:         best.Location.Floor,
			TotalCost:     bestTotal,
			EstimatedTime: bestTravel,
		}
		a.log.LogAllocation(ctx, req.LicensePlate, req.GateID, best.ID, bestTotal, bestTravel)
		return assignment, nil
	}

	return nil, ErrNoAvailability
}

// pickBest returns the minimum-cost spot from a non-empty candidate list.
// Sentinel-scored spots stay in the running so a result exists whenever any
// spot is free.
func (a *Allocator) pickBest(free []spots.Spot) (spots.Spot, float64, float64) {
	best := free[0]
	bestTotal, bestTravel := ScoreSpot(best, a.gate, a.elevator, a.weights)

	for _, candidate := range free[1:] {
		total, travel := ScoreSpot(candidate, a.gate, a.elevator, a.weights)
		// Strict less-than keeps the earliest listed spot on ties.
		if total < bestTotal {
			best = candidate
			bestTotal = total
			bestTravel = travel
		}
	}
	return best, bestTotal, bestTravel
}
