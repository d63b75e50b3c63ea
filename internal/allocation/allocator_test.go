package allocation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"parkwise/internal/shared/config"
	"parkwise/internal/spots"
	"parkwise/pkg/logger"
)

func testParkingConfig() config.ParkingConfig {
	return config.ParkingConfig{
		DriveWeight:  1.0,
		WalkWeight:   4.5,
		FloorPenalty: 6.0,
		ParkTime:     5.0,
		GateRow:      0,
		GateCol:      0,
		ElevatorRow:  2,
		ElevatorCol:  4,
	}
}

func newTestAllocator(r *spots.Registry) *Allocator {
	return NewAllocator(r, testParkingConfig(), logger.GetDefault())
}

func TestAllocatePicksCheapestSpot(t *testing.T) {
	r := spots.NewRegistry()
	r.Reset("SPOT-A", &spots.Location{Floor: -1, Row: 0, Col: 0}) // total 38
	r.Reset("SPOT-B", &spots.Location{Floor: -1, Row: 2, Col: 4}) // total 17

	a := newTestAllocator(r)
	got, err := a.Allocate(context.Background(), ArrivalRequest{LicensePlate: "532-12-901", GateID: "GATE-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SpotID != "SPOT-B" {
		t.Errorf("expected SPOT-B, got %s", got.SpotID)
	}
	if got.TotalCost != 17.0 {
		t.Errorf("expected total cost 17.0, got %v", got.TotalCost)
	}
	if got.EstimatedTime != 17.0 {
		t.Errorf("expected estimated time 17.0, got %v", got.EstimatedTime)
	}

	spot, _ := r.Get("SPOT-B")
	if spot.Status != spots.StatusReserved || spot.LicensePlate != "532-12-901" {
		t.Errorf("spot not reserved for winner: %+v", spot)
	}
}

func TestAllocateTieBreaksOnListingOrder(t *testing.T) {
	r := spots.NewRegistry()
	// Identical locations, so identical scores; the free list is sorted by id
	// and the first entry must win every time.
	loc := spots.Location{Floor: -1, Row: 1, Col: 1}
	r.Reset("TIE-B", &loc)
	r.Reset("TIE-A", &loc)
	r.Reset("TIE-C", &loc)

	a := newTestAllocator(r)
	got, err := a.Allocate(context.Background(), ArrivalRequest{LicensePlate: "P1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SpotID != "TIE-A" {
		t.Errorf("tie should break to TIE-A, got %s", got.SpotID)
	}
}

func TestAllocateEmptyLot(t *testing.T) {
	r := spots.NewRegistry()
	a := newTestAllocator(r)

	_, err := a.Allocate(context.Background(), ArrivalRequest{LicensePlate: "P1"})
	if !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("expected ErrNoAvailability, got %v", err)
	}
}

func TestAllocateFullLot(t *testing.T) {
	r := spots.NewRegistry()
	r.Seed(1, 1, 1)
	if _, err := r.Transition("F1-R0-C0", []spots.Status{spots.StatusFree}, spots.StatusOccupied, "P0", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := newTestAllocator(r)
	_, err := a.Allocate(context.Background(), ArrivalRequest{LicensePlate: "P1"})
	if !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("expected ErrNoAvailability, got %v", err)
	}
}

func TestAllocateSentinelSpotStillWins(t *testing.T) {
	// A spot with an unusable location is the only one free; it must still be
	// assigned rather than the arrival failing.
	r := spots.NewRegistry()
	r.Reset("BROKEN", nil)

	a := newTestAllocator(r)
	got, err := a.Allocate(context.Background(), ArrivalRequest{LicensePlate: "P1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SpotID != "BROKEN" {
		t.Errorf("expected BROKEN, got %s", got.SpotID)
	}
	if got.EstimatedTime != SentinelTravel {
		t.Errorf("expected sentinel travel estimate, got %v", got.EstimatedTime)
	}
}

func TestAllocateConcurrentArrivalsExclusive(t *testing.T) {
	// More arrivals than spots: every spot ends up reserved for exactly one
	// plate, and the surplus arrivals all fail with no availability.
	r := spots.NewRegistry()
	r.Seed(1, 2, 2) // 4 spots

	a := newTestAllocator(r)

	const arrivals = 16
	var wg sync.WaitGroup
	results := make([]*Assignment, arrivals)
	errs := make([]error, arrivals)

	for i := 0; i < arrivals; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := ArrivalRequest{LicensePlate: fmt.Sprintf("CAR-%02d", n), GateID: "GATE-1"}
			results[n], errs[n] = a.Allocate(context.Background(), req)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]string)
	var winners, losers int
	for i := 0; i < arrivals; i++ {
		if errs[i] != nil {
			if !errors.Is(errs[i], ErrNoAvailability) {
				t.Fatalf("arrival %d unexpected error: %v", i, errs[i])
			}
			losers++
			continue
		}
		winners++
		if prev, dup := seen[results[i].SpotID]; dup {
			t.Fatalf("spot %s reserved twice: %s and CAR-%02d", results[i].SpotID, prev, i)
		}
		seen[results[i].SpotID] = fmt.Sprintf("CAR-%02d", i)
	}

	if winners != 4 {
		t.Errorf("expected 4 winners, got %d (losers %d)", winners, losers)
	}
	if len(r.ListFree()) != 0 {
		t.Errorf("expected no free spots left, got %d", len(r.ListFree()))
	}
}
