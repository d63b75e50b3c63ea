package spots

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestSeedCreatesGrid(t *testing.T) {
	r := NewRegistry()
	r.Seed(3, 4, 5)

	all := r.Snapshot()
	if len(all) != 60 {
		t.Fatalf("expected 60 spots, got %d", len(all))
	}

	spot, err := r.Get("F2-R1-C3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spot.Location.Floor != -2 || spot.Location.Row != 1 || spot.Location.Col != 3 {
		t.Errorf("unexpected location: %+v", spot.Location)
	}
	if spot.Status != StatusFree {
		t.Errorf("expected seeded spot to be free, got %s", spot.Status)
	}
}

func TestTransitionHappyPath(t *testing.T) {
	r := NewRegistry()
	r.Seed(1, 1, 2)

	spot, err := r.Transition("F1-R0-C0", []Status{StatusFree}, StatusReserved, "88-451-23", "Dana")
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if spot.Status != StatusReserved || spot.LicensePlate != "88-451-23" {
		t.Errorf("unexpected spot after reserve: %+v", spot)
	}

	spot, err = r.Transition("F1-R0-C0", []Status{StatusReserved}, StatusOccupied, "88-451-23", "Dana")
	if err != nil {
		t.Fatalf("park failed: %v", err)
	}
	if spot.Status != StatusOccupied {
		t.Errorf("expected occupied, got %s", spot.Status)
	}

	spot, err = r.Transition("F1-R0-C0", []Status{StatusOccupied}, StatusFree, "", "")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if spot.LicensePlate != "" || spot.DriverName != "" {
		t.Errorf("expected plate cleared on free, got %+v", spot)
	}
}

func TestTransitionConflict(t *testing.T) {
	r := NewRegistry()
	r.Seed(1, 1, 1)

	if _, err := r.Transition("F1-R0-C0", []Status{StatusFree}, StatusReserved, "A", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := r.Transition("F1-R0-C0", []Status{StatusFree}, StatusReserved, "B", "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The losing transition must not have touched the spot.
	spot, _ := r.Get("F1-R0-C0")
	if spot.LicensePlate != "A" {
		t.Errorf("conflict mutated spot: %+v", spot)
	}
}

func TestTransitionUnknownSpot(t *testing.T) {
	r := NewRegistry()
	_, err := r.Transition("F9-R9-C9", []Status{StatusFree}, StatusReserved, "A", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransitionRequiresPlate(t *testing.T) {
	r := NewRegistry()
	r.Seed(1, 1, 1)

	_, err := r.Transition("F1-R0-C0", []Status{StatusFree}, StatusReserved, "", "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestPlateInvariant(t *testing.T) {
	r := NewRegistry()
	r.Seed(2, 2, 2)

	// Drive a few spots through the full state machine and check the
	// invariant after every step: a plate is assigned iff the spot is not free.
	steps := []struct {
		id   string
		from []Status
		to   Status
		lp   string
	}{
		{"F1-R0-C0", []Status{StatusFree}, StatusReserved, "P1"},
		{"F1-R0-C1", []Status{StatusFree}, StatusReserved, "P2"},
		{"F1-R0-C0", []Status{StatusReserved}, StatusOccupied, "P1"},
		{"F1-R0-C1", []Status{StatusReserved}, StatusFree, ""},
		{"F2-R1-C1", []Status{StatusFree}, StatusReserved, "P3"},
		{"F2-R1-C1", []Status{StatusReserved}, StatusOccupied, "P3"},
		{"F2-R1-C1", []Status{StatusOccupied}, StatusFree, ""},
	}

	for i, step := range steps {
		if _, err := r.Transition(step.id, step.from, step.to, step.lp, ""); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		for _, s := range r.Snapshot() {
			hasPlate := s.LicensePlate != ""
			if hasPlate != (s.Status != StatusFree) {
				t.Fatalf("invariant broken after step %d: %+v", i, s)
			}
		}
	}
}

func TestConcurrentReserveExclusivity(t *testing.T) {
	r := NewRegistry()
	r.Seed(1, 1, 1)

	const racers = 50
	var wg sync.WaitGroup
	wins := make(chan string, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			plate := fmt.Sprintf("PLATE-%02d", n)
			if _, err := r.Transition("F1-R0-C0", []Status{StatusFree}, StatusReserved, plate, ""); err == nil {
				wins <- plate
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %d", len(winners))
	}

	spot, _ := r.Get("F1-R0-C0")
	if spot.LicensePlate != winners[0] {
		t.Errorf("spot assigned to %s but %s won", spot.LicensePlate, winners[0])
	}
}

func TestResetIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Seed(1, 1, 1)

	if _, err := r.Transition("F1-R0-C0", []Status{StatusFree}, StatusOccupied, "P1", "Dana"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		spot := r.Reset("F1-R0-C0", &Location{Floor: -1, Row: 0, Col: 0})
		if spot.Status != StatusFree || spot.LicensePlate != "" || spot.DriverName != "" {
			t.Fatalf("reset %d left spot dirty: %+v", i, spot)
		}
	}
}

func TestResetCreatesUnknownSpot(t *testing.T) {
	r := NewRegistry()

	spot := r.Reset("F1-R0-C0", &Location{Floor: -1, Row: 0, Col: 0})
	if spot.Status != StatusFree || !spot.LocationKnown {
		t.Fatalf("unexpected spot: %+v", spot)
	}

	// A reset without a usable location still creates the spot, but leaves it
	// unlocatable so the allocator scores it with the sentinel.
	spot = r.Reset("MYSTERY", nil)
	if spot.LocationKnown {
		t.Errorf("expected unknown location, got %+v", spot)
	}
}

func TestListFreeStableOrder(t *testing.T) {
	r := NewRegistry()
	r.Seed(1, 2, 2)

	first := r.ListFree()
	second := r.ListFree()
	if len(first) != len(second) {
		t.Fatalf("free list changed size between calls")
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("order not stable at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestFindReservedByPlate(t *testing.T) {
	r := NewRegistry()
	r.Seed(1, 1, 2)

	if _, err := r.Transition("F1-R0-C1", []Status{StatusFree}, StatusReserved, "P7", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spot, ok := r.FindReservedByPlate("P7")
	if !ok || spot.ID != "F1-R0-C1" {
		t.Fatalf("expected to find F1-R0-C1, got %v %v", spot.ID, ok)
	}

	if _, ok := r.FindReservedByPlate("NOPE"); ok {
		t.Error("found reservation for unknown plate")
	}

	// Occupied spots are not reservations.
	if _, err := r.Transition("F1-R0-C1", []Status{StatusReserved}, StatusOccupied, "P7", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.FindReservedByPlate("P7"); ok {
		t.Error("occupied spot reported as reserved")
	}
}
