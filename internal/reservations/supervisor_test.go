package reservations

import (
	"sync"
	"testing"
	"time"

	"parkwise/internal/shared/config"
	"parkwise/internal/spots"
	"parkwise/pkg/logger"
)

func testConfig(ttl time.Duration) config.ParkingConfig {
	return config.ParkingConfig{EvictionTTL: ttl}
}

func reserve(t *testing.T, r *spots.Registry, id, plate string) {
	t.Helper()
	if _, err := r.Transition(id, []spots.Status{spots.StatusFree}, spots.StatusReserved, plate, ""); err != nil {
		t.Fatalf("reserve %s failed: %v", id, err)
	}
}

func TestTimeoutReleasesSpot(t *testing.T) {
	r := spots.NewRegistry()
	r.Seed(1, 1, 1)
	reserve(t, r, "F1-R0-C0", "P1")

	var mu sync.Mutex
	var evicted []string
	s := NewSupervisor(r, testConfig(20*time.Millisecond), func(spot spots.Spot) {
		mu.Lock()
		evicted = append(evicted, spot.ID)
		mu.Unlock()
	}, logger.GetDefault())
	defer s.Stop()

	s.OnReserved("F1-R0-C0", 0)

	time.Sleep(100 * time.Millisecond)

	spot, _ := r.Get("F1-R0-C0")
	if spot.Status != spots.StatusFree {
		t.Fatalf("expected spot freed by timeout, got %s", spot.Status)
	}
	if spot.LicensePlate != "" {
		t.Errorf("expected plate cleared, got %q", spot.LicensePlate)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(evicted) != 1 || evicted[0] != "F1-R0-C0" {
		t.Errorf("unexpected eviction callbacks: %v", evicted)
	}
}

func TestResolvedCancelsTimer(t *testing.T) {
	r := spots.NewRegistry()
	r.Seed(1, 1, 1)
	reserve(t, r, "F1-R0-C0", "P1")

	s := NewSupervisor(r, testConfig(20*time.Millisecond), func(spot spots.Spot) {
		t.Errorf("eviction fired after resolution: %s", spot.ID)
	}, logger.GetDefault())
	defer s.Stop()

	s.OnReserved("F1-R0-C0", 0)

	// The vehicle parks before the deadline.
	if _, err := r.Transition("F1-R0-C0", []spots.Status{spots.StatusReserved}, spots.StatusOccupied, "P1", ""); err != nil {
		t.Fatalf("park failed: %v", err)
	}
	s.OnResolved("F1-R0-C0")

	time.Sleep(60 * time.Millisecond)

	spot, _ := r.Get("F1-R0-C0")
	if spot.Status != spots.StatusOccupied {
		t.Fatalf("occupied spot was evicted: %s", spot.Status)
	}
	if s.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", s.Pending())
	}
}

func TestRearmSupersedesOldTimer(t *testing.T) {
	r := spots.NewRegistry()
	r.Seed(1, 1, 1)
	reserve(t, r, "F1-R0-C0", "P1")

	s := NewSupervisor(r, testConfig(40*time.Millisecond), nil, logger.GetDefault())
	defer s.Stop()

	// Arm, then shortly after re-arm for a newer reservation of the same
	// spot. The first timer's deadline passes in between; the spot must
	// survive until the second deadline.
	s.OnReserved("F1-R0-C0", 0)
	time.Sleep(25 * time.Millisecond)
	s.OnReserved("F1-R0-C0", 0)
	time.Sleep(25 * time.Millisecond) // first deadline has passed by now

	spot, _ := r.Get("F1-R0-C0")
	if spot.Status != spots.StatusReserved {
		t.Fatalf("superseded timer evicted the spot")
	}

	time.Sleep(60 * time.Millisecond)
	spot, _ = r.Get("F1-R0-C0")
	if spot.Status != spots.StatusFree {
		t.Fatalf("second timer never fired, spot is %s", spot.Status)
	}
}

func TestTimerConflictIsIgnored(t *testing.T) {
	r := spots.NewRegistry()
	r.Seed(1, 1, 1)
	reserve(t, r, "F1-R0-C0", "P1")

	evictions := 0
	s := NewSupervisor(r, testConfig(20*time.Millisecond), func(spots.Spot) {
		evictions++
	}, logger.GetDefault())
	defer s.Stop()

	s.OnReserved("F1-R0-C0", 0)

	// The spot resolves without telling the supervisor; the firing timer
	// loses the transition and must treat that as a no-op.
	if _, err := r.Transition("F1-R0-C0", []spots.Status{spots.StatusReserved}, spots.StatusOccupied, "P1", ""); err != nil {
		t.Fatalf("park failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	spot, _ := r.Get("F1-R0-C0")
	if spot.Status != spots.StatusOccupied {
		t.Fatalf("expected occupied to survive timer, got %s", spot.Status)
	}
	if evictions != 0 {
		t.Errorf("eviction callback ran %d times for a resolved spot", evictions)
	}
}

func TestScaleWithEstimate(t *testing.T) {
	r := spots.NewRegistry()
	r.Seed(1, 1, 1)
	reserve(t, r, "F1-R0-C0", "P1")

	cfg := config.ParkingConfig{EvictionTTL: 10 * time.Second, EvictionScaleWithEstimate: true}
	s := NewSupervisor(r, cfg, nil, logger.GetDefault())
	defer s.Stop()

	// With scaling enabled the short estimate, not the long flat TTL, decides
	// the deadline.
	s.OnReserved("F1-R0-C0", 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	spot, _ := r.Get("F1-R0-C0")
	if spot.Status != spots.StatusFree {
		t.Fatalf("expected eviction at the scaled deadline, got %s", spot.Status)
	}
}

func TestStopCancelsAll(t *testing.T) {
	r := spots.NewRegistry()
	r.Seed(1, 1, 2)
	reserve(t, r, "F1-R0-C0", "P1")
	reserve(t, r, "F1-R0-C1", "P2")

	s := NewSupervisor(r, testConfig(20*time.Millisecond), nil, logger.GetDefault())
	s.OnReserved("F1-R0-C0", 0)
	s.OnReserved("F1-R0-C1", 0)
	s.Stop()

	time.Sleep(60 * time.Millisecond)

	for _, id := range []string{"F1-R0-C0", "F1-R0-C1"} {
		spot, _ := r.Get(id)
		if spot.Status != spots.StatusReserved {
			t.Errorf("timer fired after Stop for %s", id)
		}
	}
}
