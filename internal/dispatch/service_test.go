package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"parkwise/internal/allocation"
	"parkwise/internal/drivers"
	"parkwise/internal/notifications"
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
		Floors:       1,
		Rows:         2,
		Cols:         2,
		EvictionTTL:  time.Minute,
	}
}

type fakeTimers struct {
	mu       sync.Mutex
	armed    []string
	resolved []string
}

func (f *fakeTimers) OnReserved(spotID string, estimate time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = append(f.armed, spotID)
}

func (f *fakeTimers) OnResolved(spotID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, spotID)
}

type fakeDirectory struct {
	profiles map[string]*drivers.Profile
}

func (f *fakeDirectory) Lookup(ctx context.Context, plate string) (*drivers.Profile, error) {
	if p, ok := f.profiles[plate]; ok {
		return p, nil
	}
	return nil, drivers.ErrNotFound
}

type fakePublisher struct {
	mu       sync.Mutex
	commands []notifications.SpotCommand
}

func (f *fakePublisher) PublishCommand(ctx context.Context, cmd notifications.SpotCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	return nil
}

func (f *fakePublisher) last() (notifications.SpotCommand, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.commands) == 0 {
		return notifications.SpotCommand{}, false
	}
	return f.commands[len(f.commands)-1], true
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*notifications.Assignment
}

func (f *fakeNotifier) PublishAssignment(ctx context.Context, a *notifications.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, a)
	return nil
}

func newTestService(t *testing.T) (*Service, *spots.Registry, *fakeTimers, *fakePublisher, *fakeNotifier) {
	t.Helper()
	cfg := testParkingConfig()
	log := logger.New()

	registry := spots.NewRegistry()
	registry.Seed(cfg.Floors, cfg.Rows, cfg.Cols)

	allocator := allocation.NewAllocator(registry, cfg, log)
	timers := &fakeTimers{}
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	directory := &fakeDirectory{profiles: map[string]*drivers.Profile{
		"111-22-333": {Name: "Dana", Email: "dana@example.com"},
	}}

	service := NewService(registry, allocator, timers, directory, publisher, notifier, nil, nil, log)
	return service, registry, timers, publisher, notifier
}

func TestGateArrivalReservesCheapestSpot(t *testing.T) {
	service, registry, timers, publisher, notifier := newTestService(t)

	outcome, err := service.HandleEvent(context.Background(), Event{
		GateID:       "GATE-1",
		Status:       "occupied",
		LicensePlate: "111-22-333",
	})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if outcome.Assignment == nil {
		t.Fatal("expected an assignment")
	}

	spot, err := registry.Get(outcome.SpotID)
	if err != nil {
		t.Fatalf("Get(%s): %v", outcome.SpotID, err)
	}
	if spot.Status != spots.StatusReserved {
		t.Fatalf("status = %s, want reserved", spot.Status)
	}
	if spot.LicensePlate != "111-22-333" {
		t.Fatalf("plate = %q, want 111-22-333", spot.LicensePlate)
	}
	if spot.DriverName != "Dana" {
		t.Fatalf("driver = %q, want Dana", spot.DriverName)
	}

	if len(timers.armed) != 1 || timers.armed[0] != outcome.SpotID {
		t.Fatalf("timers armed = %v, want [%s]", timers.armed, outcome.SpotID)
	}
	cmd, ok := publisher.last()
	if !ok || cmd.Action != notifications.ActionReserve || cmd.SpotID != outcome.SpotID {
		t.Fatalf("last command = %+v, want reserve for %s", cmd, outcome.SpotID)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Email != "dana@example.com" {
		t.Fatalf("notifications = %+v, want one to dana@example.com", notifier.sent)
	}
}

func TestGateArrivalUnknownPlateDefaultsToGuest(t *testing.T) {
	service, registry, _, _, _ := newTestService(t)

	outcome, err := service.HandleEvent(context.Background(), Event{
		GateID:       "GATE-2",
		Status:       "occupied",
		LicensePlate: "999-99-999",
	})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	spot, _ := registry.Get(outcome.SpotID)
	if spot.DriverName != drivers.GuestName {
		t.Fatalf("driver = %q, want %q", spot.DriverName, drivers.GuestName)
	}
}

func TestGateArrivalFullLot(t *testing.T) {
	service, registry, timers, publisher, _ := newTestService(t)

	// Occupy every spot.
	for _, spot := range registry.Snapshot() {
		if _, err := registry.Transition(spot.ID, []spots.Status{spots.StatusFree}, spots.StatusOccupied, "X-"+spot.ID, ""); err != nil {
			t.Fatalf("setup transition: %v", err)
		}
	}
	before := registry.Snapshot()

	outcome, err := service.HandleEvent(context.Background(), Event{
		GateID:       "GATE-1",
		Status:       "occupied",
		LicensePlate: "111-22-333",
	})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if !outcome.LotFull {
		t.Fatal("expected lot_full outcome")
	}

	after := registry.Snapshot()
	for i := range before {
		if before[i].Status != after[i].Status || before[i].LicensePlate != after[i].LicensePlate {
			t.Fatalf("lot state changed on full lot: %+v -> %+v", before[i], after[i])
		}
	}
	if len(timers.armed) != 0 {
		t.Fatalf("timers armed on full lot: %v", timers.armed)
	}
	if _, ok := publisher.last(); ok {
		t.Fatal("command published on full lot")
	}
}

func TestOccupiedReportReleasesStaleReservation(t *testing.T) {
	service, registry, timers, publisher, _ := newTestService(t)

	// Reserve F1-R0-C0 for the plate, then report the car parked elsewhere.
	if _, err := registry.Transition("F1-R0-C0", []spots.Status{spots.StatusFree}, spots.StatusReserved, "111-22-333", "Dana"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	outcome, err := service.HandleEvent(context.Background(), Event{
		SpotID:       "F1-R1-C1",
		Status:       "occupied",
		LicensePlate: "111-22-333",
	})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if outcome.Released != "F1-R0-C0" {
		t.Fatalf("released = %q, want F1-R0-C0", outcome.Released)
	}

	stale, _ := registry.Get("F1-R0-C0")
	if stale.Status != spots.StatusFree || stale.LicensePlate != "" {
		t.Fatalf("stale spot = %+v, want free and unassigned", stale)
	}
	parked, _ := registry.Get("F1-R1-C1")
	if parked.Status != spots.StatusOccupied || parked.LicensePlate != "111-22-333" {
		t.Fatalf("parked spot = %+v, want occupied by 111-22-333", parked)
	}

	// Both spots resolved their timers.
	resolved := map[string]bool{}
	for _, id := range timers.resolved {
		resolved[id] = true
	}
	if !resolved["F1-R0-C0"] || !resolved["F1-R1-C1"] {
		t.Fatalf("resolved = %v, want both spots", timers.resolved)
	}

	// Free command for the stale spot, occupy command for the parked one.
	var sawFree, sawOccupy bool
	for _, cmd := range publisher.commands {
		if cmd.Action == notifications.ActionFree && cmd.SpotID == "F1-R0-C0" {
			sawFree = true
		}
		if cmd.Action == notifications.ActionOccupy && cmd.SpotID == "F1-R1-C1" {
			sawOccupy = true
		}
	}
	if !sawFree || !sawOccupy {
		t.Fatalf("commands = %+v, want free F1-R0-C0 and occupy F1-R1-C1", publisher.commands)
	}
}

func TestFreeReportClearsSpot(t *testing.T) {
	service, registry, _, publisher, _ := newTestService(t)

	if _, err := registry.Transition("F1-R0-C0", []spots.Status{spots.StatusFree}, spots.StatusOccupied, "111-22-333", "Dana"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := service.HandleEvent(context.Background(), Event{
		SpotID: "F1-R0-C0",
		Status: "free",
	}); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	spot, _ := registry.Get("F1-R0-C0")
	if spot.Status != spots.StatusFree || spot.LicensePlate != "" {
		t.Fatalf("spot = %+v, want free and unassigned", spot)
	}
	cmd, ok := publisher.last()
	if !ok || cmd.Action != notifications.ActionFree {
		t.Fatalf("last command = %+v, want free", cmd)
	}
}

func TestFreeReportUnknownSpot(t *testing.T) {
	service, _, _, _, _ := newTestService(t)

	_, err := service.HandleEvent(context.Background(), Event{
		SpotID: "F9-R9-C9",
		Status: "free",
	})
	if err == nil {
		t.Fatal("expected error for unknown spot")
	}
}

func TestResetIsIdempotentAndCreates(t *testing.T) {
	service, registry, timers, _, _ := newTestService(t)

	loc := &spots.Location{Floor: -2, Row: 1, Col: 3}
	for i := 0; i < 2; i++ {
		outcome, err := service.HandleEvent(context.Background(), Event{
			SpotID:   "F2-R1-C3",
			Status:   "reset",
			Location: loc,
		})
		if err != nil {
			t.Fatalf("HandleEvent pass %d: %v", i, err)
		}
		if outcome.Kind != KindReset {
			t.Fatalf("kind = %v, want reset", outcome.Kind)
		}
	}

	spot, err := registry.Get("F2-R1-C3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if spot.Status != spots.StatusFree || !spot.LocationKnown {
		t.Fatalf("spot = %+v, want free with known location", spot)
	}
	if len(timers.resolved) != 2 {
		t.Fatalf("resolved = %v, want two entries", timers.resolved)
	}
}

func TestMalformedEventsRejected(t *testing.T) {
	service, _, _, publisher, _ := newTestService(t)

	cases := []Event{
		{},                                       // nothing at all
		{Status: "occupied"},                     // no spot, no gate
		{SpotID: "F1-R0-C0", Status: "occupied"}, // occupied without plate
		{GateID: "GATE-1", Status: "occupied"},   // arrival without plate
		{SpotID: "F1-R0-C0", Status: "sideways"}, // unknown status
		{Status: "reset"},                        // reset without spot
	}
	for i, event := range cases {
		if _, err := service.HandleEvent(context.Background(), event); err == nil {
			t.Fatalf("case %d: expected rejection for %+v", i, event)
		}
	}
	if _, ok := publisher.last(); ok {
		t.Fatal("malformed events must not publish commands")
	}
}

func TestLegacyGatePrefixArrival(t *testing.T) {
	service, registry, _, _, _ := newTestService(t)

	outcome, err := service.HandleEvent(context.Background(), Event{
		SpotID:       "GATE-1",
		Status:       "occupied",
		LicensePlate: "532-12-901",
	})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if outcome.Assignment == nil {
		t.Fatal("expected an assignment from legacy gate payload")
	}
	spot, _ := registry.Get(outcome.SpotID)
	if spot.Status != spots.StatusReserved {
		t.Fatalf("status = %s, want reserved", spot.Status)
	}
}
