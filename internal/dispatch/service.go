package dispatch

import (
	"context"
	"errors"
	"time"

	"parkwise/internal/allocation"
	"parkwise/internal/drivers"
	"parkwise/internal/notifications"
	"parkwise/internal/spots"
	"parkwise/pkg/logger"
)

// Collaborator seams. Every side-channel the engine touches sits behind a
// small interface so the engine stays testable and degrades to a pure state
// machine when a collaborator is absent.
type (
	// Directory resolves license plates to registered driver profiles.
	Directory interface {
		Lookup(ctx context.Context, plate string) (*drivers.Profile, error)
	}

	// CommandPublisher pushes hardware commands for committed transitions.
	CommandPublisher interface {
		PublishCommand(ctx context.Context, cmd notifications.SpotCommand) error
	}

	// Notifier queues driver-facing assignment notifications.
	Notifier interface {
		PublishAssignment(ctx context.Context, assignment *notifications.Assignment) error
	}

	// SnapshotPublisher refreshes the read-side lot state.
	SnapshotPublisher interface {
		Publish(ctx context.Context) error
	}

	// SpotStore mirrors committed spot state to durable storage.
	SpotStore interface {
		Save(ctx context.Context, spot spots.Spot) error
	}

	// ReservationTimers arms and disarms per-spot eviction timers.
	ReservationTimers interface {
		OnReserved(spotID string, estimate time.Duration)
		OnResolved(spotID string)
	}
)

// Outcome reports what an event did to the lot.
type Outcome struct {
	Kind       Kind                   `json:"-"`
	SpotID     string                 `json:"spot_id,omitempty"`
	Assignment *allocation.Assignment `json:"assignment,omitempty"`
	LotFull    bool                   `json:"lot_full,omitempty"`
	Released   string                 `json:"released_spot_id,omitempty"`
}

// Service routes inbound lot events into registry transitions plus their
// side effects. The registry transition is the commit point; everything after
// it (commands, notifications, snapshot, mirror) is best effort.
type Service struct {
	registry  *spots.Registry
	allocator *allocation.Allocator
	timers    ReservationTimers
	directory Directory
	publisher CommandPublisher
	notifier  Notifier
	snapshot  SnapshotPublisher
	store     SpotStore
	log       *logger.Logger
}

func NewService(
	registry *spots.Registry,
	allocator *allocation.Allocator,
	timers ReservationTimers,
	directory Directory,
	publisher CommandPublisher,
	notifier Notifier,
	snapshot SnapshotPublisher,
	store SpotStore,
	log *logger.Logger,
) *Service {
	return &Service{
		registry:  registry,
		allocator: allocator,
		timers:    timers,
		directory: directory,
		publisher: publisher,
		notifier:  notifier,
		snapshot:  snapshot,
		store:     store,
		log:       log,
	}
}

// HandleEvent classifies and applies one event. Registry errors propagate;
// side-effect failures are logged and swallowed.
func (s *Service) HandleEvent(ctx context.Context, event Event) (*Outcome, error) {
	kind, err := event.Classify()
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindReset:
		return s.handleReset(ctx, event)
	case KindGateArrival:
		return s.handleGateArrival(ctx, event)
	case KindStatusReport:
		return s.handleStatusReport(ctx, event)
	}
	return nil, ErrMalformedEvent
}

// handleReset forces a spot back to free regardless of prior state, adopting
// the reported location when one is attached. Resetting an unknown spot
// creates it, which is how new hardware announces itself.
func (s *Service) handleReset(ctx context.Context, event Event) (*Outcome, error) {
	spot := s.registry.Reset(event.SpotID, event.Location)
	if s.timers != nil {
		s.timers.OnResolved(spot.ID)
	}
	s.log.LogTransition(ctx, spot.ID, "*", string(spots.StatusFree), "")

	s.mirror(ctx, spot)
	s.refreshSnapshot(ctx)

	return &Outcome{Kind: KindReset, SpotID: spot.ID}, nil
}

// handleGateArrival allocates the cheapest free spot for the vehicle at the
// gate. A full lot is an answered outcome, not an error.
func (s *Service) handleGateArrival(ctx context.Context, event Event) (*Outcome, error) {
	profile := s.lookupDriver(ctx, event.LicensePlate)

	assignment, err := s.allocator.Allocate(ctx, allocation.ArrivalRequest{
		LicensePlate: event.LicensePlate,
		GateID:       event.Gate(),
		DriverName:   profile.Name,
	})
	if err != nil {
		if errors.Is(err, allocation.ErrNoAvailability) {
			s.log.LogLotFull(ctx, event.LicensePlate, event.Gate())
			return &Outcome{Kind: KindGateArrival, LotFull: true}, nil
		}
		return nil, err
	}

	if s.timers != nil {
		s.timers.OnReserved(assignment.SpotID, assignment.EstimatedDuration())
	}

	s.publishCommand(ctx, notifications.SpotCommand{
		Action:       notifications.ActionReserve,
		SpotID:       assignment.SpotID,
		LicensePlate: event.LicensePlate,
		TravelTime:   assignment.EstimatedTime,
	})
	s.notifyDriver(ctx, event.LicensePlate, profile, assignment)
	s.mirrorByID(ctx, assignment.SpotID)
	s.refreshSnapshot(ctx)

	return &Outcome{Kind: KindGateArrival, SpotID: assignment.SpotID, Assignment: assignment}, nil
}

// handleStatusReport applies a sensor's ground truth for one spot.
func (s *Service) handleStatusReport(ctx context.Context, event Event) (*Outcome, error) {
	switch event.NormalizedStatus() {
	case wireStatusFree:
		return s.handleReportedFree(ctx, event)
	case wireStatusOccupied:
		return s.handleReportedOccupied(ctx, event)
	}
	return nil, ErrMalformedEvent
}

func (s *Service) handleReportedFree(ctx context.Context, event Event) (*Outcome, error) {
	anyStatus := []spots.Status{spots.StatusFree, spots.StatusReserved, spots.StatusOccupied}
	spot, err := s.registry.Transition(event.SpotID, anyStatus, spots.StatusFree, "", "")
	if err != nil {
		return nil, err
	}
	if s.timers != nil {
		s.timers.OnResolved(spot.ID)
	}
	s.log.LogTransition(ctx, spot.ID, "*", string(spots.StatusFree), event.LicensePlate)

	s.publishCommand(ctx, notifications.SpotCommand{
		Action: notifications.ActionFree,
		SpotID: spot.ID,
	})
	s.mirror(ctx, spot)
	s.refreshSnapshot(ctx)

	return &Outcome{Kind: KindStatusReport, SpotID: spot.ID}, nil
}

// handleReportedOccupied marks the reported spot occupied. When the plate
// holds a reservation on a different spot the driver parked somewhere else,
// so the stale reservation is released first.
func (s *Service) handleReportedOccupied(ctx context.Context, event Event) (*Outcome, error) {
	outcome := &Outcome{Kind: KindStatusReport, SpotID: event.SpotID}

	if reserved, ok := s.registry.FindReservedByPlate(event.LicensePlate); ok && reserved.ID != event.SpotID {
		_, err := s.registry.Transition(reserved.ID, []spots.Status{spots.StatusReserved}, spots.StatusFree, "", "")
		if err == nil {
			outcome.Released = reserved.ID
			if s.timers != nil {
				s.timers.OnResolved(reserved.ID)
			}
			s.log.LogTransition(ctx, reserved.ID, string(spots.StatusReserved), string(spots.StatusFree), event.LicensePlate)
			s.publishCommand(ctx, notifications.SpotCommand{
				Action: notifications.ActionFree,
				SpotID: reserved.ID,
			})
			s.mirrorByID(ctx, reserved.ID)
		} else if !errors.Is(err, spots.ErrConflict) {
			return nil, err
		}
		// A conflict means the reservation resolved concurrently; the sensor
		// report below still stands.
	}

	// Occupying covers both the normal park and the override where a vehicle
	// takes a spot reserved for someone else. A spot already occupied stays a
	// conflict and is reported back to the sensor.
	profile := s.lookupDriver(ctx, event.LicensePlate)
	spot, err := s.registry.Transition(event.SpotID,
		[]spots.Status{spots.StatusFree, spots.StatusReserved},
		spots.StatusOccupied, event.LicensePlate, profile.Name)
	if err != nil {
		return nil, err
	}
	if s.timers != nil {
		s.timers.OnResolved(spot.ID)
	}
	s.log.LogTransition(ctx, spot.ID, "*", string(spots.StatusOccupied), event.LicensePlate)

	s.publishCommand(ctx, notifications.SpotCommand{
		Action:       notifications.ActionOccupy,
		SpotID:       spot.ID,
		LicensePlate: event.LicensePlate,
	})
	s.mirror(ctx, spot)
	s.refreshSnapshot(ctx)

	return outcome, nil
}

// lookupDriver resolves a plate against the directory, defaulting to the
// guest profile on miss or directory failure.
func (s *Service) lookupDriver(ctx context.Context, plate string) *drivers.Profile {
	guest := &drivers.Profile{Name: drivers.GuestName}
	if s.directory == nil {
		return guest
	}

	profile, err := s.directory.Lookup(ctx, plate)
	if err != nil {
		if !errors.Is(err, drivers.ErrNotFound) {
			s.log.LogSideEffectFailure(ctx, "driver lookup", err)
		}
		return guest
	}
	return profile
}

func (s *Service) notifyDriver(ctx context.Context, plate string, profile *drivers.Profile, assignment *allocation.Assignment) {
	if s.notifier == nil {
		return
	}
	notification := notifications.NewAssignment(plate, profile.Name, profile.Email, assignment.SpotID, assignment.Floor)
	if err := s.notifier.PublishAssignment(ctx, notification); err != nil {
		s.log.LogSideEffectFailure(ctx, "assignment notification", err)
	}
}

func (s *Service) publishCommand(ctx context.Context, cmd notifications.SpotCommand) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCommand(ctx, cmd); err != nil {
		s.log.LogSideEffectFailure(ctx, "command publish", err)
	}
}

func (s *Service) refreshSnapshot(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Publish(ctx); err != nil {
		s.log.LogSideEffectFailure(ctx, "snapshot publish", err)
	}
}

func (s *Service) mirror(ctx context.Context, spot spots.Spot) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, spot); err != nil {
		s.log.LogSideEffectFailure(ctx, "spot mirror", err)
	}
}

func (s *Service) mirrorByID(ctx context.Context, spotID string) {
	if s.store == nil {
		return
	}
	spot, err := s.registry.Get(spotID)
	if err != nil {
		return
	}
	s.mirror(ctx, spot)
}
