package spots

import "errors"

var (
	// ErrNotFound is returned for spot ids the registry has never seen.
	ErrNotFound = errors.New("spot not found")

	// ErrConflict is returned when a transition loses a race: the spot's
	// current status was not in the caller's expected set.
	ErrConflict = errors.New("spot state conflict")

	// ErrInvalidTransition is returned for transitions that would break the
	// plate/status invariant (a non-free spot must carry a plate).
	ErrInvalidTransition = errors.New("invalid transition")
)
