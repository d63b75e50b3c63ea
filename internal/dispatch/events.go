package dispatch

import (
	"errors"
	"strings"

	"parkwise/internal/spots"
)

// ErrMalformedEvent rejects sensor payloads the engine cannot act on. The
// engine fails closed: an event that does not classify is dropped with an
// error rather than guessed at.
var ErrMalformedEvent = errors.New("malformed lot event")

// Kind is the routed meaning of an inbound event.
type Kind int

const (
	KindUnknown Kind = iota
	KindReset
	KindGateArrival
	KindStatusReport
)

// Statuses carried on the wire by sensors and the ops surface.
const (
	wireStatusFree     = "free"
	wireStatusOccupied = "occupied"
	wireStatusReset    = "reset"
)

// Event is one inbound message from a gate camera, a spot sensor, or the ops
// surface. GateID is only set by gate cameras; older camera firmware instead
// reports a spot_id with a GATE- prefix and status occupied.
type Event struct {
	SpotID       string          `json:"spot_id"`
	GateID       string          `json:"gate_id"`
	Status       string          `json:"status"`
	LicensePlate string          `json:"license_plate"`
	Location     *spots.Location `json:"location,omitempty"`
}

// Classify decides how the engine routes this event, validating the fields
// the chosen route requires.
func (e Event) Classify() (Kind, error) {
	status := strings.ToLower(strings.TrimSpace(e.Status))

	switch {
	case status == wireStatusReset:
		if e.SpotID == "" {
			return KindUnknown, ErrMalformedEvent
		}
		return KindReset, nil

	case e.isGateArrival(status):
		if e.LicensePlate == "" {
			return KindUnknown, ErrMalformedEvent
		}
		return KindGateArrival, nil

	case status == wireStatusFree || status == wireStatusOccupied:
		if e.SpotID == "" {
			return KindUnknown, ErrMalformedEvent
		}
		if status == wireStatusOccupied && e.LicensePlate == "" {
			return KindUnknown, ErrMalformedEvent
		}
		return KindStatusReport, nil
	}

	return KindUnknown, ErrMalformedEvent
}

func (e Event) isGateArrival(status string) bool {
	if e.GateID != "" {
		return true
	}
	return strings.HasPrefix(e.SpotID, "GATE") && status == wireStatusOccupied
}

// Gate returns the identifier of the arrival gate for logging.
func (e Event) Gate() string {
	if e.GateID != "" {
		return e.GateID
	}
	return e.SpotID
}

// NormalizedStatus is the lowercase wire status.
func (e Event) NormalizedStatus() string {
	return strings.ToLower(strings.TrimSpace(e.Status))
}
