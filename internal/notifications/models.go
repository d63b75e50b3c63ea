package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Command actions understood by the lot hardware (and the simulator).
const (
	ActionReserve = "reserve"
	ActionFree    = "free"
	ActionOccupy  = "occupy"
)

// SpotCommand is the wire contract on the command topic. Field names match
// the hardware protocol; TravelTime is seconds and doubles as the simulated
// drive delay on the consumer side.
type SpotCommand struct {
	Action       string  `json:"command"`
	SpotID       string  `json:"spot_id"`
	LicensePlate string  `json:"license_plate,omitempty"`
	TravelTime   float64 `json:"travel_time,omitempty"`
}

// ToJSON serializes the command for the producer.
func (c SpotCommand) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// Assignment is a driver notification queued on the notification topic. The
// email worker drains these and sends the welcome mail.
type Assignment struct {
	ID           uuid.UUID `json:"id"`
	LicensePlate string    `json:"license_plate"`
	DriverName   string    `json:"driver_name"`
	Email        string    `json:"email"`
	SpotID       string    `json:"spot_id"`
	Floor        int       `json:"floor"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAssignment builds a notification for a freshly reserved spot.
func NewAssignment(plate, name, email, spotID string, floor int) *Assignment {
	return &Assignment{
		ID:           uuid.New(),
		LicensePlate: plate,
		DriverName:   name,
		Email:        email,
		SpotID:       spotID,
		Floor:        floor,
		CreatedAt:    time.Now().UTC(),
	}
}

// ToJSON serializes the assignment for the producer.
func (a *Assignment) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

// FromJSON deserializes an assignment on the consumer side.
func FromJSON(data []byte) (*Assignment, error) {
	var a Assignment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
