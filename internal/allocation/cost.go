package allocation

import (
	"math"

	"parkwise/internal/shared/config"
	"parkwise/internal/spots"
)

// Sentinel score for spots whose location is unknown or garbled. High enough
// to lose every comparison against a real spot, but still comparable so a
// degraded lot can keep allocating.
const (
	SentinelCost   = 9999
	SentinelTravel = 10
)

// Coords is a flat grid position used for the gate and elevator anchors.
type Coords struct {
	Row int
	Col int
}

// Weights are the cost model multipliers, in seconds per grid step.
type Weights struct {
	Drive        float64
	Walk         float64
	FloorPenalty float64
	ParkTime     float64
}

// WeightsFromConfig builds the cost model inputs from the parking section of
// the service configuration.
func WeightsFromConfig(cfg config.ParkingConfig) (Weights, Coords, Coords) {
	w := Weights{
		Drive:        cfg.DriveWeight,
		Walk:         cfg.WalkWeight,
		FloorPenalty: cfg.FloorPenalty,
		ParkTime:     cfg.ParkTime,
	}
	gate := Coords{Row: cfg.GateRow, Col: cfg.GateCol}
	elevator := Coords{Row: cfg.ElevatorRow, Col: cfg.ElevatorCol}
	return w, gate, elevator
}

// Score ranks a candidate location. The first return value is the total cost
// used for selection; the second is the drive-plus-park estimate reported to
// consumers as the vehicle's travel time (it later sizes the drive simulation
// and, optionally, the eviction timer).
//
// Drive distance is Manhattan from the gate; each floor below (or above)
// ground adds a flat penalty, so floors are symmetric. Walk distance is
// Manhattan from the elevator.
func Score(loc spots.Location, gate, elevator Coords, w Weights) (total, travel float64) {
	driveDist := float64(abs(loc.Row-gate.Row) + abs(loc.Col-gate.Col))
	driveCost := driveDist*w.Drive + math.Abs(float64(loc.Floor))*w.FloorPenalty

	walkDist := float64(abs(loc.Row-elevator.Row) + abs(loc.Col-elevator.Col))
	walkCost := walkDist * w.Walk

	return driveCost + walkCost + w.ParkTime, driveCost + w.ParkTime
}

// ScoreSpot scores a registry spot, substituting the sentinel for spots whose
// location cannot be trusted. Bad data skips selection, it never aborts it.
func ScoreSpot(s spots.Spot, gate, elevator Coords, w Weights) (total, travel float64) {
	if !s.LocationKnown || !s.Location.IsValid() {
		return SentinelCost, SentinelTravel
	}
	return Score(s.Location, gate, elevator, w)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
