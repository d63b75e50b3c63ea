package allocation

import (
	"testing"

	"parkwise/internal/spots"
)

var (
	testWeights = Weights{Drive: 1.0, Walk: 4.5, FloorPenalty: 6.0, ParkTime: 5.0}
	testGate    = Coords{Row: 0, Col: 0}
	testElev    = Coords{Row: 2, Col: 4}
)

func TestScoreReferenceSpots(t *testing.T) {
	// Spot A drives free (at the gate) but walks far; spot B sits under the
	// elevator. B must come out much cheaper overall.
	a := spots.Location{Floor: -1, Row: 0, Col: 0}
	b := spots.Location{Floor: -1, Row: 2, Col: 4}

	totalA, travelA := Score(a, testGate, testElev, testWeights)
	if totalA != 38.0 {
		t.Errorf("total for A: expected 38.0, got %v", totalA)
	}
	if travelA != 11.0 { // drive 0 + floor 6 + park 5
		t.Errorf("travel for A: expected 11.0, got %v", travelA)
	}

	totalB, travelB := Score(b, testGate, testElev, testWeights)
	if totalB != 17.0 {
		t.Errorf("total for B: expected 17.0, got %v", totalB)
	}
	if travelB != 17.0 { // drive 6 + floor 6 + park 5, walk 0
		t.Errorf("travel for B: expected 17.0, got %v", travelB)
	}

	if totalB >= totalA {
		t.Errorf("expected B (%v) cheaper than A (%v)", totalB, totalA)
	}
}

func TestScoreFloorSymmetry(t *testing.T) {
	above := spots.Location{Floor: 2, Row: 1, Col: 1}
	below := spots.Location{Floor: -2, Row: 1, Col: 1}

	totalUp, _ := Score(above, testGate, testElev, testWeights)
	totalDown, _ := Score(below, testGate, testElev, testWeights)
	if totalUp != totalDown {
		t.Errorf("floor penalty not symmetric: %v vs %v", totalUp, totalDown)
	}
}

func TestScoreSpotSentinel(t *testing.T) {
	unknown := spots.Spot{ID: "X", LocationKnown: false}
	total, travel := ScoreSpot(unknown, testGate, testElev, testWeights)
	if total != SentinelCost || travel != SentinelTravel {
		t.Errorf("expected sentinel (%d, %d), got (%v, %v)", SentinelCost, SentinelTravel, total, travel)
	}

	garbled := spots.Spot{
		ID:            "Y",
		Location:      spots.Location{Floor: -1, Row: -3, Col: 0},
		LocationKnown: true,
	}
	total, _ = ScoreSpot(garbled, testGate, testElev, testWeights)
	if total != SentinelCost {
		t.Errorf("expected sentinel for garbled location, got %v", total)
	}

	good := spots.Spot{
		ID:            "Z",
		Location:      spots.Location{Floor: -1, Row: 2, Col: 4},
		LocationKnown: true,
	}
	total, _ = ScoreSpot(good, testGate, testElev, testWeights)
	if total == SentinelCost {
		t.Error("valid location scored as sentinel")
	}
}
