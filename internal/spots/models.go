package spots

import "time"

// Status is the occupancy state of a spot.
type Status string

const (
	StatusFree     Status = "free"
	StatusReserved Status = "reserved"
	StatusOccupied Status = "occupied"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusFree, StatusReserved, StatusOccupied:
		return true
	}
	return false
}

// Location is a fixed grid position. Floors below ground are negative; the
// cost model only ever uses the absolute floor value.
type Location struct {
	Floor int `json:"floor"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

// IsValid reports whether the location describes a real grid cell. Row and
// column are non-negative by construction of the facility; a negative value
// means the reporting device sent garbage.
func (l Location) IsValid() bool {
	return l.Row >= 0 && l.Col >= 0
}

// Spot is a single allocatable parking location. The registry owns the live
// copy; the same struct doubles as the persistence mirror row.
type Spot struct {
	ID           string   `gorm:"primaryKey;size:32" json:"spot_id"`
	Location     Location `gorm:"embedded" json:"location"`
	Status       Status   `gorm:"size:16;default:free" json:"status"`
	LicensePlate string   `gorm:"size:32" json:"license_plate,omitempty"`
	DriverName   string   `gorm:"size:128" json:"driver_name,omitempty"`

	// LocationKnown is false for spots materialized from a reset event that
	// carried no location. The allocator scores such spots with a sentinel.
	LocationKnown bool `json:"location_known"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the gorm table name.
func (Spot) TableName() string {
	return "spots"
}
