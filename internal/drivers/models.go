package drivers

import "time"

// Driver is a directory record mapping a registered license plate to a
// display name and an optional notification address.
type Driver struct {
	LicensePlate string    `gorm:"primaryKey;size:32" json:"license_plate" binding:"required"`
	Name         string    `gorm:"size:128" json:"name" binding:"required"`
	Email        string    `gorm:"size:256" json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides the gorm table name.
func (Driver) TableName() string {
	return "drivers"
}

// GuestName is the display name used for plates the directory does not know.
// It is advisory only and never drives allocation logic.
const GuestName = "Guest"

// Profile is the lookup result consumed by the event dispatcher.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
