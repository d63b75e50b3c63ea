package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds constraints AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	// Keep the durable mirror from recording a status the engine never emits
	err := db.Exec(`
		ALTER TABLE spots
		ADD CONSTRAINT IF NOT EXISTS chk_spots_status
		CHECK (status IN ('free', 'reserved', 'occupied'));
	`).Error
	if err != nil {
		return err
	}

	// Stale-reservation override looks spots up by plate
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_spots_license_plate
		ON spots (license_plate);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
