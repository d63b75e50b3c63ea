package database

import (
	"parkwise/internal/drivers"
	"parkwise/internal/spots"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&spots.Spot{},
		&drivers.Driver{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
