package drivers

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned for plates the directory does not know. Callers
// treat it as a signal to default, never as a failure.
var ErrNotFound = errors.New("driver not found")

type Repository interface {
	GetByPlate(ctx context.Context, plate string) (*Driver, error)
	List(ctx context.Context) ([]Driver, error)
	Upsert(ctx context.Context, driver *Driver) error
	Delete(ctx context.Context, plate string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByPlate(ctx context.Context, plate string) (*Driver, error) {
	var driver Driver
	err := r.db.WithContext(ctx).First(&driver, "license_plate = ?", plate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

func (r *repository) List(ctx context.Context) ([]Driver, error) {
	var all []Driver
	err := r.db.WithContext(ctx).Order("license_plate ASC").Find(&all).Error
	return all, err
}

func (r *repository) Upsert(ctx context.Context, driver *Driver) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "license_plate"}},
			UpdateAll: true,
		}).
		Create(driver).Error
}

func (r *repository) Delete(ctx context.Context, plate string) error {
	return r.db.WithContext(ctx).Delete(&Driver{}, "license_plate = ?", plate).Error
}
