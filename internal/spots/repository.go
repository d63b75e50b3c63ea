package spots

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository mirrors committed registry state into Postgres. The registry is
// the source of truth; the mirror exists so the facility survives a restart
// and so reporting tools can query SQL instead of the live engine.
type Repository interface {
	Save(ctx context.Context, spot Spot) error
	SaveAll(ctx context.Context, spots []Spot) error
	GetByID(ctx context.Context, id string) (*Spot, error)
	LoadAll(ctx context.Context) ([]Spot, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, spot Spot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&spot).Error
}

func (r *repository) SaveAll(ctx context.Context, spots []Spot) error {
	if len(spots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&spots).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Spot, error) {
	var spot Spot
	err := r.db.WithContext(ctx).First(&spot, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &spot, nil
}

func (r *repository) LoadAll(ctx context.Context) ([]Spot, error) {
	var all []Spot
	err := r.db.WithContext(ctx).Order("id ASC").Find(&all).Error
	return all, err
}
