package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vibesrm/internal/domain"
)

type LocationStore struct{ db *gorm.DB }

func (s *Store) Locations() *LocationStore { return &LocationStore{db: s.DB} }

func (l *LocationStore) Create(ctx context.Context, loc *domain.Location) error {
	return l.db.WithContext(ctx).Create(loc).Error
}

// Upsert inserts or refreshes the static attributes of a location. Occupancy
// is only written on insert. Lowering capacity below the live occupancy
// leaves the row untouched and returns ErrNoCapacity.
func (l *LocationStore) Upsert(ctx context.Context, loc domain.Location) error {
	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "category", "latitude", "longitude", "capacity",
				"has_wifi", "has_outlets", "has_food", "has_whiteboard",
				"description", "updated_at",
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "locations.occupancy <= excluded.capacity"},
			}},
		}).
		Create(&loc)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoCapacity
	}
	return nil
}

func (l *LocationStore) Get(ctx context.Context, id domain.LocationID) (*domain.Location, error) {
	var loc domain.Location
	if err := l.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &loc, nil
}

// GetMany returns the locations found among ids, keyed by id.
func (l *LocationStore) GetMany(ctx context.Context, ids []domain.LocationID) (map[domain.LocationID]domain.Location, error) {
	out := make(map[domain.LocationID]domain.Location, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var locs []domain.Location
	if err := l.db.WithContext(ctx).Where("id IN ?", ids).Find(&locs).Error; err != nil {
		return nil, err
	}
	for _, loc := range locs {
		out[loc.ID] = loc
	}
	return out, nil
}

// List returns locations ordered by name, optionally narrowed to category.
func (l *LocationStore) List(ctx context.Context, category *domain.Category) ([]domain.Location, error) {
	q := l.db.WithContext(ctx).Order("name ASC, id ASC")
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	var locs []domain.Location
	if err := q.Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

// IncrementOccupancy adds one seat unless the location is full.
func (l *LocationStore) IncrementOccupancy(ctx context.Context, id domain.LocationID) error {
	res := l.db.WithContext(ctx).Model(&domain.Location{}).
		Where("id = ? AND occupancy < capacity", id).
		UpdateColumn("occupancy", gorm.Expr("occupancy + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoCapacity
	}
	return nil
}

// DecrementOccupancy releases one seat, never going below zero.
func (l *LocationStore) DecrementOccupancy(ctx context.Context, id domain.LocationID) error {
	return l.db.WithContext(ctx).Model(&domain.Location{}).
		Where("id = ? AND occupancy > 0", id).
		UpdateColumn("occupancy", gorm.Expr("occupancy - ?", 1)).Error
}
