package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"vibesrm/internal/domain"
)

type NoiseStore struct{ db *gorm.DB }

func (s *Store) Noise() *NoiseStore { return &NoiseStore{db: s.DB} }

func (n *NoiseStore) Create(ctx context.Context, report *domain.NoiseReport) error {
	return n.db.WithContext(ctx).Create(report).Error
}

type NoiseStats struct {
	Average float64
	Samples int64
}

// StatsSince aggregates reports for a location created at or after since.
func (n *NoiseStore) StatsSince(ctx context.Context, locationID domain.LocationID, since time.Time) (NoiseStats, error) {
	var out NoiseStats
	err := n.db.WithContext(ctx).Model(&domain.NoiseReport{}).
		Select("COALESCE(AVG(level), 0) AS average, COUNT(*) AS samples").
		Where("location_id = ? AND created_at >= ?", locationID, since).
		Scan(&out).Error
	return out, err
}
