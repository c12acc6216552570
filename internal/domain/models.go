package domain

import (
	"time"

	"github.com/google/uuid"
)

type Location struct {
	ID            LocationID `gorm:"type:uuid;primaryKey"`
	Name          string     `gorm:"type:text;not null"`
	Category      Category   `gorm:"type:text;not null;index"`
	Latitude      float64    `gorm:"not null"`
	Longitude     float64    `gorm:"not null"`
	Capacity      int        `gorm:"not null"`
	Occupancy     int        `gorm:"not null"`
	HasWifi       bool       `gorm:"not null"`
	HasOutlets    bool       `gorm:"not null"`
	HasFood       bool       `gorm:"not null"`
	HasWhiteboard bool       `gorm:"not null"`
	Description   string     `gorm:"type:text"`
	CreatedAt     time.Time  `gorm:"not null;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"not null;autoUpdateTime"`
}

// Session is one check-in. At most one row per user may have IsActive set;
// the partial unique index enforces it at the storage layer.
type Session struct {
	ID              SessionID  `gorm:"type:uuid;primaryKey"`
	UserID          UserID     `gorm:"type:uuid;not null;index;uniqueIndex:ux_sessions_active_user,where:is_active = true"`
	LocationID      LocationID `gorm:"type:uuid;not null;index"`
	Subject         *string    `gorm:"type:text"`
	Mode            Mode       `gorm:"type:text;not null"`
	GhostName       *string    `gorm:"type:text"`
	PlannedDuration int        `gorm:"not null"`
	ActualDuration  *int
	FocusScore      *int
	CoinsEarned     int `gorm:"not null"`
	Feedback
	CheckedInAt  time.Time `gorm:"not null;index"`
	CheckedOutAt *time.Time
	IsActive     bool `gorm:"not null;index"`
}

// Feedback is supplied at check-out. Nil means "not reported".
type Feedback struct {
	NoiseLevel       *int
	Temperature      *int
	Crowdedness      *int
	OutletsAvailable *bool
	Rating           *int
	FeedbackText     *string `gorm:"type:text"`
}

type NoiseReport struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	LocationID LocationID  `gorm:"type:uuid;not null;index:idx_noise_location_created,priority:1"`
	UserID     *UserID     `gorm:"type:uuid"`
	Level      int         `gorm:"not null"`
	Source     NoiseSource `gorm:"type:text;not null"`
	CreatedAt  time.Time   `gorm:"not null;index:idx_noise_location_created,priority:2"`
}

// User holds the reward totals. Identity and credentials live elsewhere.
type User struct {
	ID              UserID  `gorm:"type:uuid;primaryKey"`
	TotalHours      float64 `gorm:"not null"`
	TotalCoins      int     `gorm:"not null"`
	CurrentStreak   int     `gorm:"not null"`
	LongestStreak   int     `gorm:"not null"`
	LastCheckInDate *time.Time
	CreatedAt       time.Time `gorm:"not null;autoCreateTime"`
}

type Encouragement struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	SenderID        UserID    `gorm:"type:uuid;not null;index:idx_encouragement_pair,priority:1"`
	TargetSessionID SessionID `gorm:"type:uuid;not null;index:idx_encouragement_pair,priority:2;index"`
	Emoji           string    `gorm:"type:text;not null"`
	CreatedAt       time.Time `gorm:"not null;index:idx_encouragement_pair,priority:3"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&Location{}, &Session{}, &NoiseReport{}, &User{}, &Encouragement{}}
}
