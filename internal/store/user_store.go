package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vibesrm/internal/domain"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

// Ensure creates an empty reward row for id if none exists yet.
func (u *UserStore) Ensure(ctx context.Context, id domain.UserID) error {
	return u.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.User{ID: id}).Error
}

func (u *UserStore) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *UserStore) GetForUpdate(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	err := u.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *UserStore) AddCoins(ctx context.Context, id domain.UserID, coins int) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("total_coins", gorm.Expr("total_coins + ?", coins)).Error
}

type RewardUpdate struct {
	BonusCoins    int
	Hours         float64
	CurrentStreak int
	LongestStreak int
	LastDate      time.Time
}

// ApplyReward adds coins and hours atomically and overwrites the streak.
func (u *UserStore) ApplyReward(ctx context.Context, id domain.UserID, r RewardUpdate) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"total_coins":        gorm.Expr("total_coins + ?", r.BonusCoins),
			"total_hours":        gorm.Expr("total_hours + ?", r.Hours),
			"current_streak":     r.CurrentStreak,
			"longest_streak":     r.LongestStreak,
			"last_check_in_date": r.LastDate,
		}).Error
}
