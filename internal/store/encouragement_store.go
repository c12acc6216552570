package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"vibesrm/internal/domain"
)

type EncouragementStore struct{ db *gorm.DB }

func (s *Store) Encouragements() *EncouragementStore { return &EncouragementStore{db: s.DB} }

func (e *EncouragementStore) Create(ctx context.Context, enc *domain.Encouragement) error {
	return e.db.WithContext(ctx).Create(enc).Error
}

// LatestSince returns the newest encouragement from sender to target created
// after since, or nil when there is none.
func (e *EncouragementStore) LatestSince(ctx context.Context, sender domain.UserID, target domain.SessionID, since time.Time) (*domain.Encouragement, error) {
	var enc domain.Encouragement
	err := e.db.WithContext(ctx).
		Where("sender_id = ? AND target_session_id = ? AND created_at > ?", sender, target, since).
		Order("created_at DESC").
		First(&enc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &enc, nil
}

type EmojiCount struct {
	Emoji string
	Count int64
}

func (e *EncouragementStore) CountByEmoji(ctx context.Context, target domain.SessionID) ([]EmojiCount, error) {
	var out []EmojiCount
	err := e.db.WithContext(ctx).Model(&domain.Encouragement{}).
		Select("emoji, COUNT(*) AS count").
		Where("target_session_id = ?", target).
		Group("emoji").
		Order("emoji").
		Scan(&out).Error
	return out, err
}

func (e *EncouragementStore) CountFor(ctx context.Context, target domain.SessionID) (int64, error) {
	var n int64
	err := e.db.WithContext(ctx).Model(&domain.Encouragement{}).
		Where("target_session_id = ?", target).
		Count(&n).Error
	return n, err
}
