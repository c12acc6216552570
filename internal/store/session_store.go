package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vibesrm/internal/domain"
)

type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{db: s.DB} }

// Create inserts a session. A second active session for the same user
// violates ux_sessions_active_user and yields ErrDuplicate.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *SessionStore) ActiveForUser(ctx context.Context, userID domain.UserID) (*domain.Session, error) {
	var session domain.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

// ActiveOwnedForUpdate loads an open session owned by userID and locks it for
// the rest of the transaction.
func (s *SessionStore) ActiveOwnedForUpdate(ctx context.Context, id domain.SessionID, userID domain.UserID) (*domain.Session, error) {
	var session domain.Session
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

func (s *SessionStore) GetOwned(ctx context.Context, id domain.SessionID, userID domain.UserID) (*domain.Session, error) {
	var session domain.Session
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&session).Error; err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

func (s *SessionStore) ActiveGhost(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	var session domain.Session
	err := s.db.WithContext(ctx).
		Where("id = ? AND mode = ? AND is_active = ?", id, domain.ModeGhost, true).
		First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

type CloseParams struct {
	CheckedOutAt   time.Time
	ActualDuration int
	CoinsEarned    int
	Feedback       domain.Feedback
}

// Close flips an open session to closed. It only matches rows that are still
// active, so a concurrent or repeated close gets ErrRecordNotFound.
func (s *SessionStore) Close(ctx context.Context, id domain.SessionID, p CloseParams) error {
	res := s.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{
			"is_active":         false,
			"checked_out_at":    p.CheckedOutAt,
			"actual_duration":   p.ActualDuration,
			"coins_earned":      p.CoinsEarned,
			"noise_level":       p.Feedback.NoiseLevel,
			"temperature":       p.Feedback.Temperature,
			"crowdedness":       p.Feedback.Crowdedness,
			"outlets_available": p.Feedback.OutletsAvailable,
			"rating":            p.Feedback.Rating,
			"feedback_text":     p.Feedback.FeedbackText,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListActiveGhosts returns open ghost sessions, oldest first.
func (s *SessionStore) ListActiveGhosts(ctx context.Context, locationID *domain.LocationID) ([]domain.Session, error) {
	q := s.db.WithContext(ctx).
		Where("mode = ? AND is_active = ?", domain.ModeGhost, true).
		Order("checked_in_at ASC, id ASC")
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}
	var sessions []domain.Session
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionStore) CountActive(ctx context.Context, locationID domain.LocationID, mode *domain.Mode) (int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Session{}).
		Where("location_id = ? AND is_active = ?", locationID, true)
	if mode != nil {
		q = q.Where("mode = ?", *mode)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// CountGhostsAlongside counts other ghost sessions whose interval overlaps
// [start, end].
func (s *SessionStore) CountGhostsAlongside(ctx context.Context, id domain.SessionID, start, end time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id <> ? AND mode = ?", id, domain.ModeGhost).
		Where("checked_in_at <= ?", end).
		Where("(checked_out_at >= ? OR is_active = ?)", start, true).
		Count(&n).Error
	return n, err
}

// History returns the newest sessions of a user first.
func (s *SessionStore) History(ctx context.Context, userID domain.UserID, limit int) ([]domain.Session, error) {
	var sessions []domain.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checked_in_at DESC, id DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
