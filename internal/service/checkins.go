package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"vibesrm/internal/cache"
	"vibesrm/internal/domain"
	"vibesrm/internal/events"
	"vibesrm/internal/geo"
	"vibesrm/internal/ghost"
	"vibesrm/internal/observability/metrics"
	"vibesrm/internal/reward"
	"vibesrm/internal/store"
	"vibesrm/pkg/dto"
)

const (
	DefaultPlannedMinutes = 120
	MinPlannedMinutes     = 30
	MaxPlannedMinutes     = 480
	MaxSubjectLength      = 100
	MaxFeedbackLength     = 500

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

func (s *Service) CheckIn(ctx context.Context, userID domain.UserID, req dto.CheckInRequest) (resp dto.CheckInResponse, err error) {
	defer func() { metrics.CheckInsTotal.WithLabelValues(Outcome(err)).Inc() }()

	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		return dto.CheckInResponse{}, fmt.Errorf("%w: invalid locationId", domain.ErrInvalidInput)
	}
	if req.Latitude == nil || req.Longitude == nil {
		return dto.CheckInResponse{}, fmt.Errorf("%w: latitude and longitude are required", domain.ErrInvalidInput)
	}
	lat, lon := *req.Latitude, *req.Longitude
	if !geo.ValidLatitude(lat) || !geo.ValidLongitude(lon) {
		return dto.CheckInResponse{}, fmt.Errorf("%w: coordinates out of bounds", domain.ErrInvalidInput)
	}

	mode := domain.ModeSolo
	if req.Mode != "" {
		mode = domain.Mode(req.Mode)
	}
	if !mode.Valid() {
		return dto.CheckInResponse{}, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, req.Mode)
	}

	planned := DefaultPlannedMinutes
	if req.PlannedDuration != nil {
		planned = *req.PlannedDuration
	}
	if planned < MinPlannedMinutes || planned > MaxPlannedMinutes {
		return dto.CheckInResponse{}, fmt.Errorf("%w: plannedDuration must be between %d and %d", domain.ErrInvalidInput, MinPlannedMinutes, MaxPlannedMinutes)
	}

	var subject *string
	if req.Subject != nil {
		trimmed := strings.TrimSpace(*req.Subject)
		if utf8.RuneCountInString(trimmed) > MaxSubjectLength {
			return dto.CheckInResponse{}, fmt.Errorf("%w: subject longer than %d characters", domain.ErrInvalidInput, MaxSubjectLength)
		}
		if trimmed != "" {
			subject = &trimmed
		}
	}

	now := s.clock()
	session := domain.Session{
		ID:              uuid.New(),
		UserID:          userID,
		LocationID:      locationID,
		Subject:         subject,
		Mode:            mode,
		PlannedDuration: planned,
		CoinsEarned:     s.opts.BaseCoins,
		CheckedInAt:     now,
		IsActive:        true,
	}
	if mode == domain.ModeGhost {
		name := ghost.Name(s.names)
		session.GhostName = &name
	}

	var loc *domain.Location
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	err = s.store.WithTx(sctx, func(tx *store.Store) error {
		l, err := tx.Locations().Get(sctx, locationID)
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Errorf("%w: location %s", domain.ErrNotFound, locationID)
		}
		if err != nil {
			return err
		}

		distance := geo.DistanceMeters(lat, lon, l.Latitude, l.Longitude)
		if distance > s.opts.MaxDistanceMeters {
			return &domain.OutOfRangeError{DistanceMeters: distance, MaxMeters: s.opts.MaxDistanceMeters}
		}

		if _, err := tx.Sessions().ActiveForUser(sctx, userID); err == nil {
			return fmt.Errorf("%w: already checked in elsewhere", domain.ErrConflict)
		} else if !errors.Is(err, store.ErrRecordNotFound) {
			return err
		}
		if err := tx.Sessions().Create(sctx, &session); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("%w: already checked in elsewhere", domain.ErrConflict)
			}
			return err
		}

		if err := tx.Locations().IncrementOccupancy(sctx, locationID); err != nil {
			if errors.Is(err, store.ErrNoCapacity) {
				return fmt.Errorf("%w: location is at capacity", domain.ErrConflict)
			}
			return err
		}
		if err := tx.Users().Ensure(sctx, userID); err != nil {
			return err
		}
		if err := tx.Users().AddCoins(sctx, userID, s.opts.BaseCoins); err != nil {
			return err
		}
		loc, err = tx.Locations().Get(sctx, locationID)
		return err
	})
	if err != nil {
		return dto.CheckInResponse{}, unavailable(err)
	}

	s.afterOccupancyChange(ctx, loc, &session, "joined")

	return dto.CheckInResponse{
		SessionID:   session.ID.String(),
		CheckedInAt: session.CheckedInAt,
		GhostName:   session.GhostName,
		CoinsEarned: session.CoinsEarned,
	}, nil
}

func (s *Service) CheckOut(ctx context.Context, userID domain.UserID, sessionID string, req dto.CheckOutRequest) (resp dto.CheckOutResponse, err error) {
	defer func() { metrics.CheckOutsTotal.WithLabelValues(Outcome(err)).Inc() }()

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return dto.CheckOutResponse{}, fmt.Errorf("%w: invalid sessionId", domain.ErrInvalidInput)
	}
	feedback, err := feedbackFrom(req)
	if err != nil {
		return dto.CheckOutResponse{}, err
	}

	now := s.clock()
	var (
		session *domain.Session
		loc     *domain.Location
		elapsed int
		bonus   int
		total   int
	)
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	err = s.store.WithTx(sctx, func(tx *store.Store) error {
		sess, err := tx.Sessions().ActiveOwnedForUpdate(sctx, id, userID)
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Errorf("%w: no active session %s", domain.ErrNotFound, id)
		}
		if err != nil {
			return err
		}

		elapsed = reward.ElapsedMinutes(sess.CheckedInAt, now)
		bonus = reward.CheckOutBonus(elapsed, feedback.NoiseLevel != nil, feedback.Crowdedness != nil)
		total = sess.CoinsEarned + bonus

		err = tx.Sessions().Close(sctx, sess.ID, store.CloseParams{
			CheckedOutAt:   now,
			ActualDuration: elapsed,
			CoinsEarned:    total,
			Feedback:       feedback,
		})
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Errorf("%w: no active session %s", domain.ErrNotFound, id)
		}
		if err != nil {
			return err
		}

		if err := tx.Users().Ensure(sctx, userID); err != nil {
			return err
		}
		user, err := tx.Users().GetForUpdate(sctx, userID)
		if err != nil {
			return err
		}
		next := reward.Accumulate(totalsOf(user), bonus, elapsed, now)
		err = tx.Users().ApplyReward(sctx, userID, store.RewardUpdate{
			BonusCoins:    bonus,
			Hours:         float64(elapsed) / 60,
			CurrentStreak: next.CurrentStreak,
			LongestStreak: next.LongestStreak,
			LastDate:      *next.LastDate,
		})
		if err != nil {
			return err
		}

		if err := tx.Locations().DecrementOccupancy(sctx, sess.LocationID); err != nil {
			return err
		}
		if feedback.NoiseLevel != nil {
			report := domain.NoiseReport{
				ID:         uuid.New(),
				LocationID: sess.LocationID,
				UserID:     &userID,
				Level:      *feedback.NoiseLevel,
				Source:     domain.NoiseSourceManual,
				CreatedAt:  now,
			}
			if err := tx.Noise().Create(sctx, &report); err != nil {
				return err
			}
		}

		l, err := tx.Locations().Get(sctx, sess.LocationID)
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return err
		}
		session, loc = sess, l
		return nil
	})
	if err != nil {
		return dto.CheckOutResponse{}, unavailable(err)
	}

	s.afterOccupancyChange(ctx, loc, session, "left")

	return dto.CheckOutResponse{
		SessionID:       id.String(),
		DurationMinutes: elapsed,
		Hours:           reward.RoundHours(elapsed),
		TotalCoins:      total,
		BonusCoins:      bonus,
	}, nil
}

func (s *Service) ActiveSession(ctx context.Context, userID domain.UserID) (dto.ActiveSessionResponse, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	sess, err := s.store.Sessions().ActiveForUser(sctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return dto.ActiveSessionResponse{Active: false}, nil
	}
	if err != nil {
		return dto.ActiveSessionResponse{}, unavailable(err)
	}

	view := dto.ActiveSession{
		SessionID:       sess.ID.String(),
		LocationID:      sess.LocationID.String(),
		Subject:         sess.Subject,
		Mode:            string(sess.Mode),
		GhostName:       sess.GhostName,
		PlannedDuration: sess.PlannedDuration,
		CoinsEarned:     sess.CoinsEarned,
		CheckedInAt:     sess.CheckedInAt,
		ElapsedMinutes:  reward.ElapsedMinutes(sess.CheckedInAt, s.clock()),
	}
	loc, err := s.store.Locations().Get(sctx, sess.LocationID)
	switch {
	case err == nil:
		view.LocationName = loc.Name
		view.LocationCategory = string(loc.Category)
	case !errors.Is(err, store.ErrRecordNotFound):
		return dto.ActiveSessionResponse{}, unavailable(err)
	}
	return dto.ActiveSessionResponse{Active: true, Session: &view}, nil
}

// History lists the caller's sessions, newest first. A non-positive limit
// selects the default.
func (s *Service) History(ctx context.Context, userID domain.UserID, limit int) (dto.HistoryResponse, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	sessions, err := s.store.Sessions().History(sctx, userID, limit)
	if err != nil {
		return dto.HistoryResponse{}, unavailable(err)
	}
	locs, err := s.store.Locations().GetMany(sctx, locationIDs(sessions))
	if err != nil {
		return dto.HistoryResponse{}, unavailable(err)
	}

	out := dto.HistoryResponse{Sessions: make([]dto.SessionSummary, 0, len(sessions))}
	for _, sess := range sessions {
		out.Sessions = append(out.Sessions, dto.SessionSummary{
			SessionID:       sess.ID.String(),
			LocationID:      sess.LocationID.String(),
			LocationName:    locs[sess.LocationID].Name,
			Subject:         sess.Subject,
			Mode:            string(sess.Mode),
			Active:          sess.IsActive,
			CheckedInAt:     sess.CheckedInAt,
			CheckedOutAt:    sess.CheckedOutAt,
			DurationMinutes: sess.ActualDuration,
			CoinsEarned:     sess.CoinsEarned,
		})
	}
	return out, nil
}

// Stats returns the caller's reward totals; users who never checked in get
// zeroes.
func (s *Service) Stats(ctx context.Context, userID domain.UserID) (dto.UserStatsResponse, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	out := dto.UserStatsResponse{UserID: userID.String()}
	user, err := s.store.Users().Get(sctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return dto.UserStatsResponse{}, unavailable(err)
	}
	out.TotalCoins = user.TotalCoins
	out.TotalHours = user.TotalHours
	out.CurrentStreak = user.CurrentStreak
	out.LongestStreak = user.LongestStreak
	out.LastCheckInDate = user.LastCheckInDate
	return out, nil
}

func (s *Service) afterOccupancyChange(ctx context.Context, loc *domain.Location, session *domain.Session, action string) {
	at := s.clock()
	s.cache.Delete(context.WithoutCancel(ctx), cache.LocationDetailsKey(session.LocationID))
	if loc != nil {
		s.publish(ctx, events.TopicOccupancyChanged, events.OccupancyChanged{
			LocationID: loc.ID.String(),
			Occupancy:  loc.Occupancy,
			Capacity:   loc.Capacity,
			At:         at,
		})
	}
	if session.Mode == domain.ModeGhost && session.GhostName != nil {
		s.publish(ctx, events.TopicGhostsChanged, events.GhostActivityChanged{
			LocationID: session.LocationID.String(),
			SessionID:  session.ID.String(),
			GhostName:  *session.GhostName,
			Action:     action,
			At:         at,
		})
	}
}

func feedbackFrom(req dto.CheckOutRequest) (domain.Feedback, error) {
	if err := inRange("noiseLevel", req.NoiseLevel, 0, 120); err != nil {
		return domain.Feedback{}, err
	}
	for name, v := range map[string]*int{"temperature": req.Temperature, "crowdedness": req.Crowdedness, "rating": req.Rating} {
		if err := inRange(name, v, 1, 5); err != nil {
			return domain.Feedback{}, err
		}
	}
	fb := domain.Feedback{
		NoiseLevel:       req.NoiseLevel,
		Temperature:      req.Temperature,
		Crowdedness:      req.Crowdedness,
		OutletsAvailable: req.OutletsAvailable,
		Rating:           req.Rating,
	}
	if req.Feedback != nil {
		text := strings.TrimSpace(*req.Feedback)
		if utf8.RuneCountInString(text) > MaxFeedbackLength {
			return domain.Feedback{}, fmt.Errorf("%w: feedback longer than %d characters", domain.ErrInvalidInput, MaxFeedbackLength)
		}
		if text != "" {
			fb.FeedbackText = &text
		}
	}
	return fb, nil
}

func inRange(name string, v *int, lo, hi int) error {
	if v != nil && (*v < lo || *v > hi) {
		return fmt.Errorf("%w: %s must be between %d and %d", domain.ErrInvalidInput, name, lo, hi)
	}
	return nil
}

func totalsOf(u *domain.User) reward.Totals {
	return reward.Totals{
		Coins:         u.TotalCoins,
		Hours:         u.TotalHours,
		CurrentStreak: u.CurrentStreak,
		LongestStreak: u.LongestStreak,
		LastDate:      u.LastCheckInDate,
	}
}

func locationIDs(sessions []domain.Session) []domain.LocationID {
	seen := make(map[domain.LocationID]struct{}, len(sessions))
	out := make([]domain.LocationID, 0, len(sessions))
	for _, sess := range sessions {
		if _, ok := seen[sess.LocationID]; ok {
			continue
		}
		seen[sess.LocationID] = struct{}{}
		out = append(out, sess.LocationID)
	}
	return out
}

// elapsedUntil is the session's closed duration, or the live one while open.
func elapsedUntil(sess *domain.Session, now time.Time) (int, time.Time) {
	if sess.CheckedOutAt != nil {
		if sess.ActualDuration != nil {
			return *sess.ActualDuration, *sess.CheckedOutAt
		}
		return reward.ElapsedMinutes(sess.CheckedInAt, *sess.CheckedOutAt), *sess.CheckedOutAt
	}
	return reward.ElapsedMinutes(sess.CheckedInAt, now), now
}
