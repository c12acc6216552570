package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"vibesrm/internal/domain"
	"vibesrm/internal/ghost"
	"vibesrm/internal/observability/metrics"
	"vibesrm/internal/reward"
	"vibesrm/internal/store"
	"vibesrm/pkg/dto"
)

// Emojis is the encouragement allow-list.
var Emojis = []string{"🔥", "💪", "📚", "⭐", "🎯", "☕"}

const EncouragementCooldown = 30 * time.Minute

// ListNearbyGhosts returns open ghost sessions, all of them when locationID
// is empty. Owners are never exposed.
func (s *Service) ListNearbyGhosts(ctx context.Context, locationID string) (dto.GhostListResponse, error) {
	var filter *domain.LocationID
	if locationID != "" {
		id, err := uuid.Parse(locationID)
		if err != nil {
			return dto.GhostListResponse{}, fmt.Errorf("%w: invalid locationId", domain.ErrInvalidInput)
		}
		filter = &id
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	sessions, err := s.store.Sessions().ListActiveGhosts(sctx, filter)
	if err != nil {
		return dto.GhostListResponse{}, unavailable(err)
	}
	locs, err := s.store.Locations().GetMany(sctx, locationIDs(sessions))
	if err != nil {
		return dto.GhostListResponse{}, unavailable(err)
	}

	now := s.clock()
	out := dto.GhostListResponse{Ghosts: make([]dto.GhostPresence, 0, len(sessions))}
	for _, sess := range sessions {
		elapsed := reward.ElapsedMinutes(sess.CheckedInAt, now)
		out.Ghosts = append(out.Ghosts, dto.GhostPresence{
			SessionID:      sess.ID.String(),
			GhostName:      deref(sess.GhostName),
			LocationID:     sess.LocationID.String(),
			LocationName:   locs[sess.LocationID].Name,
			Subject:        sess.Subject,
			CheckedInAt:    sess.CheckedInAt,
			ElapsedMinutes: elapsed,
			Elapsed:        ghost.ElapsedLabel(elapsed),
		})
	}
	return out, nil
}

// SendEncouragement checks the emoji, then the per-sender cooldown, then the
// target. Concurrent duplicates inside one window are not prevented.
func (s *Service) SendEncouragement(ctx context.Context, sender domain.UserID, targetSessionID string, req dto.EncouragementRequest) (resp dto.EncouragementResponse, err error) {
	defer func() { metrics.EncouragementsTotal.WithLabelValues(Outcome(err)).Inc() }()

	if !slices.Contains(Emojis, req.Emoji) {
		return dto.EncouragementResponse{}, fmt.Errorf("%w: emoji %q is not allowed", domain.ErrInvalidInput, req.Emoji)
	}
	target, err := uuid.Parse(targetSessionID)
	if err != nil {
		return dto.EncouragementResponse{}, fmt.Errorf("%w: invalid sessionId", domain.ErrInvalidInput)
	}

	now := s.clock()
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	prior, err := s.store.Encouragements().LatestSince(sctx, sender, target, now.Add(-EncouragementCooldown))
	if err != nil {
		return dto.EncouragementResponse{}, unavailable(err)
	}
	if prior != nil {
		return dto.EncouragementResponse{}, &domain.RateLimitedError{NextAvailable: prior.CreatedAt.Add(EncouragementCooldown).UTC()}
	}

	if _, err := s.store.Sessions().ActiveGhost(sctx, target); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return dto.EncouragementResponse{}, fmt.Errorf("%w: no active ghost session %s", domain.ErrNotFound, target)
		}
		return dto.EncouragementResponse{}, unavailable(err)
	}

	enc := domain.Encouragement{
		ID:              uuid.New(),
		SenderID:        sender,
		TargetSessionID: target,
		Emoji:           req.Emoji,
		CreatedAt:       now,
	}
	if err := s.store.Encouragements().Create(sctx, &enc); err != nil {
		return dto.EncouragementResponse{}, unavailable(err)
	}
	return dto.EncouragementResponse{OK: true, Emoji: enc.Emoji, SentAt: enc.CreatedAt}, nil
}

// EncouragementSummary counts encouragements received by the caller's open
// ghost session.
func (s *Service) EncouragementSummary(ctx context.Context, userID domain.UserID) (dto.EncouragementSummaryResponse, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	empty := dto.EncouragementSummaryResponse{Active: false, Counts: map[string]int64{}}
	sess, err := s.store.Sessions().ActiveForUser(sctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return empty, nil
	}
	if err != nil {
		return dto.EncouragementSummaryResponse{}, unavailable(err)
	}
	if sess.Mode != domain.ModeGhost {
		return empty, nil
	}

	counts, err := s.store.Encouragements().CountByEmoji(sctx, sess.ID)
	if err != nil {
		return dto.EncouragementSummaryResponse{}, unavailable(err)
	}
	out := dto.EncouragementSummaryResponse{Active: true, SessionID: sess.ID.String(), Counts: make(map[string]int64, len(counts))}
	for _, c := range counts {
		out.Counts[c.Emoji] = c.Count
		out.Total += c.Count
	}
	return out, nil
}

// GhostSessionSummary describes one of the caller's ghost sessions, open or
// closed.
func (s *Service) GhostSessionSummary(ctx context.Context, userID domain.UserID, sessionID string) (dto.GhostSessionSummaryResponse, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return dto.GhostSessionSummaryResponse{}, fmt.Errorf("%w: invalid sessionId", domain.ErrInvalidInput)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	sess, err := s.store.Sessions().GetOwned(sctx, id, userID)
	if errors.Is(err, store.ErrRecordNotFound) || (err == nil && sess.Mode != domain.ModeGhost) {
		return dto.GhostSessionSummaryResponse{}, fmt.Errorf("%w: ghost session %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return dto.GhostSessionSummaryResponse{}, unavailable(err)
	}

	minutes, end := elapsedUntil(sess, s.clock())
	alongside, err := s.store.Sessions().CountGhostsAlongside(sctx, sess.ID, sess.CheckedInAt, end)
	if err != nil {
		return dto.GhostSessionSummaryResponse{}, unavailable(err)
	}
	received, err := s.store.Encouragements().CountFor(sctx, sess.ID)
	if err != nil {
		return dto.GhostSessionSummaryResponse{}, unavailable(err)
	}

	out := dto.GhostSessionSummaryResponse{
		SessionID:       sess.ID.String(),
		GhostName:       deref(sess.GhostName),
		DurationMinutes: minutes,
		Duration:        ghost.ElapsedLabel(minutes),
		Active:          sess.IsActive,
		GhostsAlongside: alongside,
		Encouragements:  received,
	}
	loc, err := s.store.Locations().Get(sctx, sess.LocationID)
	switch {
	case err == nil:
		out.LocationName = loc.Name
	case !errors.Is(err, store.ErrRecordNotFound):
		return dto.GhostSessionSummaryResponse{}, unavailable(err)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
