package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"vibesrm/internal/authz"
	"vibesrm/internal/domain"
	"vibesrm/internal/observability/middleware"
	"vibesrm/internal/service"
	"vibesrm/pkg/dto"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	svc *service.Service
	now func() time.Time
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var req dto.CheckInRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.fail(w, r, "check-in decode failed", err)
		return
	}
	res, err := h.svc.CheckIn(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, "check-in failed", err, "user_id", userID, "location_id", req.LocationID)
		return
	}
	slog.Info("checked in", append(middleware.LogAttrs(r.Context()), "user_id", userID, "session_id", res.SessionID, "location_id", req.LocationID)...)
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var req dto.CheckOutRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.fail(w, r, "check-out decode failed", err)
		return
	}
	sessionID := chi.URLParam(r, "sessionId")
	res, err := h.svc.CheckOut(r.Context(), userID, sessionID, req)
	if err != nil {
		h.fail(w, r, "check-out failed", err, "user_id", userID, "session_id", sessionID)
		return
	}
	slog.Info("checked out", append(middleware.LogAttrs(r.Context()), "user_id", userID, "session_id", sessionID, "minutes", res.DurationMinutes, "bonus", res.BonusCoins)...)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) activeSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ActiveSession(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "active session lookup failed", err, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.fail(w, r, "history bad limit", fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput))
			return
		}
		limit = n
	}
	res, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		h.fail(w, r, "history failed", err, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "stats failed", err, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listGhosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.user(w, r); !ok {
		return
	}
	res, err := h.svc.ListNearbyGhosts(r.Context(), r.URL.Query().Get("locationId"))
	if err != nil {
		h.fail(w, r, "ghost list failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) sendEncouragement(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var req dto.EncouragementRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.fail(w, r, "encouragement decode failed", err)
		return
	}
	sessionID := chi.URLParam(r, "sessionId")
	res, err := h.svc.SendEncouragement(r.Context(), userID, sessionID, req)
	if err != nil {
		h.fail(w, r, "encouragement failed", err, "user_id", userID, "session_id", sessionID)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) encouragementSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	res, err := h.svc.EncouragementSummary(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "encouragement summary failed", err, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ghostSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	sessionID := chi.URLParam(r, "sessionId")
	res, err := h.svc.GhostSessionSummary(r.Context(), userID, sessionID)
	if err != nil {
		h.fail(w, r, "ghost summary failed", err, "user_id", userID, "session_id", sessionID)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListLocations(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.fail(w, r, "location list failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) locationDetails(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	res, err := h.svc.LocationDetails(r.Context(), locationID)
	if err != nil {
		h.fail(w, r, "location details failed", err, "location_id", locationID)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	id, ok := authz.UserIDFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "no subject"})
		return id, false
	}
	return id, true
}

// fail writes the mapped error and logs it at a level matching its status.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, attrs ...any) {
	status, body, header := errorResponse(err, h.now())
	for k, v := range header {
		w.Header()[k] = v
	}
	attrs = append(append(middleware.LogAttrs(r.Context()), attrs...), "error", err, "status", status)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, attrs...)
	} else {
		slog.Warn(msg, attrs...)
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON body. With allowEmpty, a missing body decodes to
// the zero value.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
