package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"vibesrm/internal/domain"
	"vibesrm/pkg/dto"
)

// errorResponse maps a service error to its status code and body.
func errorResponse(err error, now time.Time) (int, dto.ErrorResponse, http.Header) {
	body := dto.ErrorResponse{Error: err.Error()}
	header := http.Header{}

	var oor *domain.OutOfRangeError
	var rl *domain.RateLimitedError
	switch {
	case errors.As(err, &oor):
		distance := math.Round(oor.DistanceMeters*10) / 10
		maxMeters := oor.MaxMeters
		body.DistanceMeters = &distance
		body.MaxMeters = &maxMeters
		return http.StatusUnprocessableEntity, body, header
	case errors.As(err, &rl):
		next := rl.NextAvailable
		body.NextAvailable = &next
		wait := int(math.Ceil(next.Sub(now).Seconds()))
		if wait < 1 {
			wait = 1
		}
		header.Set("Retry-After", strconv.Itoa(wait))
		return http.StatusTooManyRequests, body, header
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, body, header
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, body, header
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, body, header
	case errors.Is(err, domain.ErrUnavailable):
		body.Error = domain.ErrUnavailable.Error()
		return http.StatusServiceUnavailable, body, header
	default:
		body.Error = "internal error"
		return http.StatusInternalServerError, body, header
	}
}
