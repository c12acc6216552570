package dto

import "time"

// ErrorResponse is the body of every non-2xx response. The optional fields
// are set for out-of-range and rate-limited failures.
type ErrorResponse struct {
	Error          string     `json:"error"`
	DistanceMeters *float64   `json:"distanceMeters,omitempty"`
	MaxMeters      *float64   `json:"maxMeters,omitempty"`
	NextAvailable  *time.Time `json:"nextAvailable,omitempty"`
}
