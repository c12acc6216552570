package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrOutOfRange   = errors.New("out of range")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnavailable  = errors.New("service unavailable")
)

// OutOfRangeError reports a check-in attempted too far from the location.
type OutOfRangeError struct {
	DistanceMeters float64
	MaxMeters      float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out of range: %.0fm away, max %.0fm", e.DistanceMeters, e.MaxMeters)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// RateLimitedError carries the earliest time the action may be retried.
type RateLimitedError struct {
	NextAvailable time.Time
}

func (e *RateLimitedError) Error() string {
	return "rate limited until " + e.NextAvailable.UTC().Format(time.RFC3339)
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }
