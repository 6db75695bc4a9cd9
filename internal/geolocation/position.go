// Package geolocation models a continuous position feed: a stream of fixes
// interleaved with errors, as delivered by a platform location watch.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Coords is the coordinate part of a position fix
type Coords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Position is a single fix. Timestamp is epoch milliseconds.
type Position struct {
	Coords    Coords `json:"coords"`
	Timestamp int64  `json:"timestamp"`
}

// Update is one delivery from a watch: either a position or an error
type Update struct {
	Position Position
	Err      error
}

// WatchOptions mirrors the options of a platform position watch
type WatchOptions struct {
	EnableHighAccuracy bool
	MaximumAge         time.Duration
	Timeout            time.Duration
}

// DefaultWatchOptions returns high accuracy, 1s maximum age and a 5s timeout
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		EnableHighAccuracy: true,
		MaximumAge:         time.Second,
		Timeout:            5 * time.Second,
	}
}

// Source is a push-based position feed. The returned channel is closed when
// the feed ends or ctx is cancelled; cancelling ctx releases the subscription.
type Source interface {
	Watch(ctx context.Context, opts WatchOptions) (<-chan Update, error)
}

// ErrorCode classifies a position error
type ErrorCode int

// Error codes, numbered like the browser GeolocationPositionError
const (
	PermissionDenied    ErrorCode = 1
	PositionUnavailable ErrorCode = 2
	Timeout             ErrorCode = 3
)

func (c ErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "permission denied"
	case PositionUnavailable:
		return "position unavailable"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// PositionError is delivered in place of a position when no fix is available
type PositionError struct {
	Code    ErrorCode
	Message string
}

func (e *PositionError) Error() string {
	if e.Message == "" {
		return "geolocation: " + e.Code.String()
	}
	return "geolocation: " + e.Code.String() + ": " + e.Message
}

// Is matches any PositionError with the same code
func (e *PositionError) Is(target error) bool {
	t, ok := target.(*PositionError)
	return ok && t.Code == e.Code
}

// Sentinel errors for errors.Is
var (
	ErrPermissionDenied    = &PositionError{Code: PermissionDenied}
	ErrPositionUnavailable = &PositionError{Code: PositionUnavailable}
	ErrTimeout             = &PositionError{Code: Timeout}
)

// UserMessage returns the text shown to the user for a feed error
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Location permission was denied. Allow location access to record stays."
	case errors.Is(err, ErrPositionUnavailable):
		return "Your location is currently unavailable."
	case errors.Is(err, ErrTimeout):
		return "Timed out while getting your location."
	default:
		return "Could not get your location."
	}
}
