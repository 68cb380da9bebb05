package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrBadRequest  = errors.New("bad request")
	ErrUnavailable = errors.New("upstream service unavailable")

	// ErrInsufficientPlaces is returned when fewer than two selected places
	// survive validation.
	ErrInsufficientPlaces = errors.New("please select at least 2 places with valid coordinates to build an itinerary")

	// ErrInsufficientAfterClustering is returned when fewer than two places
	// remain after dropping far-away outliers.
	ErrInsufficientAfterClustering = errors.New("after geographic clustering, less than 2 places remain; please select places that are closer together")

	ErrRoutingFailed = errors.New("routing failed")
	ErrSerialization = errors.New("serialization failed")
)

// RoutingError carries the routing provider's own message.
type RoutingError struct {
	StatusCode int
	Message    string
}

func (e *RoutingError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("routing failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("routing failed: %s", e.Message)
}

func (e *RoutingError) Unwrap() error { return ErrRoutingFailed }
