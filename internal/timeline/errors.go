package timeline

import (
	"errors"
	"net/http"
)

// Domain errors for timeline operations.
var (
	ErrNotFound = errors.New("timeline event not found")
	ErrRecord   = errors.New("failed to record timeline")
)

// MapHTTPStatus maps timeline domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
