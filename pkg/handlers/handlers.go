// Package handlers provides shared HTTP response helpers for JSON endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidID is returned by PathID for a path value that is not a UUID.
var ErrInvalidID = errors.New("invalid id")

// ErrorResponse is the uniform failure envelope returned by every endpoint.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes the failure envelope with the given status code.
// Client errors log at warn, everything else at error.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Log(context.Background(), levelFor(status), "handler error", "error", err, "status", status)
	RespondJSON(w, status, ErrorResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// RespondRetry writes the failure envelope with a Retry-After hint.
// Non-positive durations fall back to RespondError.
func RespondRetry(w http.ResponseWriter, logger *slog.Logger, status int, err error, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds())
	if seconds <= 0 {
		RespondError(w, logger, status, err)
		return
	}

	logger.Log(context.Background(), levelFor(status), "handler error", "error", err, "status", status, "retry_after", seconds)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	RespondJSON(w, status, ErrorResponse{
		Success:    false,
		Error:      err.Error(),
		RetryAfter: seconds,
	})
}

// PathID parses the named path value as a UUID.
func PathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", ErrInvalidID, name, raw)
	}
	return id, nil
}

func levelFor(status int) slog.Level {
	if status < http.StatusInternalServerError && status != http.StatusTooManyRequests {
		return slog.LevelWarn
	}
	return slog.LevelError
}
