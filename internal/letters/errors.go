package letters

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/medbrief/internal/summaries"
	"github.com/JaimeStill/medbrief/pkg/gemini"
)

// Domain errors for letter operations.
var (
	ErrNotFound     = errors.New("letter not found")
	ErrInvalidKind  = errors.New("invalid letter type")
	ErrInvalidInput = errors.New("summary id and letter type are required")
	ErrEmptyContent = errors.New("letter content is required")
	ErrSave         = errors.New("failed to save letter")
)

// MapHTTPStatus maps letter, summary and provider errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, summaries.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, gemini.ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.Is(err, gemini.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, gemini.ErrOverloaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, gemini.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
