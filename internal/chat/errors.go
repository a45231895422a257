package chat

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/medbrief/internal/summaries"
	"github.com/JaimeStill/medbrief/pkg/gemini"
)

// Domain errors for chat operations.
var (
	ErrChat         = errors.New("chat request failed")
	ErrInvalidInput = errors.New("summaryId and messages are required")
	ErrInvalidRole  = errors.New("message role must be user or assistant")
	ErrEmptyMessage = errors.New("message content is required")
	ErrNoFiles      = errors.New("no files associated with this summary")
)

// MapHTTPStatus maps chat, summary and provider errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, summaries.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoFiles):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gemini.ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.Is(err, gemini.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrChat):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
