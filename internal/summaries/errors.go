package summaries

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/medbrief/internal/pipeline"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/speech"
)

// Domain errors for summary operations.
var (
	ErrNotFound        = errors.New("summary not found")
	ErrDuplicate       = errors.New("summary already exists")
	ErrNoAudio         = errors.New("summary has no audio brief")
	ErrInvalidInput    = errors.New("patient name and at least one file are required")
	ErrTooManyFiles    = errors.New("too many files")
	ErrUnsupportedType = errors.New("only PDF and image files are accepted")
	ErrFileTooLarge    = errors.New("upload exceeds maximum size")
	ErrStorage         = errors.New("failed to save summary")
)

// MapHTTPStatus maps summary, pipeline and provider errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoAudio):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrTooManyFiles),
		errors.Is(err, ErrUnsupportedType),
		errors.Is(err, pipeline.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, gemini.ErrNotConfigured), errors.Is(err, speech.ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.Is(err, gemini.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, gemini.ErrOverloaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, gemini.ErrUpload),
		errors.Is(err, gemini.ErrGeneration),
		errors.Is(err, pipeline.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
