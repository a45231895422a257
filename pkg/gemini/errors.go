package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Sentinel errors for Gemini operations.
var (
	ErrNotConfigured = errors.New("gemini api key not configured")
	ErrUpload        = errors.New("file upload failed")
	ErrNotReady      = errors.New("file not ready")
	ErrGeneration    = errors.New("generation failed")
	ErrOverloaded    = errors.New("model overloaded")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrNoText        = errors.New("no text generated")
)

// Suggested client retry delays by failure kind.
const (
	QuotaRetryAfter      = 60 * time.Second
	OverloadedRetryAfter = 30 * time.Second
	DefaultRetryAfter    = 5 * time.Second
)

// RetryAfter suggests how long a caller should wait before retrying after err.
// Returns zero for errors that retrying will not fix.
func RetryAfter(err error) time.Duration {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNotConfigured):
		return 0
	case errors.Is(err, ErrQuotaExceeded):
		return QuotaRetryAfter
	case errors.Is(err, ErrOverloaded):
		return OverloadedRetryAfter
	default:
		return DefaultRetryAfter
	}
}

// quota reports whether err is a rate or quota rejection. The SDK flattens
// upload session failures into text, so the message is checked as well as
// the APIError fields.
func quota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) &&
		(apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED") {
		return true
	}

	msg := err.Error()
	return strings.Contains(strings.ToLower(msg), "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "Error 429,")
}

func overloaded(err error) bool {
	var apiErr genai.APIError
	return errors.As(err, &apiErr) &&
		(apiErr.Code == http.StatusServiceUnavailable || apiErr.Status == "UNAVAILABLE")
}

// classify wraps err in kind, adding ErrQuotaExceeded when the API
// rejected the call for quota.
func classify(kind, err error) error {
	if quota(err) {
		return fmt.Errorf("%w: %w: %w", kind, ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
