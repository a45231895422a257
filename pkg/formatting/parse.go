package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when no JSON object can be recovered from content.
var ErrParseFailed = errors.New("failed to parse response")

// ExcerptLimit bounds how much of an unparseable payload is carried in errors and logs.
const ExcerptLimit = 200

var (
	jsonFenceRegex = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	bareFenceRegex = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// Parse recovers a JSON object from model output and unmarshals it into T.
//
// The first ```json fence (or, failing that, the first bare ``` fence) is
// preferred over the full text. Within that candidate the span from the first
// '{' to the last '}' is parsed, discarding surrounding prose. Failures wrap
// ErrParseFailed and include at most ExcerptLimit runes of the content.
func Parse[T any](content string) (T, error) {
	var result T

	candidate := stripFence(content)

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || end < start {
		return result, fmt.Errorf(
			"%w: no JSON object found: %q",
			ErrParseFailed, Excerpt(content, ExcerptLimit),
		)
	}

	if err := json.Unmarshal([]byte(candidate[start:end+1]), &result); err != nil {
		return result, fmt.Errorf(
			"%w: %w: %q",
			ErrParseFailed, err, Excerpt(content, ExcerptLimit),
		)
	}

	return result, nil
}

// Excerpt returns at most limit runes of s, marking truncation with "...".
func Excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func stripFence(content string) string {
	if m := jsonFenceRegex.FindStringSubmatch(content); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	if m := bareFenceRegex.FindStringSubmatch(content); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}
