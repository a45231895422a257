// Package formatting provides parsing and encoding helpers: human-readable
// byte sizes, JSON recovery from model output, and streaming base64.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// byteUnits are base-1024 multipliers; "KiB" style suffixes are accepted as aliases.
var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n with the largest unit that keeps the value at or
// above 1, e.g. 1536 -> "1.5 KB" at precision 1.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	return strconv.FormatFloat(v, 'f', precision, 64) + " " + byteUnits[i]
}

// ParseBytes parses sizes such as "20MB", "1.5 GiB" or "4096". Units are
// base-1024 and case-insensitive; a bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if num == "" {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	mult, ok := unitMultiplier(unit)
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit %q", unit)
	}
	return int64(value * float64(mult)), nil
}

func unitMultiplier(unit string) (int64, bool) {
	unit = strings.ToUpper(unit)
	if unit == "" {
		return 1, true
	}
	if len(unit) == 3 && unit[1] == 'I' {
		unit = unit[:1] + "B"
	}

	mult := int64(1)
	for _, u := range byteUnits {
		if u == unit {
			return mult, true
		}
		mult <<= 10
	}
	return 0, false
}
