// Package util contains small shared helpers with no domain dependencies.
package util

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseSize parses a human-readable size string (e.g. "10MB", "512KB", "2GB")
// into bytes. Returns defaultBytes if the string cannot be parsed.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	}

	var val int64
	if _, err := fmt.Sscanf(s, "%d", &val); err == nil {
		return val * multiplier
	}
	return defaultBytes
}

// SanitizeFilename reduces s to a string safe for use inside a download
// filename: letters, digits, '-' and '.' survive, runs of anything else
// collapse to a single '_'. Returns fallback when nothing survives.
func SanitizeFilename(s, fallback string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return fallback
	}
	return out
}
