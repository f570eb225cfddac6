package util

import (
	"fmt"
	"strings"
	"unicode"
)

// TitleCase upper-cases the first letter of every alphabetic run and
// lower-cases the rest, so "leite UHT 1l" becomes "Leite Uht 1L".
func TitleCase(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	prevLetter := false
	for _, r := range input {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Truncate limits a string to max runes, for columns with a length cap.
func Truncate(input string, max int) string {
	runes := []rune(input)
	if len(runes) <= max {
		return input
	}
	return string(runes[:max])
}

func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
