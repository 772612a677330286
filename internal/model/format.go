package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Time formatting constants
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
	UnknownDuration  = "Unknown"
)

// Magnitude thresholds
const (
	Thousand = 1_000
	Million  = 1_000_000
	Billion  = 1_000_000_000
)

// MaxFilenameLength is the rune limit applied by SanitizeFilename
const MaxFilenameLength = 200

// forbiddenFilenameChars are rejected by at least one common filesystem
const forbiddenFilenameChars = `<>:"/\|?*`

// FormatDuration renders seconds as "1h 1m 1s", "1m 1s" or "30s"; zero is "Unknown"
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return UnknownDuration
	}

	hours := seconds / SecondsPerHour
	minutes := (seconds % SecondsPerHour) / SecondsPerMinute
	secs := seconds % SecondsPerMinute

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatNumber renders large counts with K, M and B suffixes
func FormatNumber(n int64) string {
	switch {
	case n == 0:
		return "0"
	case n >= Billion:
		return fmt.Sprintf("%.1fB", float64(n)/Billion)
	case n >= Million:
		return fmt.Sprintf("%.1fM", float64(n)/Million)
	case n >= Thousand:
		return fmt.Sprintf("%.1fK", float64(n)/Thousand)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// SanitizeFilename drops characters that are unsafe in file names on any
// platform, including C0 and C1 control characters, and limits the result to
// MaxFilenameLength runes.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenFilenameChars, r) || isControl(r) {
			return -1
		}
		return r
	}, name)

	runes := []rune(cleaned)
	if len(runes) > MaxFilenameLength {
		runes = runes[:MaxFilenameLength]
	}
	return string(runes)
}

func isControl(r rune) bool {
	return (r >= 0x00 && r <= 0x1f) || (r >= 0x7f && r <= 0x9f)
}
