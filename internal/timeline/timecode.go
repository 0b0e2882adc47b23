package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"audesc/internal/services"
)

// ParseTimecode converts a user-supplied time into float seconds. Both
// "HH:MM:SS" (with optional fractional seconds) and a plain seconds value are
// accepted.
func ParseTimecode(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, services.Wrap(services.ErrInvalidTimeFormat, "timeline", "parse", "empty time value", nil)
	}

	if !strings.Contains(trimmed, ":") {
		seconds, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return 0, services.Wrap(services.ErrInvalidTimeFormat, "timeline", "parse", fmt.Sprintf("%q is not a number of seconds", value), nil)
		}
		if seconds < 0 {
			return 0, services.Wrap(services.ErrInvalidTimeFormat, "timeline", "parse", "time must not be negative", nil)
		}
		return seconds, nil
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) != 3 {
		return 0, services.Wrap(services.ErrInvalidTimeFormat, "timeline", "parse", fmt.Sprintf("%q is not HH:MM:SS", value), nil)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, services.Wrap(services.ErrInvalidTimeFormat, "timeline", "parse", fmt.Sprintf("bad hours in %q", value), nil)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, services.Wrap(services.ErrInvalidTimeFormat, "timeline", "parse", fmt.Sprintf("bad minutes in %q", value), nil)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, services.Wrap(services.ErrInvalidTimeFormat, "timeline", "parse", fmt.Sprintf("bad seconds in %q", value), nil)
	}

	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

// FormatTimecode renders seconds as HH:MM:SS, truncating fractional seconds.
func FormatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
