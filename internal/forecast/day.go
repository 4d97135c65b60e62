package forecast

import (
	"strings"
	"time"
)

// weekdayOffsets maps lowercase weekday names to time.Weekday values.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveDay maps a free-text time reference to a day offset from now and a
// display label. Recognized references (case-insensitive): "today",
// "tomorrow", and weekday names. Naming today's own weekday means next
// week's occurrence (offset 7), not today. Anything unrecognized defaults to
// today; this is a documented policy, not a failure.
//
// Offsets beyond MaxForecastDays are flagged in the label; callers must treat
// them as unfulfillable rather than computing on absent data.
func ResolveDay(when string, now time.Time) (offset int, label string) {
	ref := strings.ToLower(strings.TrimSpace(when))

	switch ref {
	case "", "today":
		return 0, "Today"
	case "tomorrow":
		return 1, "Tomorrow"
	}

	target, ok := weekdayNames[ref]
	if !ok {
		// Unrecognized reference defaults to today.
		return 0, "Today"
	}

	offset = (int(target) - int(now.Weekday()) + 7) % 7
	if offset == 0 {
		// Today's own weekday name refers to next week's occurrence.
		offset = 7
	}

	label = target.String()
	if offset > MaxForecastDays {
		label += " (beyond forecast window)"
	}
	return offset, label
}
