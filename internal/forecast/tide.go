package forecast

import (
	"fmt"
	"strings"
	"time"
)

// tideTimeLayouts lists the timestamp layouts the marine API emits.
var tideTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// FindTideExtremes scans the sampled sea-level curve for one calendar day and
// returns its local maxima and minima as tide events, ordered ascending by
// time. Only samples whose timestamp falls on date (YYYY-MM-DD) are
// considered; fewer than 3 such samples yield no events. An interior sample
// strictly greater than both of its date-matched neighbors is a high tide,
// strictly lower a low tide. Plateaus produce no event.
//
// Because comparison is against adjacent matching samples rather than
// adjacent clock hours, irregular sampling gaps are tolerated.
func FindTideExtremes(times []string, seaLevels []*float64, date string) []TideEvent {
	type sample struct {
		time  string
		level float64
	}

	var matched []sample
	for i, ts := range times {
		if !strings.HasPrefix(ts, date) {
			continue
		}
		if i >= len(seaLevels) || seaLevels[i] == nil {
			continue
		}
		matched = append(matched, sample{time: ts, level: *seaLevels[i]})
	}

	if len(matched) < 3 {
		return nil
	}

	var events []TideEvent
	for i := 1; i < len(matched)-1; i++ {
		prev, cur, next := matched[i-1].level, matched[i].level, matched[i+1].level
		switch {
		case cur > prev && cur > next:
			events = append(events, TideEvent{Time: matched[i].time, Height: cur, Kind: TideHigh})
		case cur < prev && cur < next:
			events = append(events, TideEvent{Time: matched[i].time, Height: cur, Kind: TideLow})
		}
	}
	return events
}

// TideStateForSession describes what the tide is doing during a session
// window [startHour, endHour). If an event falls inside the window, the first
// such event is reported directly. Otherwise the events around the session
// midpoint decide: a low before and a high after means the tide is rising
// through the session, the reverse means falling. Returns the empty string
// when no tide data applies.
func TideStateForSession(events []TideEvent, startHour, endHour int) string {
	for _, ev := range events {
		h := eventHour(ev.Time)
		if h >= float64(startHour) && h < float64(endHour) {
			return fmt.Sprintf("%s tide at %s (%.1fm)", tideKindLabel(ev.Kind), FormatTideTime(ev.Time), ev.Height)
		}
	}

	midpoint := float64(startHour+endHour) / 2
	var before, after []TideEvent
	for _, ev := range events {
		if eventHour(ev.Time) < midpoint {
			before = append(before, ev)
		} else {
			after = append(after, ev)
		}
	}
	if len(before) == 0 || len(after) == 0 {
		return ""
	}

	last, first := before[len(before)-1], after[0]
	switch {
	case last.Kind == TideLow && first.Kind == TideHigh:
		return "Tide rising"
	case last.Kind == TideHigh && first.Kind == TideLow:
		return "Tide falling"
	}
	// Same-kind neighbors come from noisy detection; report nothing.
	return ""
}

// FormatTideTime renders an hourly timestamp as a 12-hour clock time,
// e.g. "6:23 AM". Unparseable input is returned as-is.
func FormatTideTime(ts string) string {
	for _, layout := range tideTimeLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("3:04 PM")
		}
	}
	return ts
}

// FormatTideSummary renders the day's tide events as a single line,
// e.g. "Tides: High 6:23 AM (1.8m), Low 12:45 PM (0.3m)".
func FormatTideSummary(events []TideEvent) string {
	if len(events) == 0 {
		return ""
	}
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		parts = append(parts, fmt.Sprintf("%s %s (%.1fm)", tideKindLabel(ev.Kind), FormatTideTime(ev.Time), ev.Height))
	}
	return "Tides: " + strings.Join(parts, ", ")
}

// eventHour returns the fractional hour-of-day of a timestamp, e.g. 7.5 for
// 07:30. Unparseable timestamps sort before any session window.
func eventHour(ts string) float64 {
	for _, layout := range tideTimeLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return float64(t.Hour()) + float64(t.Minute())/60
		}
	}
	return -1
}

func tideKindLabel(k TideKind) string {
	if k == TideHigh {
		return "High"
	}
	return "Low"
}
