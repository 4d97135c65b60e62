package forecast

import (
	"fmt"
	"strings"
)

const metersToFeet = 3.28084

// sessionHoursLabel renders a session window for display, e.g. "6-10am".
func sessionHoursLabel(s Session) string {
	switch s {
	case SessionMorning:
		return "6-10am"
	case SessionMidday:
		return "10am-2pm"
	default:
		return "2-6pm"
	}
}

// RenderReport renders a report as the plain text forecast handed to the
// agent and shown to users. Sessions with no wave data get a "No data
// available" line; the rest show averaged conditions, tide state, and the
// rating.
func RenderReport(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Surf Forecast for %s — %s (%s)\n", r.Location, r.DayLabel, r.Date)

	bySession := make(map[Session]SessionSummary, len(r.Sessions))
	for _, s := range r.Sessions {
		bySession[s.Session] = s
	}

	for _, session := range Sessions {
		summary, ok := bySession[session]
		if !ok {
			fmt.Fprintf(&b, "%s (%s): No data available\n", session.Label(), sessionHoursLabel(session))
			continue
		}

		line := fmt.Sprintf("%s (%s): Wave: %.1fm (%.1fft) @ %.0fs | Wind: %.0f km/h %s",
			session.Label(), sessionHoursLabel(session),
			summary.WaveHeight, summary.WaveHeight*metersToFeet, summary.WavePeriod,
			summary.WindSpeed, DegreesToCompass(summary.WindDirection),
		)
		if summary.TideState != "" {
			line += " | " + summary.TideState
		}
		line += fmt.Sprintf(" | Rating: %d/10 - %s", summary.Rating, summary.Description)
		b.WriteString(line + "\n")
	}

	if summary := FormatTideSummary(r.Tides); summary != "" {
		b.WriteString(summary + "\n")
	}

	if best, ok := BestSession(r.Sessions); ok {
		fmt.Fprintf(&b, "Best session: %s (%d/10)\n", best.Session.Label(), best.Rating)
	}

	return strings.TrimRight(b.String(), "\n")
}

// BestSession picks the highest-rated session; on a tie the earlier session
// wins. Returns false when no session had data.
func BestSession(summaries []SessionSummary) (SessionSummary, bool) {
	if len(summaries) == 0 {
		return SessionSummary{}, false
	}
	best := summaries[0]
	for _, s := range summaries[1:] {
		if s.Rating > best.Rating {
			best = s
		}
	}
	return best, true
}
