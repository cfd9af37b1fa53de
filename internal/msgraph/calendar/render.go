package calendar

import (
	"fmt"
	"strings"
	"time"
)

// graphDateTime is the fractional layout Graph uses in event times.
const graphDateTime = "2006-01-02T15:04:05.9999999"

// FormatEvent renders a full event for display.
func FormatEvent(event *Event) string {
	var sb strings.Builder

	subject := event.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	sb.WriteString("Event: ")
	sb.WriteString(subject)
	if event.IsCancelled {
		sb.WriteString(" [cancelled]")
	}
	sb.WriteString("\n")

	sb.WriteString("When: ")
	sb.WriteString(formatWhen(event))
	sb.WriteString("\n")

	if event.Location != nil && event.Location.DisplayName != "" {
		sb.WriteString("Location: ")
		sb.WriteString(event.Location.DisplayName)
		sb.WriteString("\n")
	}

	if event.Organiser != nil {
		sb.WriteString("Organiser: ")
		sb.WriteString(event.Organiser.EmailAddress.String())
		sb.WriteString("\n")
	}

	if attendees := formatAttendees(event.Attendees); attendees != "" {
		sb.WriteString(attendees)
		sb.WriteString("\n")
	}

	if event.OnlineMeeting != nil && event.OnlineMeeting.JoinURL != "" {
		sb.WriteString("Join: ")
		sb.WriteString(event.OnlineMeeting.JoinURL)
		sb.WriteString("\n")
	}

	sb.WriteString("Event ID: ")
	sb.WriteString(event.ID)
	sb.WriteString("\n")

	// Body
	content := ""
	switch {
	case event.Body != nil && event.Body.Content != "":
		content = event.Body.Content
		if strings.EqualFold(event.Body.ContentType, "html") {
			content = stripHTMLTags(content)
		}
	case event.BodyPreview != "":
		content = event.BodyPreview
	}
	if content != "" {
		sb.WriteString("\n")
		sb.WriteString(content)
	}

	return sb.String()
}

// FormatEventSummary renders the one-paragraph form used in listings.
func FormatEventSummary(event *Event) string {
	var sb strings.Builder

	subject := event.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	if event.IsCancelled {
		subject += " [cancelled]"
	}

	sb.WriteString(subject)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  When: %s\n", formatWhen(event)))
	if event.Location != nil && event.Location.DisplayName != "" {
		sb.WriteString(fmt.Sprintf("  Location: %s\n", event.Location.DisplayName))
	}
	if event.Organiser != nil {
		sb.WriteString(fmt.Sprintf("  Organiser: %s\n", event.Organiser.EmailAddress.String()))
	}
	sb.WriteString(fmt.Sprintf("  ID: %s", event.ID))

	return sb.String()
}

// FormatEventList renders a listing with a count header.
func FormatEventList(events []Event) string {
	if len(events) == 0 {
		return "No events found."
	}

	parts := make([]string, 0, len(events)+1)
	parts = append(parts, fmt.Sprintf("%d event(s):", len(events)))
	for i := range events {
		parts = append(parts, FormatEventSummary(&events[i]))
	}
	return strings.Join(parts, "\n\n")
}

// FormatCalendarList renders the user's calendars as a flat listing.
func FormatCalendarList(calendars []Calendar) string {
	if len(calendars) == 0 {
		return "No calendars found."
	}

	parts := make([]string, 0, len(calendars)+1)
	parts = append(parts, fmt.Sprintf("%d calendar(s):", len(calendars)))
	for _, cal := range calendars {
		var notes []string
		if cal.IsDefault {
			notes = append(notes, "default")
		}
		if !cal.CanEdit {
			notes = append(notes, "read-only")
		}
		line := cal.Name
		if len(notes) > 0 {
			line += " (" + strings.Join(notes, ", ") + ")"
		}
		parts = append(parts, fmt.Sprintf("%s\n  ID: %s", line, cal.ID))
	}
	return strings.Join(parts, "\n")
}

// formatWhen renders the event window, collapsing all-day events to dates.
func formatWhen(event *Event) string {
	if event.Start == nil || event.End == nil {
		return "(no time)"
	}

	if event.IsAllDay {
		start := datePart(event.Start.DateTime)
		// Graph ends all-day events at midnight the following day.
		if end := previousDay(event.End.DateTime); end != "" && end != start {
			return fmt.Sprintf("%s to %s (all day)", start, end)
		}
		return start + " (all day)"
	}

	start := formatGraphTime(event.Start)
	end := formatGraphTime(event.End)
	return fmt.Sprintf("%s to %s", start, end)
}

// formatGraphTime renders one zoned Graph timestamp.
func formatGraphTime(dtz *DateTimeZone) string {
	if t, err := parseGraphTime(dtz.DateTime); err == nil {
		stamp := t.Format("2006-01-02 15:04")
		if dtz.TimeZone != "" {
			return stamp + " " + dtz.TimeZone
		}
		return stamp
	}
	return dtz.DateTime
}

// parseGraphTime accepts Graph's fractional layout and plain RFC 3339.
func parseGraphTime(s string) (time.Time, error) {
	if t, err := time.Parse(graphDateTime, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// datePart trims a Graph timestamp to its date.
func datePart(s string) string {
	if len(s) >= len("2006-01-02") {
		return s[:len("2006-01-02")]
	}
	return s
}

// previousDay returns the date one day before the timestamp's date.
func previousDay(s string) string {
	t, err := parseGraphTime(s)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}

// formatAttendees formats the attendee list with their replies.
func formatAttendees(attendees []Attendee) string {
	if len(attendees) == 0 {
		return ""
	}

	var names []string
	for _, a := range attendees {
		name := a.EmailAddress.String()
		if name == "" {
			continue
		}
		if a.Status != nil && a.Status.Response != "" && a.Status.Response != "none" {
			name += " (" + a.Status.Response + ")"
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		return ""
	}
	return "Attendees: " + strings.Join(names, ", ")
}

// stripHTMLTags removes HTML tags from a string (simple implementation).
func stripHTMLTags(s string) string {
	var result strings.Builder
	var inTag bool

	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
