package calendar

import (
	"errors"
	"strings"
)

var (
	// ErrNoEventID indicates an operation was called without an event id.
	ErrNoEventID = errors.New("calendar: event id is required")
	// ErrMissingTimes indicates a draft has no start or end time.
	ErrMissingTimes = errors.New("calendar: event start and end times are required")
	// ErrNoChanges indicates an update was requested with nothing to change.
	ErrNoChanges = errors.New("calendar: no changes given")
	// ErrBadWindow indicates a calendar view window is empty or inverted.
	ErrBadWindow = errors.New("calendar: view window must have start before end")
	// ErrBadResponse indicates an unrecognised invitation response.
	ErrBadResponse = errors.New(`calendar: response must be "accept", "decline" or "tentativelyAccept"`)
)

// Event represents a calendar event from the Microsoft Graph API.
type Event struct {
	ID                   string        `json:"id"`
	Subject              string        `json:"subject"`
	BodyPreview          string        `json:"bodyPreview,omitempty"`
	Body                 *EventBody    `json:"body,omitempty"`
	Start                *DateTimeZone `json:"start,omitempty"`
	End                  *DateTimeZone `json:"end,omitempty"`
	Location             *Location     `json:"location,omitempty"`
	Organiser            *Organiser    `json:"organizer,omitempty"` //nolint:misspell // Microsoft API field name
	Attendees            []Attendee    `json:"attendees,omitempty"`
	WebLink              string        `json:"webLink,omitempty"`
	IsCancelled          bool          `json:"isCancelled,omitempty"`
	IsAllDay             bool          `json:"isAllDay,omitempty"`
	IsOrganiser          bool          `json:"isOrganizer,omitempty"` //nolint:misspell // Microsoft API field name
	ResponseRequested    bool          `json:"responseRequested,omitempty"`
	ShowAs               string        `json:"showAs,omitempty"`
	Importance           string        `json:"importance,omitempty"`
	Sensitivity          string        `json:"sensitivity,omitempty"`
	Categories           []string      `json:"categories,omitempty"`
	SeriesMasterID       string        `json:"seriesMasterId,omitempty"`
	Recurrence           *Recurrence   `json:"recurrence,omitempty"`
	OnlineMeeting        *Meeting      `json:"onlineMeeting,omitempty"`
	CreatedDateTime      string        `json:"createdDateTime,omitempty"`
	LastModifiedDateTime string        `json:"lastModifiedDateTime,omitempty"`
}

// EventBody contains the event body content.
type EventBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// DateTimeZone contains a date-time with time zone.
type DateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Location contains location information.
type Location struct {
	DisplayName string `json:"displayName"`
}

// EmailAddress represents an email address with optional display name.
type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// String renders the address as "Name <address>", or the bare address
// when no display name is set.
func (e EmailAddress) String() string {
	if e.Name != "" && e.Address != "" {
		return e.Name + " <" + e.Address + ">"
	}
	if e.Address != "" {
		return e.Address
	}
	return e.Name
}

// Organiser wraps the organiser's address the way Graph nests it.
type Organiser struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// Attendee represents an event attendee.
type Attendee struct {
	// Type is "required", "optional" or "resource".
	Type         string          `json:"type,omitempty"`
	Status       *ResponseStatus `json:"status,omitempty"`
	EmailAddress EmailAddress    `json:"emailAddress"`
}

// ResponseStatus carries an attendee's reply to the invitation.
type ResponseStatus struct {
	Response string `json:"response"`
	Time     string `json:"time,omitempty"`
}

// Recurrence contains recurrence pattern information.
type Recurrence struct {
	Pattern *struct {
		Type       string   `json:"type"`
		Interval   int      `json:"interval"`
		DaysOfWeek []string `json:"daysOfWeek,omitempty"`
	} `json:"pattern,omitempty"`
	Range *struct {
		Type      string `json:"type"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate,omitempty"`
	} `json:"range,omitempty"`
}

// Meeting carries the join link of an online meeting.
type Meeting struct {
	JoinURL string `json:"joinUrl"`
}

// Calendar represents a calendar from the Microsoft Graph API.
type Calendar struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Colour      string        `json:"color"` //nolint:misspell // Microsoft API field name
	IsDefault   bool          `json:"isDefaultCalendar"`
	CanEdit     bool          `json:"canEdit"`
	CanShare    bool          `json:"canShare"`
	Owner       *EmailAddress `json:"owner,omitempty"`
	IsRemovable bool          `json:"isRemovable"`
}

// EventDraft describes a new event, or the changed fields of an existing
// one when used with UpdateEvent.
type EventDraft struct {
	// Subject is the event title.
	Subject string
	// Body is the event description.
	Body string
	// BodyType is "Text" or "HTML". Defaults to Text.
	BodyType string
	// Start and End are ISO 8601 timestamps without offset,
	// e.g. "2026-03-02T14:00:00".
	Start string
	End   string
	// TimeZone applies to Start and End. Defaults to UTC.
	TimeZone string
	// Location is a free-text venue name.
	Location string
	// Attendees and OptionalAttendees are plain email addresses.
	Attendees         []string
	OptionalAttendees []string
	// IsAllDay marks a date-only event. Graph then requires midnight
	// start and end times.
	IsAllDay bool
}

// payload validates the draft and renders the Graph shape for creation.
func (d *EventDraft) payload() (map[string]any, error) {
	if d.Start == "" || d.End == "" {
		return nil, ErrMissingTimes
	}

	body := map[string]any{
		"subject": d.Subject,
		"start":   d.zonedTime(d.Start),
		"end":     d.zonedTime(d.End),
	}
	if d.Body != "" {
		body["body"] = EventBody{ContentType: normaliseBodyType(d.BodyType), Content: d.Body}
	}
	if d.Location != "" {
		body["location"] = Location{DisplayName: d.Location}
	}
	if attendees := d.attendeeList(); len(attendees) > 0 {
		body["attendees"] = attendees
	}
	if d.IsAllDay {
		body["isAllDay"] = true
	}
	return body, nil
}

// patchBody renders only the set fields, for partial updates.
func (d *EventDraft) patchBody() (map[string]any, error) {
	body := map[string]any{}
	if d.Subject != "" {
		body["subject"] = d.Subject
	}
	if d.Body != "" {
		body["body"] = EventBody{ContentType: normaliseBodyType(d.BodyType), Content: d.Body}
	}
	if d.Start != "" {
		body["start"] = d.zonedTime(d.Start)
	}
	if d.End != "" {
		body["end"] = d.zonedTime(d.End)
	}
	if d.Location != "" {
		body["location"] = Location{DisplayName: d.Location}
	}
	if attendees := d.attendeeList(); len(attendees) > 0 {
		body["attendees"] = attendees
	}
	if len(body) == 0 {
		return nil, ErrNoChanges
	}
	return body, nil
}

// zonedTime pairs a timestamp with the draft's time zone.
func (d *EventDraft) zonedTime(dateTime string) DateTimeZone {
	timeZone := d.TimeZone
	if timeZone == "" {
		timeZone = "UTC"
	}
	return DateTimeZone{DateTime: dateTime, TimeZone: timeZone}
}

// attendeeList converts plain addresses into Graph attendee objects.
func (d *EventDraft) attendeeList() []Attendee {
	attendees := make([]Attendee, 0, len(d.Attendees)+len(d.OptionalAttendees))
	for _, addr := range d.Attendees {
		if addr = strings.TrimSpace(addr); addr != "" {
			attendees = append(attendees, Attendee{Type: "required", EmailAddress: EmailAddress{Address: addr}})
		}
	}
	for _, addr := range d.OptionalAttendees {
		if addr = strings.TrimSpace(addr); addr != "" {
			attendees = append(attendees, Attendee{Type: "optional", EmailAddress: EmailAddress{Address: addr}})
		}
	}
	if len(attendees) == 0 {
		return nil
	}
	return attendees
}

// normaliseBodyType maps caller input onto the content types Graph accepts.
func normaliseBodyType(bodyType string) string {
	if strings.EqualFold(bodyType, "html") {
		return "HTML"
	}
	return "Text"
}
