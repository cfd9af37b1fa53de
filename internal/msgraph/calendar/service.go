// Package calendar exposes the calendar surface of Microsoft Graph:
// listing calendars, reading and managing events, and answering
// invitations under /me.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/outlook-mcp/internal/msgraph"
)

const (
	// defaultTop is the page size used when the caller does not ask for one.
	defaultTop = 25
	// maxTop caps page sizes at the Graph API limit.
	maxTop = 1000
	// preferUTC pins returned event times to UTC so output is stable
	// regardless of the mailbox time zone.
	preferUTC = `outlook.timezone="UTC"`
)

// eventFields covers what the event renderings use.
var eventFields = []string{
	"id", "subject", "bodyPreview", "start", "end", "location", "organizer",
	"attendees", "webLink", "isCancelled", "isAllDay", "isOrganizer",
	"responseRequested", "showAs", "importance", "categories",
	"seriesMasterId", "recurrence", "onlineMeeting",
}

// calendarFields covers what the calendar listing renders.
var calendarFields = []string{
	"id", "name", "color", "isDefaultCalendar", "canEdit", "canShare",
	"owner", "isRemovable",
}

// ViewOptions bounds a calendar view query.
type ViewOptions struct {
	// CalendarID scopes the view to one calendar. Empty means the
	// default calendar.
	CalendarID string
	// Start and End bound the window: events overlapping
	// [Start, End) are returned, with recurrences expanded.
	Start time.Time
	End   time.Time
	// Top is the page size used while walking the window.
	Top int
}

// Service provides calendar operations for the signed-in user.
type Service struct {
	client *msgraph.Client
}

// NewService creates a calendar service backed by the given Graph client.
func NewService(client *msgraph.Client) *Service {
	return &Service{client: client}
}

// ListCalendars returns every calendar visible to the user.
func (s *Service) ListCalendars(ctx context.Context) ([]Calendar, error) {
	it := s.client.IterateAllPages("/me/calendars", &msgraph.RequestOptions{
		Select: calendarFields,
		Top:    defaultTop,
	})

	items, err := it.Collect(ctx)
	if err != nil {
		return nil, err
	}

	calendars := make([]Calendar, 0, len(items))
	for _, item := range items {
		var cal Calendar
		if err := json.Unmarshal(item, &cal); err != nil {
			return nil, fmt.Errorf("decode calendar: %w", err)
		}
		calendars = append(calendars, cal)
	}
	return calendars, nil
}

// ListEvents returns one page of upcoming and past events, soonest first.
// Recurring events appear as their series masters; use CalendarView to
// expand occurrences within a window.
func (s *Service) ListEvents(ctx context.Context, calendarID string, top int) ([]Event, error) {
	reqOpts := &msgraph.RequestOptions{
		Select:  eventFields,
		Top:     clampTop(top),
		OrderBy: "start/dateTime",
		Prefer:  preferUTC,
	}

	raw, err := s.client.MakeRequest(ctx, eventsPath(calendarID), reqOpts)
	if err != nil {
		return nil, err
	}
	return decodeEvents(raw)
}

// CalendarView returns every event instance inside the window, with
// recurring series expanded into their occurrences.
func (s *Service) CalendarView(ctx context.Context, opts ViewOptions) ([]Event, error) {
	if opts.Start.IsZero() || opts.End.IsZero() || !opts.End.After(opts.Start) {
		return nil, ErrBadWindow
	}

	path := fmt.Sprintf("%s?startDateTime=%s&endDateTime=%s",
		viewPath(opts.CalendarID),
		url.QueryEscape(opts.Start.UTC().Format(time.RFC3339)),
		url.QueryEscape(opts.End.UTC().Format(time.RFC3339)))

	it := s.client.IterateAllPages(path, &msgraph.RequestOptions{
		Select:  eventFields,
		Top:     clampTop(opts.Top),
		OrderBy: "start/dateTime",
		Prefer:  preferUTC,
	})

	items, err := it.Collect(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(items))
	for _, item := range items {
		var event Event
		if err := json.Unmarshal(item, &event); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

// CreateEvent schedules a new event and returns it as stored, including
// the id Graph assigned.
func (s *Service) CreateEvent(ctx context.Context, calendarID string, draft *EventDraft) (*Event, error) {
	payload, err := draft.payload()
	if err != nil {
		return nil, err
	}

	raw, err := s.client.PostWithRetry(ctx, eventsPath(calendarID), payload)
	if err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("decode created event: %w", err)
	}
	return &event, nil
}

// UpdateEvent applies the draft's set fields to an existing event and
// returns the updated event. Attendees receive an updated invitation.
func (s *Service) UpdateEvent(ctx context.Context, eventID string, changes *EventDraft) (*Event, error) {
	if eventID == "" {
		return nil, ErrNoEventID
	}
	payload, err := changes.patchBody()
	if err != nil {
		return nil, err
	}

	raw, err := s.client.PatchWithRetry(ctx, eventPath(eventID), payload)
	if err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("decode updated event: %w", err)
	}
	return &event, nil
}

// DeleteEvent removes an event. For meetings the organiser's deletion
// cancels it for every attendee.
func (s *Service) DeleteEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return ErrNoEventID
	}

	_, err := s.client.DeleteWithRetry(ctx, eventPath(eventID))
	return err
}

// responseActions maps invitation responses to their Graph actions.
var responseActions = map[string]string{
	"accept":            "accept",
	"decline":           "decline",
	"tentativelyAccept": "tentativelyAccept",
}

// RespondToEvent answers a meeting invitation. The response must be
// "accept", "decline" or "tentativelyAccept"; the comment travels to the
// organiser when sendResponse is true.
func (s *Service) RespondToEvent(ctx context.Context, eventID, response, comment string, sendResponse bool) error {
	if eventID == "" {
		return ErrNoEventID
	}
	action, ok := responseActions[response]
	if !ok {
		return fmt.Errorf("%w, got %q", ErrBadResponse, response)
	}

	body := map[string]any{"sendResponse": sendResponse}
	if comment != "" {
		body["comment"] = comment
	}

	_, err := s.client.PostWithRetry(ctx, eventPath(eventID)+"/"+action, body)
	return err
}

// eventsPath returns the event collection path, calendar-scoped when asked.
func eventsPath(calendarID string) string {
	if calendarID == "" {
		return "/me/events"
	}
	return fmt.Sprintf("/me/calendars/%s/events", url.PathEscape(calendarID))
}

// viewPath returns the calendar view path, calendar-scoped when asked.
func viewPath(calendarID string) string {
	if calendarID == "" {
		return "/me/calendarView"
	}
	return fmt.Sprintf("/me/calendars/%s/calendarView", url.PathEscape(calendarID))
}

// eventPath returns the path of a single event.
func eventPath(id string) string {
	return "/me/events/" + url.PathEscape(id)
}

// clampTop keeps page sizes positive and inside the Graph API limit.
func clampTop(top int) int {
	switch {
	case top <= 0:
		return defaultTop
	case top > maxTop:
		return maxTop
	default:
		return top
	}
}

// decodeEvents unwraps a Graph collection envelope.
func decodeEvents(raw json.RawMessage) ([]Event, error) {
	var envelope struct {
		Value []Event `json:"value"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode event list: %w", err)
	}
	return envelope.Value, nil
}
