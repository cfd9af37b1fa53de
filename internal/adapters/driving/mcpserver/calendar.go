package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/outlook-mcp/internal/msgraph/calendar"
)

type listCalendarEventsInput struct {
	CalendarID string `json:"calendarId,omitempty" jsonschema:"Calendar id from list-calendars. Empty uses the default calendar."`
	Top        int    `json:"top,omitempty" jsonschema:"Maximum number of events to return. Defaults to 25."`
}

type calendarViewInput struct {
	CalendarID string `json:"calendarId,omitempty" jsonschema:"Calendar id from list-calendars. Empty uses the default calendar."`
	Start      string `json:"start" jsonschema:"Window start as RFC 3339 (2026-03-02T09:00:00Z) or a date (2026-03-02)."`
	End        string `json:"end" jsonschema:"Window end, exclusive. Same formats as start."`
}

type createEventInput struct {
	CalendarID        string   `json:"calendarId,omitempty" jsonschema:"Calendar id from list-calendars. Empty uses the default calendar."`
	Subject           string   `json:"subject" jsonschema:"Event title."`
	Body              string   `json:"body,omitempty" jsonschema:"Event description."`
	BodyType          string   `json:"bodyType,omitempty" jsonschema:"Description content type: Text or HTML. Defaults to Text."`
	Start             string   `json:"start" jsonschema:"Start time as ISO 8601 without offset, e.g. 2026-03-02T14:00:00."`
	End               string   `json:"end" jsonschema:"End time, same format as start."`
	TimeZone          string   `json:"timeZone,omitempty" jsonschema:"Time zone for start and end, e.g. Europe/London. Defaults to UTC."`
	Location          string   `json:"location,omitempty" jsonschema:"Free-text venue name."`
	Attendees         []string `json:"attendees,omitempty" jsonschema:"Required attendee email addresses."`
	OptionalAttendees []string `json:"optionalAttendees,omitempty" jsonschema:"Optional attendee email addresses."`
	AllDay            bool     `json:"allDay,omitempty" jsonschema:"Marks a date-only event. Start and end must then be midnights."`
}

type updateEventInput struct {
	EventID  string `json:"eventId" jsonschema:"Id of the event to change."`
	Subject  string `json:"subject,omitempty" jsonschema:"New event title."`
	Body     string `json:"body,omitempty" jsonschema:"New event description."`
	BodyType string `json:"bodyType,omitempty" jsonschema:"Description content type: Text or HTML."`
	Start    string `json:"start,omitempty" jsonschema:"New start time as ISO 8601 without offset."`
	End      string `json:"end,omitempty" jsonschema:"New end time, same format as start."`
	TimeZone string `json:"timeZone,omitempty" jsonschema:"Time zone for the new start and end. Defaults to UTC."`
	Location string `json:"location,omitempty" jsonschema:"New venue name."`
}

type deleteEventInput struct {
	EventID string `json:"eventId" jsonschema:"Id of the event to delete."`
}

type respondEventInput struct {
	EventID      string `json:"eventId" jsonschema:"Id of the invitation to answer."`
	Response     string `json:"response" jsonschema:"One of accept, decline or tentativelyAccept."`
	Comment      string `json:"comment,omitempty" jsonschema:"Note sent to the organiser with the response."`
	SendResponse *bool  `json:"sendResponse,omitempty" jsonschema:"Whether to notify the organiser. Defaults to true."`
}

func (s *Server) registerCalendarTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list-calendars",
		Description: "List every calendar visible to the signed-in user.",
	}, s.handleListCalendars)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list-calendar-events",
		Description: "List events soonest first. Recurring events appear as their series masters; use get-calendar-view to expand occurrences.",
	}, s.handleListCalendarEvents)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get-calendar-view",
		Description: "List every event instance inside a time window, with recurring series expanded.",
	}, s.handleCalendarView)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create-calendar-event",
		Description: "Schedule a new event, inviting any attendees given.",
	}, s.handleCreateEvent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update-calendar-event",
		Description: "Change fields of an existing event. Attendees receive an updated invitation.",
	}, s.handleUpdateEvent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete-calendar-event",
		Description: "Delete an event. For meetings the organiser's deletion cancels it for every attendee.",
	}, s.handleDeleteEvent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "respond-to-calendar-event",
		Description: "Accept, decline or tentatively accept a meeting invitation.",
	}, s.handleRespondToEvent)
}

func (s *Server) handleListCalendars(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	calendars, err := s.calendar.ListCalendars(ctx)
	if err != nil {
		return nil, nil, err
	}

	return textResult(calendar.FormatCalendarList(calendars)), nil, nil
}

func (s *Server) handleListCalendarEvents(ctx context.Context, _ *mcp.CallToolRequest, in listCalendarEventsInput) (*mcp.CallToolResult, any, error) {
	events, err := s.calendar.ListEvents(ctx, in.CalendarID, in.Top)
	if err != nil {
		return nil, nil, err
	}

	return textResult(calendar.FormatEventList(events)), nil, nil
}

func (s *Server) handleCalendarView(ctx context.Context, _ *mcp.CallToolRequest, in calendarViewInput) (*mcp.CallToolResult, any, error) {
	start, err := parseTime(in.Start)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseTime(in.End)
	if err != nil {
		return nil, nil, err
	}

	events, err := s.calendar.CalendarView(ctx, calendar.ViewOptions{
		CalendarID: in.CalendarID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return nil, nil, err
	}

	return textResult(calendar.FormatEventList(events)), nil, nil
}

func (s *Server) handleCreateEvent(ctx context.Context, _ *mcp.CallToolRequest, in createEventInput) (*mcp.CallToolResult, any, error) {
	draft := &calendar.EventDraft{
		Subject:           in.Subject,
		Body:              in.Body,
		BodyType:          in.BodyType,
		Start:             in.Start,
		End:               in.End,
		TimeZone:          in.TimeZone,
		Location:          in.Location,
		Attendees:         in.Attendees,
		OptionalAttendees: in.OptionalAttendees,
		IsAllDay:          in.AllDay,
	}

	event, err := s.calendar.CreateEvent(ctx, in.CalendarID, draft)
	if err != nil {
		return nil, nil, err
	}

	return textResult("Event created.\n\n" + calendar.FormatEvent(event)), nil, nil
}

func (s *Server) handleUpdateEvent(ctx context.Context, _ *mcp.CallToolRequest, in updateEventInput) (*mcp.CallToolResult, any, error) {
	changes := &calendar.EventDraft{
		Subject:  in.Subject,
		Body:     in.Body,
		BodyType: in.BodyType,
		Start:    in.Start,
		End:      in.End,
		TimeZone: in.TimeZone,
		Location: in.Location,
	}

	event, err := s.calendar.UpdateEvent(ctx, in.EventID, changes)
	if err != nil {
		return nil, nil, err
	}

	return textResult("Event updated.\n\n" + calendar.FormatEvent(event)), nil, nil
}

func (s *Server) handleDeleteEvent(ctx context.Context, _ *mcp.CallToolRequest, in deleteEventInput) (*mcp.CallToolResult, any, error) {
	if err := s.calendar.DeleteEvent(ctx, in.EventID); err != nil {
		return nil, nil, err
	}

	return textResult("Event deleted."), nil, nil
}

func (s *Server) handleRespondToEvent(ctx context.Context, _ *mcp.CallToolRequest, in respondEventInput) (*mcp.CallToolResult, any, error) {
	send := true
	if in.SendResponse != nil {
		send = *in.SendResponse
	}

	if err := s.calendar.RespondToEvent(ctx, in.EventID, in.Response, in.Comment, send); err != nil {
		return nil, nil, err
	}

	return textResult(fmt.Sprintf("Invitation answered: %s.", in.Response)), nil, nil
}

// parseTime accepts RFC 3339 timestamps, naive date-times and plain dates.
func parseTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q: use RFC 3339 (2026-03-02T09:00:00Z) or a date (2026-03-02)", value)
}
