package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventListBody = `{"value":[
	{"id":"e1","subject":"Planning","start":{"dateTime":"2026-03-02T09:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2026-03-02T10:00:00.0000000","timeZone":"UTC"},"organizer":{"emailAddress":{"name":"Grace","address":"grace@contoso.com"}}}
]}`

func TestHandleListCalendars(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/calendars", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[{"id":"c1","name":"Calendar","isDefaultCalendar":true,"canEdit":true}]}`)
	}))

	res, _, err := s.handleListCalendars(context.Background(), nil, emptyInput{})
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "Calendar")
	assert.Contains(t, text, "default")
}

func TestHandleListCalendarEvents(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/events", r.URL.Path)
		assert.Equal(t, `outlook.timezone="UTC"`, r.Header.Get("Prefer"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, eventListBody)
	}))

	res, _, err := s.handleListCalendarEvents(context.Background(), nil, listCalendarEventsInput{})
	require.NoError(t, err)

	assert.Contains(t, resultText(t, res), "Planning")
}

func TestHandleCalendarView(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/calendarView", r.URL.Path)
		assert.Equal(t, "2026-03-02T00:00:00Z", r.URL.Query().Get("startDateTime"))
		assert.Equal(t, "2026-03-09T00:00:00Z", r.URL.Query().Get("endDateTime"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, eventListBody)
	}))

	res, _, err := s.handleCalendarView(context.Background(), nil, calendarViewInput{
		Start: "2026-03-02",
		End:   "2026-03-09T00:00:00Z",
	})
	require.NoError(t, err)

	assert.Contains(t, resultText(t, res), "Planning")
}

func TestHandleCalendarView_RejectsUnparseableTimes(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())

	_, _, err := s.handleCalendarView(context.Background(), nil, calendarViewInput{
		Start: "next tuesday",
		End:   "2026-03-09",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unrecognised time "next tuesday"`)
}

func TestHandleCreateEvent(t *testing.T) {
	var payload map[string]any
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/events", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"e-new","subject":"Planning","start":{"dateTime":"2026-03-02T09:00:00.0000000","timeZone":"Europe/London"},"end":{"dateTime":"2026-03-02T10:00:00.0000000","timeZone":"Europe/London"}}`)
	}))

	res, _, err := s.handleCreateEvent(context.Background(), nil, createEventInput{
		Subject:   "Planning",
		Start:     "2026-03-02T09:00:00",
		End:       "2026-03-02T10:00:00",
		TimeZone:  "Europe/London",
		Attendees: []string{"grace@contoso.com"},
	})
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "Event created.")
	assert.Contains(t, text, "Event ID: e-new")

	assert.Equal(t, "Planning", payload["subject"])
	start, ok := payload["start"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Europe/London", start["timeZone"])
}

func TestHandleUpdateEvent(t *testing.T) {
	var payload map[string]any
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/events/e1", r.URL.Path)
		assert.Equal(t, http.MethodPatch, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"e1","subject":"Planning (moved)","start":{"dateTime":"2026-03-03T09:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2026-03-03T10:00:00.0000000","timeZone":"UTC"}}`)
	}))

	res, _, err := s.handleUpdateEvent(context.Background(), nil, updateEventInput{
		EventID: "e1",
		Subject: "Planning (moved)",
	})
	require.NoError(t, err)

	assert.Contains(t, resultText(t, res), "Event updated.")
	assert.Equal(t, "Planning (moved)", payload["subject"])
	assert.NotContains(t, payload, "start", "unset fields must not be patched")
}

func TestHandleDeleteEvent(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/events/e1", r.URL.Path)
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	res, _, err := s.handleDeleteEvent(context.Background(), nil, deleteEventInput{EventID: "e1"})
	require.NoError(t, err)

	assert.Equal(t, "Event deleted.", resultText(t, res))
}

func TestHandleRespondToEvent(t *testing.T) {
	var payload map[string]any
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/events/e1/accept", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))
		w.WriteHeader(http.StatusAccepted)
	}))

	res, _, err := s.handleRespondToEvent(context.Background(), nil, respondEventInput{
		EventID:  "e1",
		Response: "accept",
		Comment:  "See you there",
	})
	require.NoError(t, err)

	assert.Equal(t, "Invitation answered: accept.", resultText(t, res))
	assert.Equal(t, true, payload["sendResponse"], "the organiser is notified unless opted out")
	assert.Equal(t, "See you there", payload["comment"])
}

func TestHandleRespondToEvent_SilentDecline(t *testing.T) {
	var payload map[string]any
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/events/e1/decline", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))
		w.WriteHeader(http.StatusAccepted)
	}))

	_, _, err := s.handleRespondToEvent(context.Background(), nil, respondEventInput{
		EventID:      "e1",
		Response:     "decline",
		SendResponse: boolPtr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, false, payload["sendResponse"])
	assert.NotContains(t, payload, "comment")
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "rfc 3339 with offset",
			value: "2026-03-02T09:00:00+01:00",
			want:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.FixedZone("", 3600)),
		},
		{
			name:  "naive date-time",
			value: "2026-03-02T09:00:00",
			want:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "plain date",
			value: "2026-03-02",
			want:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "prose is rejected",
			value:   "next tuesday",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTime(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}
