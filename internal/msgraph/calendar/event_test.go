package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDraftPayload(t *testing.T) {
	draft := &EventDraft{
		Subject:   "Planning",
		Body:      "<p>Agenda</p>",
		BodyType:  "html",
		Start:     "2026-03-02T14:00:00",
		End:       "2026-03-02T15:00:00",
		Attendees: []string{"ada@example.com", " ", ""},
		IsAllDay:  false,
	}

	payload, err := draft.payload()

	require.NoError(t, err)
	assert.Equal(t, "Planning", payload["subject"])

	body, ok := payload["body"].(EventBody)
	require.True(t, ok)
	assert.Equal(t, "HTML", body.ContentType)

	start, ok := payload["start"].(DateTimeZone)
	require.True(t, ok)
	assert.Equal(t, "2026-03-02T14:00:00", start.DateTime)
	assert.Equal(t, "UTC", start.TimeZone, "time zone defaults to UTC")

	attendees, ok := payload["attendees"].([]Attendee)
	require.True(t, ok)
	require.Len(t, attendees, 1, "blank addresses are dropped")
	assert.Equal(t, "required", attendees[0].Type)

	assert.NotContains(t, payload, "location")
	assert.NotContains(t, payload, "isAllDay")
}

func TestEventDraftPayload_RequiresTimes(t *testing.T) {
	tests := []struct {
		name  string
		draft EventDraft
	}{
		{name: "no times", draft: EventDraft{Subject: "x"}},
		{name: "start only", draft: EventDraft{Start: "2026-03-02T14:00:00"}},
		{name: "end only", draft: EventDraft{End: "2026-03-02T15:00:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.draft.payload()

			assert.ErrorIs(t, err, ErrMissingTimes)
		})
	}
}

func TestEventDraftPayload_AllDay(t *testing.T) {
	draft := &EventDraft{
		Subject:  "Offsite",
		Start:    "2026-03-02T00:00:00",
		End:      "2026-03-03T00:00:00",
		IsAllDay: true,
	}

	payload, err := draft.payload()

	require.NoError(t, err)
	assert.Equal(t, true, payload["isAllDay"])
}

func TestEventDraftPatchBody(t *testing.T) {
	draft := &EventDraft{Location: "Room 9"}

	body, err := draft.patchBody()

	require.NoError(t, err)
	require.Len(t, body, 1)

	location, ok := body["location"].(Location)
	require.True(t, ok)
	assert.Equal(t, "Room 9", location.DisplayName)
}

func TestEventDraftPatchBody_Empty(t *testing.T) {
	draft := &EventDraft{}

	_, err := draft.patchBody()

	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestEventDraftZonedTime(t *testing.T) {
	draft := &EventDraft{TimeZone: "Europe/London"}

	dtz := draft.zonedTime("2026-03-02T14:00:00")

	assert.Equal(t, "2026-03-02T14:00:00", dtz.DateTime)
	assert.Equal(t, "Europe/London", dtz.TimeZone)
}

func TestAttendeeList_OrdersRequiredFirst(t *testing.T) {
	draft := &EventDraft{
		Attendees:         []string{"ada@example.com"},
		OptionalAttendees: []string{"grace@example.com"},
	}

	attendees := draft.attendeeList()

	require.Len(t, attendees, 2)
	assert.Equal(t, "required", attendees[0].Type)
	assert.Equal(t, "ada@example.com", attendees[0].EmailAddress.Address)
	assert.Equal(t, "optional", attendees[1].Type)
}

func TestAttendeeList_EmptyIsNil(t *testing.T) {
	draft := &EventDraft{Attendees: []string{"  "}}

	assert.Nil(t, draft.attendeeList())
}
