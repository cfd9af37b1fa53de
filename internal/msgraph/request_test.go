package msgraph

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL_QueryShape(t *testing.T) {
	c := NewClient(ClientConfig{BaseURL: "https://graph.test/v1.0"}, nil)

	tests := []struct {
		name       string
		path       string
		opts       *RequestOptions
		wantParams map[string]string
	}{
		{
			name:       "no options",
			path:       "/me/messages",
			opts:       nil,
			wantParams: map[string]string{},
		},
		{
			name:       "empty options",
			path:       "/me/messages",
			opts:       &RequestOptions{},
			wantParams: map[string]string{},
		},
		{
			name:       "select only",
			path:       "/me/messages",
			opts:       &RequestOptions{Select: []string{"id", "subject"}},
			wantParams: map[string]string{"$select": "id,subject"},
		},
		{
			name:       "top only",
			path:       "/me/messages",
			opts:       &RequestOptions{Top: 25},
			wantParams: map[string]string{"$top": "25"},
		},
		{
			name:       "filter only",
			path:       "/me/messages",
			opts:       &RequestOptions{Filter: "isRead eq false"},
			wantParams: map[string]string{"$filter": "isRead eq false"},
		},
		{
			name:       "orderby only",
			path:       "/me/messages",
			opts:       &RequestOptions{OrderBy: "receivedDateTime desc"},
			wantParams: map[string]string{"$orderby": "receivedDateTime desc"},
		},
		{
			name:       "expand only",
			path:       "/me/events",
			opts:       &RequestOptions{Expand: "attachments"},
			wantParams: map[string]string{"$expand": "attachments"},
		},
		{
			name:       "search is quoted",
			path:       "/me/messages",
			opts:       &RequestOptions{Search: "quarterly report"},
			wantParams: map[string]string{"$search": `"quarterly report"`},
		},
		{
			name:       "pre-quoted search untouched",
			path:       "/me/messages",
			opts:       &RequestOptions{Search: `"from:bob"`},
			wantParams: map[string]string{"$search": `"from:bob"`},
		},
		{
			name: "all options",
			path: "/me/mailFolders/inbox/messages",
			opts: &RequestOptions{
				Select:  []string{"id"},
				Top:     10,
				Filter:  "hasAttachments eq true",
				OrderBy: "receivedDateTime desc",
				Expand:  "attachments",
				Search:  "invoice",
			},
			wantParams: map[string]string{
				"$select":  "id",
				"$top":     "10",
				"$filter":  "hasAttachments eq true",
				"$orderby": "receivedDateTime desc",
				"$expand":  "attachments",
				"$search":  `"invoice"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.buildURL(tt.path, tt.opts)

			u, err := url.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, tt.path, u.Path[len("/v1.0"):], "resource path must be preserved")

			q := u.Query()
			assert.Len(t, q, len(tt.wantParams), "unset options must be omitted")
			for key, want := range tt.wantParams {
				assert.Equal(t, want, q.Get(key))
			}
		})
	}
}

func TestBuildURL_PathJoining(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		path    string
		want    string
	}{
		{
			name:    "leading slash",
			baseURL: "https://graph.test/v1.0",
			path:    "/me",
			want:    "https://graph.test/v1.0/me",
		},
		{
			name:    "no leading slash",
			baseURL: "https://graph.test/v1.0",
			path:    "me",
			want:    "https://graph.test/v1.0/me",
		},
		{
			name:    "trailing slash on base",
			baseURL: "https://graph.test/v1.0/",
			path:    "/me",
			want:    "https://graph.test/v1.0/me",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(ClientConfig{BaseURL: tt.baseURL}, nil)
			assert.Equal(t, tt.want, c.buildURL(tt.path, nil))
		})
	}
}

func TestQuoteSearch(t *testing.T) {
	assert.Equal(t, `"pizza"`, quoteSearch("pizza"))
	assert.Equal(t, `"pizza"`, quoteSearch(`"pizza"`))
	assert.Equal(t, `""`, quoteSearch(""))
}

func TestBuildURL_PathWithEmbeddedQuery(t *testing.T) {
	c := NewClient(ClientConfig{BaseURL: "https://graph.test/v1.0"}, nil)

	got := c.buildURL("/me/calendarView?startDateTime=2026-01-01T00:00:00Z", &RequestOptions{Top: 10})

	assert.Equal(t, "https://graph.test/v1.0/me/calendarView?startDateTime=2026-01-01T00:00:00Z&%24top=10", got)
}
