package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	token string
	err   error
}

func (m *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

func (m *mockTokenProvider) IsAuthenticated() bool {
	return m.err == nil && m.token != ""
}

// newTestClient points a client with fast retry and admission settings at
// a test server.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := ClientConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 5 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     50 * time.Millisecond,
		},
		Admission: AdmissionConfig{
			MaxConcurrent: 4,
			Window:        time.Minute,
			PollInterval:  time.Millisecond,
		},
		Rate: RateConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	return NewClient(cfg, &mockTokenProvider{token: "test-token"})
}

func TestClient_MakeRequest_AttachesStandardHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "true", r.Header.Get("return-client-request-id"))

		_, err := uuid.Parse(r.Header.Get("client-request-id"))
		assert.NoError(t, err, "correlation id must be a UUID")

		fmt.Fprint(w, `{"id":"msg-1"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	raw, err := c.MakeRequest(context.Background(), "/me/messages/msg-1", nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"msg-1"}`, string(raw), "the body passes through unreshaped")
}

func TestClient_VerbDispatch(t *testing.T) {
	type call func(c *Client, ctx context.Context) (json.RawMessage, error)

	tests := []struct {
		name       string
		call       call
		wantMethod string
		wantBody   string
	}{
		{
			name: "get",
			call: func(c *Client, ctx context.Context) (json.RawMessage, error) {
				return c.MakeRequest(ctx, "/me", nil)
			},
			wantMethod: http.MethodGet,
		},
		{
			name: "post",
			call: func(c *Client, ctx context.Context) (json.RawMessage, error) {
				return c.PostWithRetry(ctx, "/me/sendMail", map[string]string{"k": "v"})
			},
			wantMethod: http.MethodPost,
			wantBody:   `{"k":"v"}`,
		},
		{
			name: "patch",
			call: func(c *Client, ctx context.Context) (json.RawMessage, error) {
				return c.PatchWithRetry(ctx, "/me/messages/1", map[string]bool{"isRead": true})
			},
			wantMethod: http.MethodPatch,
			wantBody:   `{"isRead":true}`,
		},
		{
			name: "put",
			call: func(c *Client, ctx context.Context) (json.RawMessage, error) {
				return c.PutWithRetry(ctx, "/me/mailboxSettings", map[string]string{"timeZone": "UTC"})
			},
			wantMethod: http.MethodPut,
			wantBody:   `{"timeZone":"UTC"}`,
		},
		{
			name: "delete",
			call: func(c *Client, ctx context.Context) (json.RawMessage, error) {
				return c.DeleteWithRetry(ctx, "/me/messages/1")
			},
			wantMethod: http.MethodDelete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotContentType string
			var gotBody []byte

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotContentType = r.Header.Get("Content-Type")
				gotBody, _ = io.ReadAll(r.Body)
				fmt.Fprint(w, `{}`)
			}))
			defer srv.Close()

			c := newTestClient(t, srv)

			_, err := tt.call(c, context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, gotMethod)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, string(gotBody))
				assert.Equal(t, "application/json", gotContentType)
			} else {
				assert.Empty(t, gotBody)
			}
		})
	}
}

func TestClient_AdmissionHeldAcrossRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	_, err := c.MakeRequest(context.Background(), "/me", nil)

	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits), "the throttled attempt must be retried")
	assert.Equal(t, 1, c.Admission().RecentRequests(),
		"admission is acquired once per logical call, not per attempt")
	assert.Equal(t, 0, c.Admission().Active())
}

func TestClient_SlotReleasedOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind error
	}{
		{name: "classified client error", status: http.StatusNotFound, wantKind: ErrNotFound},
		{name: "retries exhausted", status: http.StatusInternalServerError, wantKind: ErrRetriesExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := newTestClient(t, srv)

			_, err := c.MakeRequest(context.Background(), "/me/messages/gone", nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, 0, c.Admission().Active(),
				"the admission slot must come back on every exit path")
		})
	}
}

func TestClient_ClassifiesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":"InvalidAuthenticationToken","message":"Access token has expired."}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	_, err := c.MakeRequest(context.Background(), "/me", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthExpired)

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusUnauthorized, ge.StatusCode)
	assert.Equal(t, "InvalidAuthenticationToken", ge.Code)
	assert.NotEmpty(t, ge.CorrelationID)
	assert.False(t, ge.Timestamp.IsZero())
}

func TestClient_ExhaustionCarriesDiagnostics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	_, err := c.MakeRequest(context.Background(), "/me", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.NotEmpty(t, ge.CorrelationID, "even terminal retry failures carry a correlation id")
	assert.False(t, ge.Timestamp.IsZero())
}

func TestClient_ConcurrencyBoundedByAdmission(t *testing.T) {
	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(25 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	cfg := ClientConfig{
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		Retry:     RetryConfig{MaxAttempts: 1, InitialDelay: time.Millisecond, Multiplier: 2.0, MaxDelay: time.Millisecond},
		Admission: AdmissionConfig{MaxConcurrent: 2, Window: time.Minute, PollInterval: time.Millisecond},
		Rate:      RateConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	c := NewClient(cfg, &mockTokenProvider{token: "test-token"})

	const calls = 8
	errs := make(chan error, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.MakeRequest(context.Background(), "/me/messages", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2, "no more than the admission ceiling may reach the transport at once")
	assert.Equal(t, 0, c.Admission().Active())
}

func TestClient_TokenFailureStopsBeforeDispatch(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	cfg := ClientConfig{BaseURL: srv.URL}
	c := NewClient(cfg, &mockTokenProvider{err: assert.AnError})

	_, err := c.MakeRequest(context.Background(), "/me", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, atomic.LoadInt32(&hits), "no request may leave without a token")
	assert.Equal(t, 0, c.Admission().Active())
}

func TestClient_ThrottleHintSharedAcrossCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := ClientConfig{
		BaseURL:   srv.URL,
		Retry:     RetryConfig{MaxAttempts: 1, InitialDelay: time.Millisecond, Multiplier: 2.0, MaxDelay: time.Millisecond},
		Admission: AdmissionConfig{MaxConcurrent: 4, Window: time.Minute, PollInterval: time.Millisecond},
		Rate:      RateConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	c := NewClient(cfg, &mockTokenProvider{token: "test-token"})

	_, err := c.MakeRequest(context.Background(), "/me", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.False(t, c.limiter.Allow(),
		"the server's backoff hint must hold back subsequent logical calls")
}

func TestClient_PreferHeaderOptIn(t *testing.T) {
	var gotPrefer []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = append(gotPrefer, r.Header.Get("Prefer"))
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.MakeRequest(ctx, "/me/calendarView", &RequestOptions{Prefer: `outlook.timezone="UTC"`})
	require.NoError(t, err)

	_, err = c.MakeRequest(ctx, "/me/messages", nil)
	require.NoError(t, err)

	require.Len(t, gotPrefer, 2)
	assert.Equal(t, `outlook.timezone="UTC"`, gotPrefer[0])
	assert.Empty(t, gotPrefer[1], "requests without a preference must not send the header")
}

func TestClient_GetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "id,displayName,mail,userPrincipalName", r.URL.Query().Get("$select"))
		fmt.Fprint(w, `{"id":"u1","displayName":"Ada Lovelace","mail":"ada@example.com","userPrincipalName":"ada@tenant.example"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	user, err := c.GetMe(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Ada Lovelace", user.DisplayName)
	assert.Equal(t, "ada@example.com", user.Email())
}

func TestUser_EmailFallsBackToPrincipalName(t *testing.T) {
	u := &User{UserPrincipalName: "ada@tenant.example"}
	assert.Equal(t, "ada@tenant.example", u.Email())

	u.Mail = "ada@example.com"
	assert.Equal(t, "ada@example.com", u.Email())
}
