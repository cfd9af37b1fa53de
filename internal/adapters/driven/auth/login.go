package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/outlook-mcp/internal/core/domain"
	"github.com/custodia-labs/outlook-mcp/internal/logger"
)

// ErrNoClientID indicates the app registration has not been configured.
var ErrNoClientID = errors.New("auth: no client id configured: run 'outlook-mcp configure' first")

// exchangeTimeout bounds the code-for-token exchange.
const exchangeTimeout = 30 * time.Second

// successPage is shown in the browser once sign-in completes.
const successPage = `<!DOCTYPE html>
<html>
<head><title>Signed in</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
<h2>Signed in</h2>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`

// callbackResult carries the authorisation code, or the failure, from the
// loopback handler back to the login flow.
type callbackResult struct {
	code string
	err  error
}

// Login runs the browser sign-in flow. It serves a one-shot loopback
// callback, hands the authorisation URL to promptURL for display, then
// exchanges the returned code for tokens and persists them. The flow uses
// PKCE, so it works for public clients without a secret.
func (p *Provider) Login(ctx context.Context, promptURL func(authURL string)) (*domain.OAuthToken, error) {
	if p.oauth.ClientID == "" {
		return nil, ErrNoClientID
	}

	// The port is fixed because the app registration whitelists the exact
	// redirect URI.
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p.redirectPort))
	if err != nil {
		return nil, fmt.Errorf("listen on callback port %d: %w", p.redirectPort, err)
	}

	state := uuid.New().String()
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		res := parseCallback(r, state)
		if res.err != nil {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, successPage)
		}
		select {
		case results <- res:
		default:
			// A stray second redirect; the first one already won.
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Debug("auth: callback server: %v", err)
		}
	}()
	defer server.Close()

	// Microsoft-specific: response_mode=query delivers the code as query
	// parameters for easier extraction.
	authURL := p.oauth.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("response_mode", "query"),
	)
	if promptURL != nil {
		promptURL(authURL)
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for sign-in: %w", ctx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	exchanged, err := p.oauth.Exchange(exchangeCtx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorisation code: %w", err)
	}

	token := &domain.OAuthToken{
		AccessToken:  exchanged.AccessToken,
		RefreshToken: exchanged.RefreshToken,
		TokenType:    exchanged.TokenType,
		Expiry:       exchanged.Expiry,
	}
	if err := p.store.SaveToken(p.account, token); err != nil {
		return nil, fmt.Errorf("persist credentials: %w", err)
	}

	p.mu.Lock()
	p.current = token
	p.mu.Unlock()

	logger.Debug("auth: signed in account %q", p.account)

	return token, nil
}

// parseCallback validates the redirect request and extracts the
// authorisation code.
func parseCallback(r *http.Request, wantState string) callbackResult {
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = "authorisation was denied"
		}
		return callbackResult{err: fmt.Errorf("sign-in failed: %s: %s", errCode, desc)}
	}
	if q.Get("state") != wantState {
		return callbackResult{err: errors.New("sign-in failed: state mismatch")}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: errors.New("sign-in failed: no authorisation code in callback")}
	}

	return callbackResult{code: code}
}
