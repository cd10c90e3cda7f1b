package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	prodTokenURL    = "https://api.ebay.com/identity/v1/oauth2/token"
	sandboxTokenURL = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"

	browseScope = "https://api.ebay.com/oauth/api_scope"

	// Refresh this long before the reported expiry to avoid racing the
	// server-side clock.
	expirySafetyMargin = 60 * time.Second
)

// TokenSource holds an application access token obtained through the OAuth
// client-credentials grant and refreshes it lazily before expiry. The mutex
// keeps at most one refresh in flight; concurrent callers wait and reuse
// its result.
type TokenSource struct {
	clientID     string
	clientSecret string
	scopes       []string
	tokenURL     string
	httpClient   *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time // swapped in tests
}

func NewTokenSource(clientID, clientSecret string, sandbox bool) *TokenSource {
	tokenURL := prodTokenURL
	if sandbox {
		tokenURL = sandboxTokenURL
	}
	return &TokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		scopes:       []string{browseScope},
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
}

// Token returns a valid bearer token, refreshing when the held one is
// missing or expired. On failure the previous state is kept and the caller
// sees an *AuthError.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Before(ts.expiresAt) {
		return ts.token, nil
	}

	token, ttl, err := ts.exchange(ctx)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiresAt = ts.now().Add(ttl - expirySafetyMargin)
	return ts.token, nil
}

func (ts *TokenSource) exchange(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", strings.Join(ts.scopes, " "))

	req, err := http.NewRequestWithContext(ctx, "POST", ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, &AuthError{Message: err.Error()}
	}

	basic := base64.StdEncoding.EncodeToString([]byte(ts.clientID + ":" + ts.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", 0, &AuthError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &AuthError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, &AuthError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", 0, &AuthError{Status: resp.StatusCode, Message: "parsing token response: " + err.Error()}
	}
	if payload.AccessToken == "" {
		return "", 0, &AuthError{Status: resp.StatusCode, Message: "token response missing access_token"}
	}

	return payload.AccessToken, time.Duration(payload.ExpiresIn) * time.Second, nil
}
