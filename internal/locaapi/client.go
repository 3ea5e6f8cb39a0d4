// Package locaapi implements the HTTP session against the Loca service:
// a credential login that yields a session cookie, and the authenticated
// asset status fetch. Retry policy lives in the coordinator, not here.
package locaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	loginPath       = "/apilogin"
	assetStatusPath = "/assetstatuslist"

	sessionCookieName = "sid"
)

type Client struct {
	baseURL  string
	account  string
	password string
	httpc    *http.Client
	log      zerolog.Logger

	mu  sync.Mutex
	sid string
}

// buildBaseURL normalizes a configured endpoint to an URL with a scheme and
// no trailing slash.
func buildBaseURL(endpoint string) string {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	return strings.TrimRight(endpoint, "/")
}

func New(endpoint string, account string, password string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  buildBaseURL(endpoint),
		account:  account,
		password: password,
		httpc:    new(http.Client),
		log:      log.With().Str("component", "locaapi").Logger(),
	}
}

// Login posts the credentials and stores the session cookie from the
// response. A 401/403 or a 2xx response without the cookie fails with
// ErrAuth.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("account", c.account)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return classifyTransportErr(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: login returned status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			c.mu.Lock()
			c.sid = cookie.Value
			c.mu.Unlock()
			c.log.Debug().Msg("authenticated, session cookie stored")
			return nil
		}
	}

	return fmt.Errorf("%w: no session cookie in login response", ErrAuth)
}

// AssetStatuses fetches the asset status list with the current session.
// It fails with ErrAuth when no session is held or the service rejected it;
// the caller re-authenticates and retries. Array elements are returned raw
// so that a single malformed record never poisons the batch.
func (c *Client) AssetStatuses(ctx context.Context) ([]json.RawMessage, error) {
	c.mu.Lock()
	sid := c.sid
	c.mu.Unlock()

	if sid == "" {
		return nil, fmt.Errorf("%w: no active session", ErrAuth)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+assetStatusPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sid})

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.mu.Lock()
		c.sid = ""
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: session rejected with status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		if retryAfter != "" {
			return nil, fmt.Errorf("%w: retry after %s", ErrRateLimit, retryAfter)
		}
		return nil, fmt.Errorf("%w: status %d", ErrRateLimit, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("asset status request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	entries := make([]json.RawMessage, 0)
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parse asset status response: %w", err)
	}

	c.log.Debug().Int("entries", len(entries)).Msg("fetched asset statuses")

	return entries, nil
}

// Close releases the underlying connection pool. Idempotent.
func (c *Client) Close() {
	c.httpc.CloseIdleConnections()
}
