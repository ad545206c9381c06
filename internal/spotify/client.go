// Package spotify talks to the music provider's Web API.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/starford/folio/internal/apperr"
)

// Provider endpoints.
const (
	AuthURL    = "https://accounts.spotify.com/authorize"
	TokenURL   = "https://accounts.spotify.com/api/token"
	APIBaseURL = "https://api.spotify.com/v1"
)

// Scopes requested at sign-in.
var Scopes = []string{"user-read-recently-played"}

// Endpoint returns the OAuth endpoint, honouring overrides for tests and
// proxies. Empty arguments select the provider defaults.
func Endpoint(authURL, tokenURL string) oauth2.Endpoint {
	if authURL == "" {
		authURL = AuthURL
	}
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	return oauth2.Endpoint{
		AuthURL:   authURL,
		TokenURL:  tokenURL,
		AuthStyle: oauth2.AuthStyleInHeader,
	}
}

// MaxLimit is the provider's page size cap for recently played tracks.
const MaxLimit = 50

// Client fetches listening history with a caller-supplied bearer token.
type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient returns a client. An empty baseURL selects APIBaseURL and a nil
// hc a client with a 10s timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = APIBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, hc: hc}
}

// RecentlyPlayed returns the provider's track-history JSON verbatim. A
// non-2xx answer is reported as *apperr.UpstreamError.
func (c *Client) RecentlyPlayed(ctx context.Context, accessToken string, limit int) (json.RawMessage, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/player/recently-played?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("spotify: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify: recently played: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("spotify: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperr.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("spotify: recently played: invalid JSON body")
	}
	return json.RawMessage(body), nil
}
