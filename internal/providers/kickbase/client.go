package kickbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/kickbase-collector/internal/providers"
)

// Config controls how the Kickbase client reaches the upstream API.
type Config struct {
	BaseURL       string
	Token         string
	LeagueID      string
	CompetitionID string
	UserAgent     string
	HTTPClient    *http.Client
	Timeout       time.Duration
}

var _ providers.Source = (*Client)(nil)

// Client issues one request per player or player-day and returns the
// upstream document untouched.
type Client struct {
	baseURL       string
	token         string
	leagueID      string
	competitionID string
	userAgent     string
	httpClient    httpDoer
	now           func() time.Time
}

// NewClient constructs a Kickbase client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:       normalizeBaseURL(cfg.BaseURL),
		token:         strings.TrimSpace(cfg.Token),
		leagueID:      strings.TrimSpace(cfg.LeagueID),
		competitionID: orDefault(cfg.CompetitionID, defaultCompetition),
		userAgent:     orDefault(cfg.UserAgent, defaultUserAgent),
		httpClient:    resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		now:           time.Now,
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// FetchPlayer retrieves the detail document for one player.
func (c *Client) FetchPlayer(ctx context.Context, playerID string) (json.RawMessage, error) {
	path := fmt.Sprintf("/competitions/%s/players/%s", url.PathEscape(c.competitionID), url.PathEscape(playerID))
	q := url.Values{}
	if c.leagueID != "" {
		q.Set("leagueId", c.leagueID)
	}
	return c.getJSON(ctx, "player "+playerID, path, q)
}

// FetchPlayerDay retrieves the event document for one player on one match day.
func (c *Client) FetchPlayerDay(ctx context.Context, playerID string, day int) (json.RawMessage, error) {
	path := fmt.Sprintf("/competitions/%s/playercenter/%s", url.PathEscape(c.competitionID), url.PathEscape(playerID))
	q := url.Values{}
	q.Set("dayNumber", strconv.Itoa(day))
	return c.getJSON(ctx, fmt.Sprintf("player %s day %d", playerID, day), path, q)
}

// Login exchanges an email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload, err := json.Marshal(loginRequest{
		Email:    email,
		Password: password,
		Ext:      true,
		Loy:      false,
		Rep:      map[string]any{},
	})
	if err != nil {
		return LoginResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/login", bytes.NewReader(payload))
	if err != nil {
		return LoginResult{}, err
	}
	c.setHeaders(req, false)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("kickbase login: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return LoginResult{}, fmt.Errorf("kickbase login: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return LoginResult{}, &providers.AuthError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    "login rejected: " + snippet(body),
		}
	}

	var out loginResponse
	if err := json.Unmarshal(body, &out); err != nil || strings.TrimSpace(out.Token) == "" {
		return LoginResult{}, &providers.AuthError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    "login response carried no token",
		}
	}
	return LoginResult{Token: out.Token, ExpiresAt: parseExpiry(out.ExpiresAt)}, nil
}

func (c *Client) getJSON(ctx context.Context, target, path string, q url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &providers.TransientError{Target: target, Err: err}
	}
	if len(q) > 0 {
		req.URL.RawQuery = q.Encode()
	}
	c.setHeaders(req, true)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &providers.TransientError{Target: target, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err := c.classify(target, resp, body); err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, &providers.TransientError{Target: target, StatusCode: resp.StatusCode, Err: readErr}
	}
	if !json.Valid(body) {
		return nil, &providers.TransientError{
			Target:     target,
			StatusCode: resp.StatusCode,
			Err:        errors.New("malformed response body"),
		}
	}
	return json.RawMessage(body), nil
}

// classify maps non-2xx statuses onto the provider error taxonomy.
func (c *Client) classify(target string, resp *http.Response, body []byte) error {
	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &providers.AuthError{Provider: providerName, StatusCode: code, Message: snippet(body)}
	case code == http.StatusTooManyRequests:
		return &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: code,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
		}
	default:
		return &providers.TransientError{
			Target:     target,
			StatusCode: code,
			Err:        fmt.Errorf("unexpected status: %s", snippet(body)),
		}
	}
}

func (c *Client) setHeaders(req *http.Request, authenticated bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if authenticated && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func snippet(body []byte) string {
	if len(body) > errorSnippetBytes {
		body = body[:errorSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}
