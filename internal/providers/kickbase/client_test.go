package kickbase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/kickbase-collector/internal/providers"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     header,
	}
}

func newTestClient(rt roundTripperFunc) *Client {
	return NewClient(Config{
		BaseURL:    "https://api.example.com/v4/",
		Token:      "secret",
		LeagueID:   "99",
		HTTPClient: &http.Client{Transport: rt},
	})
}

func TestFetchPlayerBuildsRequestAndReturnsBodyVerbatim(t *testing.T) {
	const body = `{"i":"42","fn":"Max","ln":"Muster","tp":118}`
	var captured *http.Request
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		return respond(http.StatusOK, body, nil), nil
	})

	doc, err := client.FetchPlayer(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, body, string(doc))

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "/v4/competitions/1/players/42", captured.URL.Path)
	assert.Equal(t, "99", captured.URL.Query().Get("leagueId"))
	assert.Equal(t, "Bearer secret", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Accept"))
	assert.NotEmpty(t, captured.Header.Get("User-Agent"))
}

func TestFetchPlayerDayUsesPlayercenterEndpoint(t *testing.T) {
	var captured *http.Request
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		return respond(http.StatusOK, `{"events":[]}`, nil), nil
	})

	_, err := client.FetchPlayerDay(context.Background(), "7", 12)
	require.NoError(t, err)
	assert.Equal(t, "/v4/competitions/1/playercenter/7", captured.URL.Path)
	assert.Equal(t, "12", captured.URL.Query().Get("dayNumber"))
}

func TestFetchPlayerClassifiesStatuses(t *testing.T) {
	cases := []struct {
		name   string
		status int
		header http.Header
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.True(t, providers.IsAuth(err))
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var authErr *providers.AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, http.StatusForbidden, authErr.StatusCode)
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			header: http.Header{"Retry-After": []string{"90"}},
			check: func(t *testing.T, err error) {
				rl, ok := providers.AsRateLimitError(err)
				require.True(t, ok)
				assert.Equal(t, 90*time.Second, rl.RetryAfter)
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var te *providers.TransientError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, http.StatusBadGateway, te.StatusCode)
				assert.ErrorIs(t, err, providers.ErrNoResult)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				return respond(tc.status, "nope", tc.header), nil
			})
			_, err := client.FetchPlayer(context.Background(), "1")
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestFetchPlayerRejectsMalformedBody(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "<html>", nil), nil
	})

	_, err := client.FetchPlayer(context.Background(), "1")
	assert.ErrorIs(t, err, providers.ErrNoResult)
	assert.Contains(t, err.Error(), "malformed")
}

func TestFetchPlayerWrapsNetworkErrors(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: timeout")
	})

	_, err := client.FetchPlayer(context.Background(), "1")
	var te *providers.TransientError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "player 1", te.Target)
}

func TestFetchPlayerReturnsContextErrorWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		cancel()
		return nil, req.Context().Err()
	})

	_, err := client.FetchPlayer(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoginPostsCredentialsAndParsesToken(t *testing.T) {
	var sent loginRequest
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/v4/user/login", req.URL.Path)
		assert.Empty(t, req.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&sent))
		return respond(http.StatusOK, `{"tkn":"fresh","tknex":"2026-11-01T10:00:00Z"}`, nil), nil
	})

	res, err := client.Login(context.Background(), "me@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", res.Token)
	assert.Equal(t, time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC), res.ExpiresAt)

	assert.Equal(t, "me@example.com", sent.Email)
	assert.Equal(t, "pw", sent.Password)
	assert.True(t, sent.Ext)
	assert.False(t, sent.Loy)
	assert.NotNil(t, sent.Rep)
}

func TestLoginFailuresAreAuthErrors(t *testing.T) {
	cases := map[string]*http.Response{
		"rejected": respond(http.StatusUnauthorized, `{"err":"bad"}`, nil),
		"no token": respond(http.StatusOK, `{"tknex":"2026-11-01T10:00:00Z"}`, nil),
		"bad json": respond(http.StatusOK, `oops`, nil),
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				return resp, nil
			})
			_, err := client.Login(context.Background(), "me@example.com", "pw")
			assert.True(t, providers.IsAuth(err), "got %v", err)
		})
	}
}

func TestWithTokenReturnsIndependentCopy(t *testing.T) {
	base := NewClient(Config{})
	authed := base.WithToken(" abc ")
	assert.Empty(t, base.token)
	assert.Equal(t, "abc", authed.token)
	assert.Equal(t, defaultBaseURL, authed.baseURL)
	assert.Equal(t, defaultCompetition, authed.competitionID)
}
