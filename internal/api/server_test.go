package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safememefi/riskscan/internal/health"
)

type fakePoster struct {
	id   string
	err  error
	last string
}

func (f *fakePoster) Post(_ context.Context, text string) (string, error) {
	f.last = text
	return f.id, f.err
}

func postTweet(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/tweet", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestTweetSuccess(t *testing.T) {
	fp := &fakePoster{id: "1901"}
	s := NewServer(fp, health.New(nil, nil, nil))

	rec := postTweet(t, s, `{"tweetText":"hello world"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tweetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "1901", resp.TweetID)
	require.Contains(t, resp.TweetURL, "1901")
	require.Equal(t, "hello world", fp.last)
}

func TestTweetEmptyRejected(t *testing.T) {
	s := NewServer(&fakePoster{}, health.New(nil, nil, nil))

	rec := postTweet(t, s, `{"tweetText":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp tweetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Error)
}

func TestTweetTooLongRejected(t *testing.T) {
	fp := &fakePoster{}
	s := NewServer(fp, health.New(nil, nil, nil))

	long := strings.Repeat("x", 281)
	rec := postTweet(t, s, `{"tweetText":"`+long+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, fp.last, "poster must not be called for oversized text")
}

func TestTweetUpstreamError(t *testing.T) {
	fp := &fakePoster{err: errors.New("duplicate content")}
	s := NewServer(fp, health.New(nil, nil, nil))

	rec := postTweet(t, s, `{"tweetText":"gm"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp tweetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "duplicate content")
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(&fakePoster{}, health.New(nil, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "generated_at")
	require.Contains(t, body, "seen_mentions")
}
