package mentions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const nitterFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Search results for: @safememefi</title>
<item>
  <title>@safememefi check EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v</title>
  <dc:creator xmlns:dc="http://purl.org/dc/elements/1.1/">@degenuser</dc:creator>
  <guid>https://nitter.example/degenuser/status/1944726729622462464#m</guid>
  <link>https://nitter.example/degenuser/status/1944726729622462464#m</link>
  <pubDate>Thu, 28 Aug 2026 10:00:00 GMT</pubDate>
</item>
<item>
  <title>no status id here</title>
  <guid>urn:uuid:not-a-tweet</guid>
  <link>https://nitter.example/about</link>
</item>
</channel>
</rss>`

func TestNitterRecentMentions(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(nitterFeed))
	}))
	defer srv.Close()

	// httptest serves plain http, so drive fetch with an explicit URL.
	src := NewNitterSource(strings.TrimPrefix(srv.URL, "http://"), "safememefi")
	src.client = srv.Client()

	mentionsGot, err := src.fetch(context.Background(), srv.URL+"/search/rss?f=tweets&q="+url.QueryEscape("@safememefi"))
	require.NoError(t, err)
	require.Len(t, mentionsGot, 1, "items without a status id are skipped")

	m := mentionsGot[0]
	require.Equal(t, "1944726729622462464", m.ID)
	require.Contains(t, m.Text, "EPjFWdd5")
	require.Equal(t, "@degenuser", m.AuthorID)
	require.Equal(t, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC), m.CreatedAt.UTC())

	require.Equal(t, "@safememefi", gotQuery.Get("q"))
	require.Equal(t, "tweets", gotQuery.Get("f"))
}
