package mentions

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"
)

var statusIDRe = regexp.MustCompile(`/status/(\d+)`)

// NitterSource reads mentions from a Nitter instance's search RSS feed.
// It is read-only; replies still go through the Twitter client. Useful
// when the paid mention timeline is out of reach.
type NitterSource struct {
	instance string
	account  string // handle without the @
	client   *http.Client
	parser   *gofeed.Parser
}

func NewNitterSource(instance, account string) *NitterSource {
	return &NitterSource{
		instance: instance,
		account:  account,
		client:   &http.Client{Timeout: 15 * time.Second},
		parser:   gofeed.NewParser(),
	}
}

// RecentMentions fetches the search feed for @account and maps items to
// mentions. Items whose link carries no status id are skipped.
func (n *NitterSource) RecentMentions(ctx context.Context) ([]Mention, error) {
	feedURL := fmt.Sprintf("https://%s/search/rss?f=tweets&q=%s", n.instance, url.QueryEscape("@"+n.account))
	return n.fetch(ctx, feedURL)
}

func (n *NitterSource) fetch(ctx context.Context, feedURL string) ([]Mention, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "curl/8.0")
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nitter: HTTP %d", resp.StatusCode)
	}

	feed, err := n.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nitter: parse feed: %w", err)
	}

	mentionsOut := make([]Mention, 0, len(feed.Items))
	for _, item := range feed.Items {
		m := statusIDRe.FindStringSubmatch(item.Link)
		if m == nil {
			m = statusIDRe.FindStringSubmatch(item.GUID)
		}
		if m == nil {
			continue
		}

		createdAt := time.Now()
		if item.PublishedParsed != nil {
			createdAt = *item.PublishedParsed
		}
		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}

		mentionsOut = append(mentionsOut, Mention{
			ID:        m[1],
			AuthorID:  author,
			Text:      item.Title,
			CreatedAt: createdAt,
		})
		if len(mentionsOut) == maxMentionResults {
			break
		}
	}
	return mentionsOut, nil
}
