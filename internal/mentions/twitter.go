package mentions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxMentionResults matches the free-tier page size.
const maxMentionResults = 5

// postMaxLen is the platform's message-length ceiling.
const postMaxLen = 280

// TwitterClient talks to the Twitter v2 API: the bearer token reads the
// mention timeline, the access token posts tweets and replies.
type TwitterClient struct {
	baseURL     string
	bearerToken string
	accessToken string
	userID      string
	httpClient  *http.Client
}

// NewTwitterClient builds a client for the given account.
func NewTwitterClient(bearerToken, accessToken, userID string) *TwitterClient {
	return &TwitterClient{
		baseURL:     "https://api.twitter.com",
		bearerToken: bearerToken,
		accessToken: accessToken,
		userID:      userID,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type mentionTimelineResponse struct {
	Data []struct {
		ID        string `json:"id"`
		AuthorID  string `json:"author_id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
}

// RecentMentions returns the latest mentions of the configured user.
func (c *TwitterClient) RecentMentions(ctx context.Context) ([]Mention, error) {
	q := url.Values{}
	q.Set("max_results", fmt.Sprintf("%d", maxMentionResults))
	q.Set("tweet.fields", "author_id,created_at,text")
	reqURL := fmt.Sprintf("%s/2/users/%s/mentions?%s", c.baseURL, c.userID, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("mention timeline: status %d: %s", resp.StatusCode, string(body))
	}

	var timeline mentionTimelineResponse
	if err := json.NewDecoder(resp.Body).Decode(&timeline); err != nil {
		return nil, fmt.Errorf("mention timeline: decode: %w", err)
	}

	out := make([]Mention, 0, len(timeline.Data))
	for _, tw := range timeline.Data {
		created, _ := time.Parse(time.RFC3339, tw.CreatedAt)
		out = append(out, Mention{
			ID:        tw.ID,
			AuthorID:  tw.AuthorID,
			Text:      tw.Text,
			CreatedAt: created,
		})
	}
	return out, nil
}

type createTweetRequest struct {
	Text  string `json:"text"`
	Reply *struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply,omitempty"`
}

type createTweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type twitterErrorResponse struct {
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

// Reply posts text as a reply to mentionID.
func (c *TwitterClient) Reply(ctx context.Context, mentionID, text string) error {
	payload := createTweetRequest{Text: text}
	payload.Reply = &struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	}{InReplyToTweetID: mentionID}
	_, err := c.createTweet(ctx, payload)
	return err
}

// Post publishes a standalone tweet and returns its id. Used by the
// manual post endpoint.
func (c *TwitterClient) Post(ctx context.Context, text string) (string, error) {
	return c.createTweet(ctx, createTweetRequest{Text: text})
}

func (c *TwitterClient) createTweet(ctx context.Context, payload createTweetRequest) (string, error) {
	if payload.Text == "" {
		return "", fmt.Errorf("empty tweet text")
	}
	if len([]rune(payload.Text)) > postMaxLen {
		return "", fmt.Errorf("tweet text too long: %d > %d", len([]rune(payload.Text)), postMaxLen)
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr twitterErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Detail != "" {
			return "", fmt.Errorf("create tweet: %s", apiErr.Detail)
		}
		return "", fmt.Errorf("create tweet: status %d: %s", resp.StatusCode, string(raw))
	}

	var created createTweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("create tweet: decode: %w", err)
	}
	return created.Data.ID, nil
}

// TweetURL returns the canonical link for a tweet id.
func TweetURL(id string) string {
	return fmt.Sprintf("https://twitter.com/user/status/%s", id)
}
