// Package mentions polls a social feed for mentions of the scanner
// account and replies with token analyses.
package mentions

import (
	"context"
	"time"
)

// Mention is one observed public post referencing the watched account.
type Mention struct {
	ID        string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}

// Source fetches the most recent mentions of the configured account.
// Implementations must not retry internally; the loop's cadence is the
// retry policy.
type Source interface {
	RecentMentions(ctx context.Context) ([]Mention, error)
}

// Replier posts a reply in response to a mention.
type Replier interface {
	Reply(ctx context.Context, mentionID, text string) error
}
