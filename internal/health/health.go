package health

import (
	"context"
	"time"

	"github.com/safememefi/riskscan/internal/mentions"
	"github.com/safememefi/riskscan/internal/tracker"
)

// SeenCounter is the minimal interface we need from the store.
type SeenCounter interface {
	SeenMentionCount(ctx context.Context) (int, error)
	ListWatches(ctx context.Context) ([]string, error)
}

// Health exposes a read-only snapshot of service state for the /health
// command and the HTTP health endpoint.
type Health struct {
	loop *mentions.Loop
	tm   *tracker.Manager
	st   SeenCounter
}

// New returns a Health aggregator bound to the loop, tracker and store.
func New(loop *mentions.Loop, tm *tracker.Manager, st SeenCounter) *Health {
	return &Health{loop: loop, tm: tm, st: st}
}

// Report is the struct returned to callers for formatting.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	Loop mentions.Stats `json:"loop"`

	// From tracker.Manager.Stats()
	Watched int      `json:"watched_mints"`
	Open    int      `json:"open_subscriptions"`
	Dropped []string `json:"dropped_subscriptions"`

	// From persistent store
	SeenMentions     int `json:"seen_mentions"`
	WatchedPersisted int `json:"watched_in_store"`
}

// Snapshot gathers a point-in-time report. It does not block for long
// operations.
func (h *Health) Snapshot(ctx context.Context) Report {
	rep := Report{GeneratedAt: time.Now().UTC()}

	if h.loop != nil {
		rep.Loop = h.loop.Stats()
	}
	if h.tm != nil {
		watched, open, dropped := h.tm.Stats()
		rep.Watched = watched
		rep.Open = open
		rep.Dropped = append([]string(nil), dropped...)
	}
	if h.st != nil {
		if n, err := h.st.SeenMentionCount(ctx); err == nil {
			rep.SeenMentions = n
		}
		if mints, err := h.st.ListWatches(ctx); err == nil {
			rep.WatchedPersisted = len(mints)
		}
	}
	return rep
}
