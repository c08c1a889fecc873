package mentions

import (
	"context"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/safememefi/riskscan/internal/analyzer"
	"github.com/safememefi/riskscan/internal/token"
)

// TokenAnalyzer is the slice of the orchestrator the loop needs.
type TokenAnalyzer interface {
	Analyze(ctx context.Context, raw string) (*analyzer.Result, error)
}

// SeenStore is the persisted dedup set.
type SeenStore interface {
	IsMentionSeen(ctx context.Context, id string) (bool, error)
	MarkMentionSeen(ctx context.Context, id string) error
}

// Stats is a point-in-time view of the loop for the health report.
type Stats struct {
	Cycles        int       `json:"cycles"`
	RepliesSent   int       `json:"replies_sent"`
	RepliesFailed int       `json:"replies_failed"`
	LastPollAt    time.Time `json:"last_poll_at"`
	LastError     string    `json:"last_error,omitempty"`
}

// Loop polls for mentions on a fixed cadence and drives the analyzer for
// each new one. It alternates between idle and a single in-flight poll
// cycle; a cycle fully drains, replies included, before the next tick is
// considered.
type Loop struct {
	source   Source
	replier  Replier
	analyzer TokenAnalyzer
	seen     SeenStore

	interval       time.Duration
	replyDelay     time.Duration
	analyzeTimeout time.Duration

	mu    sync.Mutex
	stats Stats
}

// NewLoop wires a mention loop. replyDelay paces outbound replies so a
// busy cycle stays under the platform's posting rate limit.
func NewLoop(source Source, replier Replier, an TokenAnalyzer, seen SeenStore, interval, replyDelay, analyzeTimeout time.Duration) *Loop {
	return &Loop{
		source:         source,
		replier:        replier,
		analyzer:       an,
		seen:           seen,
		interval:       interval,
		replyDelay:     replyDelay,
		analyzeTimeout: analyzeTimeout,
	}
}

// Run executes the first cycle immediately, then one per tick, until ctx
// is cancelled. Never returns an error: every failure mode inside a cycle
// is logged and absorbed.
func (l *Loop) Run(ctx context.Context) {
	log.Printf("[loop] polling mentions every %s", l.interval)
	l.runCycle(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[loop] stopped")
			return
		case <-ticker.C:
			l.runCycle(ctx)
		}
	}
}

// Stats returns a copy of the loop counters.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Loop) runCycle(ctx context.Context) {
	l.mu.Lock()
	l.stats.Cycles++
	l.stats.LastPollAt = time.Now().UTC()
	l.mu.Unlock()

	fetched, err := l.source.RecentMentions(ctx)
	if err != nil {
		// Poll failure: wait for the next scheduled tick.
		log.Printf("[loop] poll failed: %v", err)
		l.recordError(err)
		return
	}
	if len(fetched) == 0 {
		return
	}
	log.Printf("[loop] found %d recent mentions", len(fetched))

	// Timeline order, oldest first, so dedup state advances
	// deterministically.
	sort.Slice(fetched, func(i, j int) bool { return mentionLess(fetched[i].ID, fetched[j].ID) })

	replied := false
	for _, m := range fetched {
		if ctx.Err() != nil {
			return
		}

		seen, err := l.seen.IsMentionSeen(ctx, m.ID)
		if err != nil {
			log.Printf("[loop] seen lookup for %s: %v", m.ID, err)
			continue
		}
		if seen {
			continue
		}

		addr, ok := token.Extract(m.Text)
		if !ok {
			// Nothing to analyze; consume the mention so it is not
			// re-inspected every cycle.
			if err := l.seen.MarkMentionSeen(ctx, m.ID); err != nil {
				log.Printf("[loop] mark seen %s: %v", m.ID, err)
			}
			continue
		}

		if replied {
			// Pace consecutive replies.
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.replyDelay):
			}
		}

		l.handleMention(ctx, m, addr)
		replied = true
	}
}

// handleMention analyzes one mention and posts the reply. The mention is
// marked seen only after the reply attempt finishes, success or not, so a
// cancelled run can retry it next cycle.
func (l *Loop) handleMention(ctx context.Context, m Mention, addr string) {
	log.Printf("[loop] mention %s: analyzing %s", m.ID, addr)

	actx, cancel := context.WithTimeout(ctx, l.analyzeTimeout)
	res, err := l.analyzer.Analyze(actx, addr)
	cancel()

	var reply string
	if err != nil {
		reply = analyzer.RenderError(addr)
	} else {
		reply = analyzer.RenderReply(res)
	}

	if err := l.replier.Reply(ctx, m.ID, reply); err != nil {
		// Delivery failure: dropped replies are acceptable, just logged.
		log.Printf("[loop] reply to %s failed: %v", m.ID, err)
		l.recordError(err)
		l.mu.Lock()
		l.stats.RepliesFailed++
		l.mu.Unlock()
	} else {
		log.Printf("[loop] replied to mention %s", m.ID)
		l.mu.Lock()
		l.stats.RepliesSent++
		l.mu.Unlock()
	}

	if err := l.seen.MarkMentionSeen(ctx, m.ID); err != nil {
		log.Printf("[loop] mark seen %s: %v", m.ID, err)
	}
}

func (l *Loop) recordError(err error) {
	l.mu.Lock()
	l.stats.LastError = err.Error()
	l.mu.Unlock()
}

// mentionLess orders ids numerically when possible (snowflake ids are
// numeric strings of varying length), falling back to string order.
func mentionLess(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
