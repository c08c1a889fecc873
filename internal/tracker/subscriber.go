package tracker

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/safememefi/riskscan/internal/util"
)

// NotifyFunc receives every fresh transaction signature touching a
// watched mint. Injected at Manager construction so the Telegram side can
// fan alerts out without a package-level hook.
type NotifyFunc func(mint string, signature string)

// logsNotification is the shape of a logsSubscribe push from the RPC.
type logsNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Signature string `json:"signature"`
				Err       any    `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// Subscriber maintains a single logsSubscribe connection for one mint.
type Subscriber struct {
	wss        string
	mint       string
	commitment string
	notify     NotifyFunc

	open       atomic.Bool
	shouldOpen atomic.Bool

	dedupeCache map[string]time.Time
	dedupeMutex sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSubscriber creates a new Subscriber. Call Run() to start it.
func NewSubscriber(wss, commitment, mint string, notify NotifyFunc) *Subscriber {
	s := &Subscriber{
		wss:         strings.TrimSpace(wss),
		mint:        strings.TrimSpace(mint),
		commitment:  strings.TrimSpace(commitment),
		notify:      notify,
		stopCh:      make(chan struct{}),
		dedupeCache: make(map[string]time.Time),
	}
	s.shouldOpen.Store(true)
	return s
}

func (s *Subscriber) IsOpen() bool       { return s.open.Load() }
func (s *Subscriber) ShouldBeOpen() bool { return s.shouldOpen.Load() }

func (s *Subscriber) Stop() {
	s.stopOnce.Do(func() {
		s.shouldOpen.Store(false)
		close(s.stopCh)
	})
}

func (s *Subscriber) isDuplicate(signature string) bool {
	s.dedupeMutex.Lock()
	defer s.dedupeMutex.Unlock()

	if ts, found := s.dedupeCache[signature]; found {
		if time.Since(ts) < 30*time.Second {
			return true
		}
	}
	s.dedupeCache[signature] = time.Now()
	return false
}

func (s *Subscriber) cleanCache(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.dedupeMutex.Lock()
			for sig, ts := range s.dedupeCache {
				if time.Since(ts) > 1*time.Minute {
					delete(s.dedupeCache, sig)
				}
			}
			s.dedupeMutex.Unlock()
		}
	}
}

// Run dials, subscribes to logs mentioning the mint, and reconnects with
// backoff until Stop or ctx cancel.
func (s *Subscriber) Run(ctx context.Context) {
	bo := util.NewBackoff(1*time.Second, 30*time.Second, 2.0, 0.2)
	go s.cleanCache(ctx)

	for {
		if !s.ShouldBeOpen() || ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wss, http.Header{})
		if err != nil {
			wait := bo.Next()
			log.Printf("[sub %s] dial error: %v; retrying in %s", s.prettyMint(), err, wait)
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-time.After(wait):
			}
			continue
		}

		s.open.Store(true)
		bo.Reset()

		connCtx, connCancel := context.WithCancel(ctx)
		go func() {
			select {
			case <-s.stopCh:
			case <-connCtx.Done():
			}
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stopping"), time.Now().Add(2*time.Second))
			_ = conn.Close()
		}()

		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		})

		subMsg := map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"method":  "logsSubscribe",
			"params": []any{
				map[string]any{"mentions": []string{s.mint}},
				map[string]any{"commitment": s.commitment},
			},
		}
		if err := conn.WriteJSON(subMsg); err != nil {
			log.Printf("[sub %s] subscribe error: %v", s.prettyMint(), err)
			connCancel()
			continue
		}

		go func() {
			ticker := time.NewTicker(20 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-connCtx.Done():
					return
				case <-ticker.C:
					if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
						return
					}
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Printf("[sub %s] read error: %v", s.prettyMint(), err)
				break
			}

			var notif logsNotification
			if err := json.Unmarshal(msg, &notif); err != nil {
				continue
			}

			if notif.Method != "logsNotification" || notif.Params.Result.Value.Signature == "" || notif.Params.Result.Value.Err != nil {
				continue
			}

			signature := notif.Params.Result.Value.Signature
			if s.isDuplicate(signature) {
				continue
			}

			log.Printf("[sub %s] activity: %s...", s.prettyMint(), signature[:16])

			if s.notify != nil {
				s.notify(s.mint, signature)
			}
		}

		s.open.Store(false)
		connCancel()
	}
}

func (s *Subscriber) prettyMint() string {
	if len(s.mint) <= 8 {
		return s.mint
	}
	return s.mint[:4] + "..." + s.mint[len(s.mint)-4:]
}
