// Package tracker keeps live logsSubscribe watches on mints so the bot
// can alert on on-chain activity for tokens users chose to follow.
package tracker

import (
	"context"
	"sort"
	"sync"
)

// Manager owns the set of active Subscribers (one per watched mint).
// It is concurrency-safe via an internal RWMutex.
type Manager struct {
	wss        string
	commitment string
	notify     NotifyFunc

	mu   sync.RWMutex
	subs map[string]*Subscriber // mint -> sub
}

// NewManager constructs a Manager that spawns subscribers against the
// given WebSocket endpoint. notify is invoked for every fresh signature
// on any watched mint.
func NewManager(wss, commitment string, notify NotifyFunc) *Manager {
	return &Manager{
		wss:        wss,
		commitment: commitment,
		notify:     notify,
		subs:       make(map[string]*Subscriber),
	}
}

// Watch ensures there is a running subscriber for mint.
// If one already exists, this is a no-op.
func (m *Manager) Watch(ctx context.Context, mint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.subs[mint]; exists {
		return nil
	}

	sub := NewSubscriber(m.wss, m.commitment, mint, m.notify)
	m.subs[mint] = sub
	go sub.Run(ctx) // long-running; auto-reconnects until Stop or ctx cancel
	return nil
}

// Unwatch stops and removes the subscriber for mint, if present.
func (m *Manager) Unwatch(_ context.Context, mint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subs[mint]; ok {
		sub.Stop()
		delete(m.subs, mint)
	}
	return nil
}

// List returns a sorted snapshot of currently watched mints.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.subs))
	for mint := range m.subs {
		out = append(out, mint)
	}
	sort.Strings(out)
	return out
}

// Stats reports:
//
//	watched = total number of subscribers in memory
//	open    = how many currently report IsOpen()==true
//	dropped = mints that ShouldBeOpen()==true but IsOpen()==false
func (m *Manager) Stats() (watched int, open int, dropped []string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	watched = len(m.subs)
	for mint, s := range m.subs {
		if s.IsOpen() {
			open++
			continue
		}
		if s.ShouldBeOpen() {
			dropped = append(dropped, mint)
		}
	}
	// Keep output deterministic for tests / logs.
	sort.Strings(dropped)
	return
}

// StopAll gracefully stops every subscriber.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		s.Stop()
	}
}
