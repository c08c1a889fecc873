// Package store persists the small bits of state that must outlive a
// process restart: which mentions have been replied to, and which mints
// are being watched.
package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketSeenMentions = []byte("seen_mentions")
	bucketWatchedMints = []byte("watched_mints")
)

// maxSeenMentions bounds the dedup set: only the most recent entries are
// kept, oldest evicted first. Mention ids are zero-padded so key order is
// timeline order.
const maxSeenMentions = 512

const mentionKeyWidth = 20

// Bolt is a bbolt-backed store. All methods are safe for concurrent use.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the database file and ensures buckets exist.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSeenMentions, bucketWatchedMints} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (s *Bolt) Close() error { return s.db.Close() }

func mentionKey(id string) []byte {
	// Numeric ids get zero-padded so lexicographic order matches numeric
	// order; anything else (nitter guids) sorts after them, which is fine
	// for eviction purposes.
	if len(id) < mentionKeyWidth {
		id = strings.Repeat("0", mentionKeyWidth-len(id)) + id
	}
	return []byte(id)
}

// MarkMentionSeen records that a reply attempt for id has completed, then
// evicts the oldest entries beyond the bound.
func (s *Bolt) MarkMentionSeen(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSeenMentions)
		var ts [8]byte
		binary.BigEndian.PutUint64(ts[:], uint64(time.Now().Unix()))
		if err := b.Put(mentionKey(id), ts[:]); err != nil {
			return err
		}
		// Evict oldest beyond the bound. KeyN from Stats is not reliable
		// mid-transaction, so count by hand.
		n := 0
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			n++
		}
		for k, _ := c.First(); k != nil && n > maxSeenMentions; k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
			n--
		}
		return nil
	})
}

// IsMentionSeen reports whether id has already been handled.
func (s *Bolt) IsMentionSeen(_ context.Context, id string) (bool, error) {
	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(bucketSeenMentions).Get(mentionKey(id)) != nil
		return nil
	})
	return seen, err
}

// SeenMentionCount returns the current size of the dedup set.
func (s *Bolt) SeenMentionCount(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketSeenMentions).Stats().KeyN
		return nil
	})
	return n, err
}

// AddWatch persists a watched mint.
func (s *Bolt) AddWatch(_ context.Context, mint string) error {
	mint = strings.TrimSpace(mint)
	if mint == "" {
		return fmt.Errorf("empty mint")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWatchedMints).Put([]byte(mint), []byte{1})
	})
}

// RemoveWatch removes a watched mint; removing an unknown mint is a no-op.
func (s *Bolt) RemoveWatch(_ context.Context, mint string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWatchedMints).Delete([]byte(mint))
	})
}

// ListWatches returns all persisted watched mints in key order.
func (s *Bolt) ListWatches(_ context.Context) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWatchedMints).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}
