package util

import (
	"math/rand"
	"time"
)

// Backoff produces exponentially growing wait times with jitter.
// Not safe for concurrent use; each reconnect loop owns its own instance.
type Backoff struct {
	min    time.Duration
	max    time.Duration
	factor float64
	jitter float64

	cur time.Duration
}

// NewBackoff returns a Backoff starting at min, multiplying by factor on
// each Next() up to max. jitter is a fraction of the wait (0.2 = ±20%).
func NewBackoff(min, max time.Duration, factor, jitter float64) *Backoff {
	if min <= 0 {
		min = time.Second
	}
	if max < min {
		max = min
	}
	if factor < 1 {
		factor = 2
	}
	return &Backoff{min: min, max: max, factor: factor, jitter: jitter, cur: min}
}

// Next returns the current wait and advances the backoff.
func (b *Backoff) Next() time.Duration {
	d := b.cur

	next := time.Duration(float64(b.cur) * b.factor)
	if next > b.max {
		next = b.max
	}
	b.cur = next

	if b.jitter > 0 {
		delta := (rand.Float64()*2 - 1) * b.jitter * float64(d)
		d += time.Duration(delta)
		if d < 0 {
			d = b.min
		}
	}
	return d
}

// Reset rewinds the backoff to its minimum wait.
func (b *Backoff) Reset() { b.cur = b.min }
