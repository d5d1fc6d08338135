// Package dedupe tracks already-submitted match ids so a resent match report
// cannot move ratings twice.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen match ids to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether matchID was seen and records it
	// if not. Returns true when the id was already seen.
	SeenAndRecord(ctx context.Context, matchID int64) bool

	// Unrecord removes a match id, allowing the submission to be retried.
	// Used when a recorded submission could not be enqueued.
	Unrecord(ctx context.Context, matchID int64)

	Size() int
}

// inMemoryDeduper implements Deduper with a map plus a FIFO eviction ring.
// When the ring is full the oldest recorded id is forgotten; a match that old
// has long since been persisted and is rejected upstream anyway.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[int64]struct{}
	order   []int64
	maxSize int
}

// Option applies a configuration option to the deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of remembered match ids. Non-positive values
// keep the deduper unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
		seen:    make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, matchID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[matchID]; ok {
		return true
	}

	if d.maxSize > 0 && len(d.order) >= d.maxSize {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}

	d.seen[matchID] = struct{}{}
	d.order = append(d.order, matchID)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, matchID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[matchID]; !ok {
		return
	}
	delete(d.seen, matchID)
	for i, id := range d.order {
		if id == matchID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
