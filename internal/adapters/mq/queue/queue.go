// Package queue defines the contract for enqueuing and consuming match
// submissions.
package queue

import (
	"context"
	"sync"

	"github.com/openfrag/agmmr/internal/domain/model"
	"github.com/openfrag/agmmr/pkg/metrics"
)

// defaultCapacity bounds the in-memory queue.
const defaultCapacity = 10000

// Submission is the payload type flowing through the queue.
type Submission = model.MatchSubmission

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a submission. Returns false when the queue is full or
	// closed and the submission was not accepted.
	Enqueue(ctx context.Context, sub Submission) bool

	// Dequeue returns a channel receiving submissions as they arrive.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Submission

	// Len returns the current number of queued submissions.
	Len(ctx context.Context) int

	// Close shuts the queue down; no further enqueues are accepted.
	Close() error
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	subs     chan Submission
	capacity int

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds the queue.
func WithCapacity(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// NewInMemoryQueue creates a bounded in-memory submission queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.subs = make(chan Submission, q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a submission to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, sub Submission) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.subs <- sub:
		metrics.UpdateQueueSize(len(q.subs))
		return true
	case <-ctx.Done():
		return false
	default:
		return false // queue full
	}
}

// Dequeue returns a channel receiving queued submissions.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Submission {
	out := make(chan Submission)
	go func() {
		defer close(out)
		for sub := range q.subs {
			select {
			case out <- sub:
				metrics.UpdateQueueSize(len(q.subs))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued submissions.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.subs)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.subs)
	q.closed = true
	return nil
}
