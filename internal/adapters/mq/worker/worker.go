// Package worker consumes queued match submissions and drives processing.
//
// Exactly one worker runs per process: match processing is order-dependent
// (each match must observe the ratings committed by the one before it), so a
// single FIFO consumer is the serialization discipline, not a tuning knob.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/openfrag/agmmr/internal/domain/model"
	"github.com/openfrag/agmmr/pkg/logger"
)

// shutdownTimeout bounds how long Shutdown waits for the in-flight
// submission.
const shutdownTimeout = 10 * time.Second

// Processor handles one dequeued match submission end to end.
type Processor interface {
	ProcessSubmission(ctx context.Context, sub model.MatchSubmission) error
}

// Queue defines how the worker receives submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.MatchSubmission
}

// Worker consumes submissions one at a time.
type Worker struct {
	queue     Queue
	processor Processor
	log       logger.Logger

	shutdown chan struct{}
	done     chan struct{}
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithLogger sets a custom logger for the worker.
func WithLogger(log logger.Logger) Option {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a worker reading from queue and delegating to processor.
func New(queue Queue, processor Processor, opts ...Option) *Worker {
	w := &Worker{
		queue:     queue,
		processor: processor,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes submissions until ctx is canceled, the queue closes, or
// Shutdown is called. Processing failures are logged and skipped; a bad
// submission must not wedge the pipeline.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	subs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subs:
			if !ok {
				return
			}
			if err := w.processor.ProcessSubmission(ctx, sub); err != nil {
				w.logError(ctx, "match submission failed",
					logger.Int64("matchID", sub.MatchID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker, waiting for any in-flight submission.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	waitCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	select {
	case <-w.done:
		return nil
	case <-waitCtx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", waitCtx.Err())
	}
}

func (w *Worker) logError(ctx context.Context, msg string, fields ...logger.Field) {
	if w.log == nil {
		return
	}
	w.log.Error(ctx, msg, fields...)
}
