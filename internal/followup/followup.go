// Package followup runs post-commit side effects (cart clear, invoice email)
// outside the order's atomic boundary. Actions are queued after a successful
// commit and retried independently; a failed action is logged and dropped,
// never propagated back to the committed transaction.
package followup

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Action is one deferred side effect.
type Action struct {
	// Name identifies the action in logs.
	Name string

	// Run executes the action. A non-nil error triggers a retry.
	Run func(ctx context.Context) error
}

// Queue is a bounded in-process queue of post-commit actions with a single
// worker and bounded retries.
type Queue struct {
	actions    chan Action
	maxRetries int
	baseDelay  time.Duration
	logger     zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// NewQueue creates a queue holding up to size pending actions, each retried
// up to maxRetries times after its first failure.
func NewQueue(size, maxRetries int, logger zerolog.Logger) *Queue {
	return &Queue{
		actions:    make(chan Action, size),
		maxRetries: maxRetries,
		baseDelay:  100 * time.Millisecond,
		logger:     logger.With().Str("component", "followup-queue").Logger(),
		done:       make(chan struct{}),
	}
}

// Start launches the worker. The context bounds each action's execution.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		go q.work(ctx)
	})
}

// Enqueue submits an action. When the queue is full the action is dropped
// with an error log: follow-ups are best-effort and must never block the
// request path that just committed.
func (q *Queue) Enqueue(action Action) {
	select {
	case q.actions <- action:
		q.logger.Debug().Str("action", action.Name).Msg("follow-up action enqueued")
	default:
		q.logger.Error().Str("action", action.Name).Msg("follow-up queue full, action dropped")
	}
}

// Close stops accepting actions and blocks until the pending ones drain.
func (q *Queue) Close() {
	q.stopOnce.Do(func() {
		close(q.actions)
		<-q.done
	})
}

func (q *Queue) work(ctx context.Context) {
	defer close(q.done)

	for action := range q.actions {
		q.run(ctx, action)
	}
}

func (q *Queue) run(ctx context.Context, action Action) {
	var err error
	for attempt := 0; attempt <= q.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(q.baseDelay * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				q.logger.Warn().
					Str("action", action.Name).
					Msg("context cancelled while retrying follow-up action")
				return
			}
		}

		if err = action.Run(ctx); err == nil {
			q.logger.Debug().
				Str("action", action.Name).
				Int("attempt", attempt+1).
				Msg("follow-up action completed")
			return
		}

		q.logger.Warn().
			Err(err).
			Str("action", action.Name).
			Int("attempt", attempt+1).
			Msg("follow-up action failed")
	}

	q.logger.Error().
		Err(err).
		Str("action", action.Name).
		Int("max_retries", q.maxRetries).
		Msg("follow-up action abandoned")
}
