package followup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestQueue_RunsActions(t *testing.T) {
	q := NewQueue(8, 0, zerolog.Nop())
	q.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		q.Enqueue(Action{
			Name: "count",
			Run: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		})
	}

	q.Close()

	assert.Equal(t, int32(3), ran.Load())
}

func TestQueue_RetriesUntilSuccess(t *testing.T) {
	q := NewQueue(1, 3, zerolog.Nop())
	q.baseDelay = time.Millisecond
	q.Start(context.Background())

	var attempts atomic.Int32
	q.Enqueue(Action{
		Name: "flaky",
		Run: func(ctx context.Context) error {
			if attempts.Add(1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
	})

	q.Close()

	assert.Equal(t, int32(3), attempts.Load())
}

func TestQueue_AbandonsAfterMaxRetries(t *testing.T) {
	q := NewQueue(1, 2, zerolog.Nop())
	q.baseDelay = time.Millisecond
	q.Start(context.Background())

	var attempts atomic.Int32
	q.Enqueue(Action{
		Name: "doomed",
		Run: func(ctx context.Context) error {
			attempts.Add(1)
			return errors.New("permanent")
		},
	})

	q.Close()

	// Initial attempt plus two retries, then given up.
	assert.Equal(t, int32(3), attempts.Load())
}

func TestQueue_DropsWhenFull(t *testing.T) {
	// Worker not started, so the channel fills up and the overflow action is
	// dropped instead of blocking the caller.
	q := NewQueue(1, 0, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		q.Enqueue(Action{Name: "first", Run: func(ctx context.Context) error { return nil }})
		q.Enqueue(Action{Name: "overflow", Run: func(ctx context.Context) error { return nil }})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	assert.Equal(t, 1, len(q.actions))
}

func TestQueue_CloseDrainsPending(t *testing.T) {
	q := NewQueue(8, 0, zerolog.Nop())

	var ran atomic.Int32
	// Enqueue before the worker starts; Close must still run everything.
	for i := 0; i < 5; i++ {
		q.Enqueue(Action{
			Name: "pending",
			Run: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		})
	}

	q.Start(context.Background())
	q.Close()

	assert.Equal(t, int32(5), ran.Load())
}
