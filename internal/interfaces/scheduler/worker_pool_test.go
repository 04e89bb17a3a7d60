package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type funcJob struct {
	key string
	fn  func(ctx context.Context) error
}

func (j *funcJob) Execute(ctx context.Context) error { return j.fn(ctx) }
func (j *funcJob) Key() string                       { return j.key }
func (j *funcJob) Description() string               { return "test job " + j.key }

func TestWorkerPool_RunsSubmittedJobs(t *testing.T) {
	wp := NewWorkerPool(3, 0, 10, zerolog.Nop())
	wp.Start()

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := wp.Submit(&funcJob{key: "j", fn: func(ctx context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		}})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	wp.Shutdown(time.Second)

	if ran.Load() != 10 {
		t.Errorf("ran %d jobs, want 10", ran.Load())
	}
}

func TestWorkerPool_QueueFull(t *testing.T) {
	wp := NewWorkerPool(1, 0, 1, zerolog.Nop())
	// Not started: nothing drains the queue.

	noop := &funcJob{key: "a", fn: func(ctx context.Context) error { return nil }}
	if err := wp.Submit(noop); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if err := wp.Submit(noop); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	wp := NewWorkerPool(1, 0, 1, zerolog.Nop())
	wp.Start()
	wp.Shutdown(time.Second)

	err := wp.Submit(&funcJob{key: "late", fn: func(ctx context.Context) error { return nil }})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}

	// Second shutdown is a no-op.
	wp.Shutdown(time.Second)
}

func TestWorkerPool_SurvivesFailingJobs(t *testing.T) {
	wp := NewWorkerPool(1, 0, 4, zerolog.Nop())
	wp.Start()

	done := make(chan struct{})
	_ = wp.Submit(&funcJob{key: "err", fn: func(ctx context.Context) error { return errors.New("boom") }})
	_ = wp.Submit(&funcJob{key: "panic", fn: func(ctx context.Context) error { panic("boom") }})
	_ = wp.Submit(&funcJob{key: "ok", fn: func(ctx context.Context) error { close(done); return nil }})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive failing jobs")
	}
	wp.Shutdown(time.Second)
}

func TestWorkerPool_ShutdownTimeoutCancelsJobs(t *testing.T) {
	wp := NewWorkerPool(1, 0, 1, zerolog.Nop())
	wp.Start()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	_ = wp.Submit(&funcJob{key: "slow", fn: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}})

	<-started
	wp.Shutdown(10 * time.Millisecond)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("running job was not cancelled after shutdown timeout")
	}
}

func TestWorkerPool_SubmitBatch(t *testing.T) {
	wp := NewWorkerPool(1, 0, 2, zerolog.Nop())

	noop := func(ctx context.Context) error { return nil }
	jobs := []Job{&funcJob{"a", noop}, &funcJob{"b", noop}, &funcJob{"c", noop}}

	if n := wp.SubmitBatch(jobs); n != 2 {
		t.Errorf("SubmitBatch accepted %d, want 2", n)
	}
}
