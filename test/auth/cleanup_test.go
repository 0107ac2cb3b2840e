package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgconn"

	"github.com/inkwell/blog-backend/internal/auth/cleanup"
)

func TestCleanup_RunsImmediatelyAndObserves(t *testing.T) {
	observed := make(chan int64, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go cleanup.Run(ctx, cleanup.Job{
		Name:     "test",
		Interval: time.Hour,
		Delete: func(ctx context.Context) (int64, error) {
			return 3, nil
		},
		Observe: func(deleted int64) {
			observed <- deleted
		},
	}, testLogger(t))

	select {
	case deleted := <-observed:
		if deleted != 3 {
			t.Errorf("expected 3 deleted rows observed, got %d", deleted)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not run an immediate pass")
	}
}

func TestCleanup_RetriesTransientErrorWithinPass(t *testing.T) {
	observed := make(chan int64, 1)
	var calls int32

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go cleanup.Run(ctx, cleanup.Job{
		Name:     "test",
		Interval: time.Hour,
		Delete: func(ctx context.Context) (int64, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				// Connection failure, the kind a database restart produces.
				return 0, &pgconn.PgError{Code: "08006"}
			}
			return 2, nil
		},
		Observe: func(deleted int64) {
			observed <- deleted
		},
	}, testLogger(t))

	select {
	case deleted := <-observed:
		if deleted != 2 {
			t.Errorf("expected 2 deleted rows after retry, got %d", deleted)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup pass did not retry the transient failure")
	}
	if atomic.LoadInt32(&calls) < 2 {
		t.Errorf("expected at least two delete attempts, got %d", calls)
	}
}

func TestCleanup_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		cleanup.Run(ctx, cleanup.Job{
			Name:     "test",
			Interval: 10 * time.Millisecond,
			Delete: func(ctx context.Context) (int64, error) {
				return 0, nil
			},
		}, testLogger(t))
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not stop after cancel")
	}
}
