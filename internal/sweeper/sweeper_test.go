package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Leganyst/booking-engine/internal/checkout"
	"github.com/Leganyst/booking-engine/internal/checkout/checkouttest"
	"github.com/Leganyst/booking-engine/internal/model"
)

type countingTarget struct {
	mu    sync.Mutex
	calls int
	batch int
	err   error
}

func (c *countingTarget) Sweep(_ context.Context, _ time.Duration, batch int) (checkout.SweepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.batch = batch
	return checkout.SweepResult{Expired: 1}, c.err
}

func (c *countingTarget) snapshot() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls, c.batch
}

func TestSweeper_RunsUntilCancelled(t *testing.T) {
	target := &countingTarget{}
	logger, hook := test.NewNullLogger()
	s := &Sweeper{Target: target, Interval: 5 * time.Millisecond, Log: logger}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if calls, _ := target.snapshot(); calls >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("sweeper did not tick")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, batch := target.snapshot(); batch != defaultBatch {
		t.Fatalf("batch = %d, want %d", batch, defaultBatch)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.InfoLevel {
		t.Fatalf("expected an info entry for the sweep")
	}
}

func TestSweeper_LogsFailures(t *testing.T) {
	target := &countingTarget{err: errors.New("db down")}
	logger, hook := test.NewNullLogger()
	s := &Sweeper{Target: target, Interval: time.Hour, Log: logger}

	s.tick(context.Background())
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %+v", e)
	}
}

func TestSweeper_ExpiresLapsedSessions(t *testing.T) {
	env := checkouttest.New(t)
	s := env.AwaitingPayment(t)
	env.Clock.Advance(11 * time.Minute)

	sw := &Sweeper{Target: env.Orch, Interval: time.Hour, Retention: 24 * time.Hour, Log: env.Logger}
	sw.tick(context.Background())

	if got := env.State(t, s.ID); got != model.SessionExpired {
		t.Fatalf("state = %s, want EXPIRED", got)
	}
}

func TestSweeper_RejectsNonPositiveInterval(t *testing.T) {
	target := &countingTarget{}
	logger, _ := test.NewNullLogger()
	s := &Sweeper{Target: target, Interval: 0, Log: logger}

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected an error for a zero interval")
	}
	if calls, _ := target.snapshot(); calls != 0 {
		t.Fatalf("sweep ran %d times", calls)
	}
}
