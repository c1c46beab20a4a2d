package hold

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/availability"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/db/dbtest"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	store := repository.NewGormStore(dbtest.Open(t))
	clock := &fakeClock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	m := NewManager(
		store.Holds(),
		availability.NewResolver(store.Bookings(), store.Holds()),
		WithClock(clock.Now),
		WithLogger(logger),
	)
	return m, clock
}

func venueSlot(t *testing.T, start, end string) Slot {
	t.Helper()
	iv, err := calendar.NewInterval(calendar.MustTimeOfDay(start), calendar.MustTimeOfDay(end))
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	return Slot{Resources: []model.ResourceRef{model.VenueRef("v1")}, Date: "2025-06-02", Interval: iv}
}

func TestManager_ConcurrentAcquireExactlyOneWins(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	slot := venueSlot(t, "09:00", "10:00")

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
		other     []error
	)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := m.Acquire(ctx, slot, string(rune('a'+i)), DefaultTTL)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case IsConflict(err):
				conflicts++
			default:
				other = append(other, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if wins != 1 || conflicts != racers-1 {
		t.Fatalf("wins=%d conflicts=%d, want 1 and %d", wins, conflicts, racers-1)
	}
}

func TestManager_OverlapAndBackToBack(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	if _, err := m.Acquire(ctx, venueSlot(t, "09:00", "10:00"), "first", DefaultTTL); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := m.Acquire(ctx, venueSlot(t, "09:30", "10:30"), "second", DefaultTTL); !errors.Is(err, apperr.ErrSlotConflict) {
		t.Fatalf("expected SlotConflict for partial overlap, got %v", err)
	}
	if _, err := m.Acquire(ctx, venueSlot(t, "10:00", "11:00"), "third", DefaultTTL); err != nil {
		t.Fatalf("back-to-back slot must be free: %v", err)
	}
}

func TestManager_HoldLapsesAfterTTL(t *testing.T) {
	m, clock := newManager(t)
	ctx := context.Background()
	slot := venueSlot(t, "09:00", "10:00")
	ttl := 10 * time.Minute

	if _, err := m.Acquire(ctx, slot, "first", ttl); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	clock.Advance(ttl - time.Second)
	if _, err := m.Acquire(ctx, slot, "second", ttl); !errors.Is(err, apperr.ErrSlotConflict) {
		t.Fatalf("slot must stay held until ttl elapses, got %v", err)
	}

	clock.Advance(time.Second)
	if _, err := m.Acquire(ctx, slot, "second", ttl); err != nil {
		t.Fatalf("slot must be free once ttl elapsed: %v", err)
	}
}

func TestManager_ReleaseIsIdempotent(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	slot := venueSlot(t, "09:00", "10:00")

	h, err := m.Acquire(ctx, slot, "first", DefaultTTL)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := m.Release(ctx, h.ID); err != nil {
			t.Fatalf("release #%d: %v", i+1, err)
		}
	}
	if err := m.Release(ctx, "unknown"); err != nil {
		t.Fatalf("release unknown: %v", err)
	}
	if _, err := m.Acquire(ctx, slot, "second", DefaultTTL); err != nil {
		t.Fatalf("released slot must be free: %v", err)
	}
}

func TestManager_Extend(t *testing.T) {
	m, clock := newManager(t)
	ctx := context.Background()

	h, err := m.Acquire(ctx, venueSlot(t, "09:00", "10:00"), "first", 10*time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	clock.Advance(8 * time.Minute)
	extended, err := m.Extend(ctx, h.ID, 10*time.Minute)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if want := clock.Now().Add(10 * time.Minute); !extended.ExpiresAt.Equal(want) {
		t.Fatalf("expires_at = %s, want %s", extended.ExpiresAt, want)
	}

	clock.Advance(10 * time.Minute)
	if _, err := m.Extend(ctx, h.ID, time.Minute); !errors.Is(err, apperr.ErrHoldExpired) {
		t.Fatalf("expected HoldExpired, got %v", err)
	}
	if _, err := m.Extend(ctx, "missing", time.Minute); !errors.Is(err, apperr.ErrHoldExpired) {
		t.Fatalf("expected HoldExpired for unknown hold, got %v", err)
	}
}

func TestManager_GetAndPurge(t *testing.T) {
	m, clock := newManager(t)
	ctx := context.Background()

	h, err := m.Acquire(ctx, venueSlot(t, "09:00", "10:00"), "first", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, active, _ := m.Get(ctx, h.ID); !active {
		t.Fatalf("fresh hold should be active")
	}

	clock.Advance(2 * time.Hour)
	if _, active, _ := m.Get(ctx, h.ID); active {
		t.Fatalf("hold past expiry must read as inactive")
	}

	n, err := m.Purge(ctx, clock.Now().Add(-time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("purge: n=%d err=%v", n, err)
	}
	if got, _, err := m.Get(ctx, h.ID); err != nil || got != nil {
		t.Fatalf("purged hold should be gone: %v %v", got, err)
	}
}

func TestManager_AcquireValidatesInput(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	if _, err := m.Acquire(ctx, Slot{Date: "2025-06-02"}, "r", DefaultTTL); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected InvalidArgument without resources, got %v", err)
	}
	if _, err := m.Acquire(ctx, venueSlot(t, "09:00", "10:00"), "r", 0); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected InvalidArgument for zero ttl, got %v", err)
	}
}
