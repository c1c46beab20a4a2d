// Package checkouttest wires an orchestrator over an in-memory database for
// tests of the outer layers.
package checkouttest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/availability"
	"github.com/Leganyst/booking-engine/internal/checkout"
	"github.com/Leganyst/booking-engine/internal/db/dbtest"
	"github.com/Leganyst/booking-engine/internal/gateway/gatewaytest"
	"github.com/Leganyst/booking-engine/internal/hold"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/pricing"
	"github.com/Leganyst/booking-engine/internal/repository"
)

// Clock is a settable clock shared by the orchestrator and the hold manager.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type Env struct {
	DB      *gorm.DB
	Store   *repository.GormStore
	Orch    *checkout.Orchestrator
	Holds   *hold.Manager
	Gateway *gatewaytest.Fake
	Clock   *Clock
	Logger  *logrus.Logger
	Logs    *test.Hook
}

// New seeds venue "v1" (1000/h, Cricket 1200/h), coach "c1" (500/h) and
// promo SAVE10 (10%).
func New(t testing.TB) *Env {
	t.Helper()

	gdb := dbtest.Open(t)
	store := repository.NewGormStore(gdb)
	clock := &Clock{now: time.Now().UTC().Truncate(time.Second)}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	engine, err := pricing.NewEngine(pricing.DefaultServiceFeeRate, pricing.DefaultTaxRate)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	holds := hold.NewManager(
		store.Holds(),
		availability.NewResolver(store.Bookings(), store.Holds()),
		hold.WithClock(clock.Now),
		hold.WithLogger(logger),
	)
	gw := &gatewaytest.Fake{}
	orch := checkout.New(store, engine, holds, gw, checkout.Config{
		HoldTTL:        hold.DefaultTTL,
		PriceTolerance: 0.01,
		Currency:       "INR",
	}, checkout.WithClock(clock.Now), checkout.WithLogger(logger))

	seed := []any{
		&model.Venue{ID: "v1", Name: "Arena", HourlyRate: 1000, SportPricing: datatypes.JSONMap{"Cricket": 1200}},
		&model.Coach{ID: "c1", DisplayName: "Coach", HourlyRate: 500},
		&model.PromoCode{Code: "SAVE10", Kind: model.PromoPercentage, Percent: 0.10},
	}
	for _, row := range seed {
		if err := gdb.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}

	return &Env{
		DB:      gdb,
		Store:   store,
		Orch:    orch,
		Holds:   holds,
		Gateway: gw,
		Clock:   clock,
		Logger:  logger,
		Logs:    hook,
	}
}

// CricketRequest books v1 for Cricket on 2025-06-02 09:00-11:00 (total 2568).
func CricketRequest() checkout.BookingRequest {
	return checkout.BookingRequest{
		VenueID:   "v1",
		Sport:     "Cricket",
		Date:      "2025-06-02",
		StartTime: "09:00",
		EndTime:   "11:00",
		AccountID: "acc-1",
	}
}

// AwaitingPayment creates a session that is waiting for the gateway.
func (e *Env) AwaitingPayment(t testing.TB) *model.CheckoutSession {
	t.Helper()
	s, err := e.Orch.Create(context.Background(), CricketRequest())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if s.State != model.SessionAwaitingPayment {
		t.Fatalf("state = %s, want AWAITING_PAYMENT", s.State)
	}
	return s
}

// State reads the stored state without lazy expiry.
func (e *Env) State(t testing.TB, sessionID string) model.SessionState {
	t.Helper()
	var s model.CheckoutSession
	if err := e.DB.First(&s, "id = ?", sessionID).Error; err != nil {
		t.Fatalf("load session %s: %v", sessionID, err)
	}
	return s.State
}
