// Package checkout drives a booking request from collected details to a
// confirmed booking. Every state change goes through one transition path
// that persists the session, writes the audit event and publishes it.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/gateway"
	"github.com/Leganyst/booking-engine/internal/hold"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/pricing"
	"github.com/Leganyst/booking-engine/internal/repository"
)

const tracerName = "github.com/Leganyst/booking-engine/internal/checkout"

type Config struct {
	HoldTTL time.Duration
	// PriceTolerance is the largest accepted difference between the total
	// the customer saw and the recomputed one.
	PriceTolerance float64
	Currency       string
	ReturnURL      string
}

type Orchestrator struct {
	store     repository.Store
	engine    *pricing.Engine
	holds     *hold.Manager
	gateway   gateway.Adapter
	sessions  hold.Locker
	publisher EventPublisher
	cfg       Config
	now       func() time.Time
	log       logrus.FieldLogger
	tracer    trace.Tracer
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

func WithLogger(log logrus.FieldLogger) Option { return func(o *Orchestrator) { o.log = log } }

func WithPublisher(p EventPublisher) Option { return func(o *Orchestrator) { o.publisher = p } }

// WithSessionLocker replaces the in-process per-session lock, e.g. with
// advisory locks when several replicas serve the same sessions.
func WithSessionLocker(l hold.Locker) Option { return func(o *Orchestrator) { o.sessions = l } }

func New(
	store repository.Store,
	engine *pricing.Engine,
	holds *hold.Manager,
	gw gateway.Adapter,
	cfg Config,
	opts ...Option,
) *Orchestrator {
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = hold.DefaultTTL
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	o := &Orchestrator{
		store:     store,
		engine:    engine,
		holds:     holds,
		gateway:   gw,
		sessions:  hold.NewKeyedMutex(),
		publisher: nopPublisher{},
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		log:       logrus.StandardLogger(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) HoldTTL() time.Duration { return o.cfg.HoldTTL }

func (o *Orchestrator) startSpan(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	ctx, span := o.tracer.Start(ctx, "checkout."+name)
	if sessionID != "" {
		span.SetAttributes(attribute.String("session.id", sessionID))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

func (o *Orchestrator) sessionLog(s *model.CheckoutSession) logrus.FieldLogger {
	return o.log.WithFields(logrus.Fields{
		"session_id": s.ID,
		"state":      s.State,
		"hold_id":    deref(s.HoldID),
	})
}

// withSession serializes all work on one session.
func (o *Orchestrator) withSession(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	return o.sessions.WithLock(ctx, []string{"session:" + id}, fn)
}

// load reads a session and applies lazy expiry.
func (o *Orchestrator) load(ctx context.Context, id string) (*model.CheckoutSession, error) {
	s, err := o.store.Sessions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.expireIfLapsed(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// expireIfLapsed moves HELD/AWAITING_PAYMENT to EXPIRED once the hold TTL
// has passed. Correctness does not depend on the sweeper: every read of a
// session goes through here.
func (o *Orchestrator) expireIfLapsed(ctx context.Context, s *model.CheckoutSession) error {
	if !holding(s.State) || s.HoldExpiresAt == nil {
		return nil
	}
	if o.now().Before(*s.HoldExpiresAt) {
		return nil
	}
	return o.transition(ctx, s, model.SessionExpired, "hold expired", o.releaseHold)
}

// releaseHold is a transition side effect.
func (o *Orchestrator) releaseHold(ctx context.Context, tx repository.Store, s *model.CheckoutSession) error {
	if s.HoldID == nil {
		return nil
	}
	if _, err := tx.Holds().Release(ctx, *s.HoldID, o.now()); err != nil {
		return fmt.Errorf("release hold: %w", err)
	}
	return nil
}

// transition persists s in state `to` together with any side effects in one
// transaction, then publishes the event. Side effects may adjust next; s is
// updated only when the transaction commits.
func (o *Orchestrator) transition(
	ctx context.Context,
	s *model.CheckoutSession,
	to model.SessionState,
	reason string,
	sideEffects func(ctx context.Context, tx repository.Store, next *model.CheckoutSession) error,
) error {
	from := s.State
	if !canTransition(from, to) {
		return invalidTransition(s, to)
	}

	next := *s
	next.State = to
	if to == model.SessionFailed || to == model.SessionCancelled || to == model.SessionExpired {
		next.FailureReason = reason
	}

	var ev Event
	err := o.store.Transaction(ctx, func(tx repository.Store) error {
		if sideEffects != nil {
			if err := sideEffects(ctx, tx, &next); err != nil {
				return err
			}
		}
		if err := tx.Sessions().Save(ctx, &next); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		ev = newEvent(&next, from, reason, o.now())
		record, err := auditRecord(ev, &next, from)
		if err != nil {
			return fmt.Errorf("encode audit event: %w", err)
		}
		if err := tx.Events().Create(ctx, record); err != nil {
			return fmt.Errorf("write audit event: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transition %s -> %s: %w", from, to, err)
	}
	*s = next

	o.sessionLog(s).WithFields(logrus.Fields{"from": from, "reason": reason}).Info("session transition")
	if err := o.publisher.PublishJSON(ctx, ev.Event, ev); err != nil {
		o.sessionLog(s).WithError(err).Warn("publish session event")
	}
	return nil
}

// priceInput resolves live rates and the promo record for s.
func (o *Orchestrator) priceInput(ctx context.Context, s *model.CheckoutSession) (pricing.Input, error) {
	iv := sessionInterval(s)
	in := pricing.Input{
		Start:     iv.Start,
		End:       iv.End,
		Sport:     s.Sport,
		PromoCode: s.PromoCode,
		At:        o.now(),
	}
	catalog := o.store.Catalog()
	if s.VenueID != nil {
		v, err := catalog.GetVenue(ctx, *s.VenueID)
		if err != nil {
			return pricing.Input{}, err
		}
		r := v.Rates()
		in.Venue = &r
	}
	if s.CoachID != nil {
		c, err := catalog.GetCoach(ctx, *s.CoachID)
		if err != nil {
			return pricing.Input{}, err
		}
		r := c.Rates()
		in.Coach = &r
	}
	if s.PromoCode != "" {
		p, err := o.store.Promos().GetByCode(ctx, s.PromoCode)
		if err != nil {
			return pricing.Input{}, fmt.Errorf("load promo code: %w", err)
		}
		in.Promo = p.ToPricing()
	}
	return in, nil
}

func (o *Orchestrator) price(ctx context.Context, s *model.CheckoutSession) (pricing.Breakdown, error) {
	in, err := o.priceInput(ctx, s)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return o.engine.Compute(in)
}

// tagSession adds the session id to a domain error so callers can retry or
// inspect the session.
func tagSession(err error, sessionID string) error {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return err
	}
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md["session_id"] = sessionID
	return &apperr.Error{Code: e.Code, Message: e.Message, Metadata: md, Cause: e.Cause}
}

func snapshot(b pricing.Breakdown) datatypes.JSONType[pricing.Breakdown] {
	return datatypes.NewJSONType(b)
}
