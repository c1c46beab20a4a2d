package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/gateway"
	"github.com/Leganyst/booking-engine/internal/hold"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/pricing"
	"github.com/Leganyst/booking-engine/internal/repository"
)

// Quote prices a request without holding anything.
func (o *Orchestrator) Quote(ctx context.Context, req BookingRequest) (pricing.Breakdown, error) {
	ctx, span := o.startSpan(ctx, "Quote", "")
	b, err := o.quote(ctx, req)
	endSpan(span, err)
	return b, err
}

func (o *Orchestrator) quote(ctx context.Context, req BookingRequest) (pricing.Breakdown, error) {
	s, err := req.toSession()
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return o.price(ctx, s)
}

// Create runs the whole happy path: open, hold, issue checkout.
// On SlotConflict the session stays COLLECTING; on a gateway error it stays
// HELD and can be retried with RetryCheckout. Both errors carry session_id.
func (o *Orchestrator) Create(ctx context.Context, req BookingRequest) (*model.CheckoutSession, error) {
	s, err := o.Open(ctx, req)
	if err != nil {
		return nil, err
	}
	if s, err = o.Hold(ctx, s.ID); err != nil {
		return nil, err
	}
	return o.IssueCheckout(ctx, s.ID)
}

// Open validates the request, checks that the resources exist and stores a
// COLLECTING session.
func (o *Orchestrator) Open(ctx context.Context, req BookingRequest) (*model.CheckoutSession, error) {
	ctx, span := o.startSpan(ctx, "Open", "")
	s, err := o.open(ctx, req)
	endSpan(span, err)
	return s, err
}

func (o *Orchestrator) open(ctx context.Context, req BookingRequest) (*model.CheckoutSession, error) {
	s, err := req.toSession()
	if err != nil {
		return nil, err
	}
	catalog := o.store.Catalog()
	if s.VenueID != nil {
		if _, err := catalog.GetVenue(ctx, *s.VenueID); err != nil {
			return nil, err
		}
	}
	if s.CoachID != nil {
		if _, err := catalog.GetCoach(ctx, *s.CoachID); err != nil {
			return nil, err
		}
	}
	if err := o.store.Sessions().Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	o.sessionLog(s).Debug("session opened")
	return s, nil
}

// Hold moves COLLECTING to HELD: prices the request and acquires the slot.
// Holding an already HELD or AWAITING_PAYMENT session returns it unchanged.
func (o *Orchestrator) Hold(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	ctx, span := o.startSpan(ctx, "Hold", sessionID)
	var s *model.CheckoutSession
	err := o.withSession(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = o.hold(ctx, sessionID)
		return err
	})
	endSpan(span, err)
	if err != nil {
		return nil, tagSession(err, sessionID)
	}
	return s, nil
}

func (o *Orchestrator) hold(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	s, err := o.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case holding(s.State):
		return s, nil
	case s.State != model.SessionCollecting:
		return nil, invalidTransition(s, model.SessionHeld)
	}

	breakdown, err := o.price(ctx, s)
	if err != nil {
		return nil, err
	}

	h, err := o.holds.Acquire(ctx, hold.Slot{
		Resources: s.Resources(),
		Date:      s.SlotDate,
		Interval:  sessionInterval(s),
	}, s.ID, o.cfg.HoldTTL)
	if err != nil {
		if hold.IsConflict(err) {
			o.sessionLog(s).WithError(err).Info("slot conflict")
		}
		return nil, err
	}

	err = o.transition(ctx, s, model.SessionHeld, "", func(_ context.Context, _ repository.Store, next *model.CheckoutSession) error {
		next.HoldID = &h.ID
		expires := h.ExpiresAt
		next.HoldExpiresAt = &expires
		next.Price = snapshot(breakdown)
		return nil
	})
	if err != nil {
		// the hold must not outlive a session that never reached HELD
		if rerr := o.holds.Release(ctx, h.ID); rerr != nil {
			o.sessionLog(s).WithError(rerr).Error("release orphaned hold")
		}
		return nil, err
	}
	return s, nil
}

// IssueCheckout moves HELD to AWAITING_PAYMENT. The price is recomputed from
// the live request and compared with what the customer saw; a difference
// beyond the tolerance fails the session. The gateway is called without the
// session lock, so a cancel during the call is not blocked; a link that
// arrives after the session moved on is dropped.
func (o *Orchestrator) IssueCheckout(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	ctx, span := o.startSpan(ctx, "IssueCheckout", sessionID)
	s, err := o.issueCheckout(ctx, sessionID)
	endSpan(span, err)
	if err != nil {
		return nil, tagSession(err, sessionID)
	}
	return s, nil
}

// RetryCheckout re-issues the checkout URL for a session left HELD after a
// gateway error.
func (o *Orchestrator) RetryCheckout(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	return o.IssueCheckout(ctx, sessionID)
}

func (o *Orchestrator) issueCheckout(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	var (
		s       *model.CheckoutSession
		payment gateway.PaymentRequest
		done    bool
	)
	err := o.withSession(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = o.load(ctx, sessionID)
		if err != nil {
			return err
		}
		switch s.State {
		case model.SessionAwaitingPayment:
			done = true
			return nil
		case model.SessionHeld:
		default:
			return invalidTransition(s, model.SessionAwaitingPayment)
		}

		breakdown, err := o.price(ctx, s)
		if err != nil {
			return err
		}
		if err := o.checkPrice(ctx, s, breakdown); err != nil {
			return err
		}
		s.Price = snapshot(breakdown)
		if err := o.store.Sessions().Save(ctx, s); err != nil {
			return fmt.Errorf("save recomputed price: %w", err)
		}

		payment = gateway.PaymentRequest{
			SessionID:   s.ID,
			Amount:      breakdown.Total,
			Currency:    o.cfg.Currency,
			Split:       breakdown.Split,
			Description: fmt.Sprintf("%s booking %s %s", s.Sport, s.SlotDate, sessionInterval(s)),
			ReturnURL:   o.cfg.ReturnURL,
		}
		return nil
	})
	if err != nil || done {
		return s, err
	}

	link, err := o.gateway.CreateCheckout(ctx, payment)
	if err == nil && link.URL == "" {
		err = gateway.ErrEmptyCheckoutURL
	}
	if err != nil {
		o.sessionLog(s).WithError(err).Warn("gateway checkout failed, session stays HELD")
		return nil, apperr.Wrap(apperr.CodeGatewayUnavailable, "payment gateway did not issue a checkout url", err)
	}

	err = o.withSession(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = o.load(ctx, sessionID)
		if err != nil {
			return err
		}
		switch s.State {
		case model.SessionHeld:
		case model.SessionAwaitingPayment:
			// a concurrent issue won; its link stands
			return nil
		default:
			o.sessionLog(s).WithField("gateway_reference", link.Reference).
				Warn("checkout link arrived after the session ended, dropping it")
			return invalidTransition(s, model.SessionAwaitingPayment)
		}
		return o.transition(ctx, s, model.SessionAwaitingPayment, "", func(_ context.Context, _ repository.Store, next *model.CheckoutSession) error {
			next.CheckoutURL = link.URL
			next.GatewayReference = link.Reference
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// checkPrice compares the recomputed total with the one the customer saw,
// or with the total priced at hold time when the caller sent none.
func (o *Orchestrator) checkPrice(ctx context.Context, s *model.CheckoutSession, recomputed pricing.Breakdown) error {
	expected := s.Price.Data().Total
	if s.ExpectedTotal != nil {
		expected = *s.ExpectedTotal
	}
	if pricing.WithinTolerance(expected, recomputed.Total, o.cfg.PriceTolerance) {
		return nil
	}

	reason := fmt.Sprintf("price mismatch: expected %.2f, recomputed %.2f", expected, recomputed.Total)
	o.sessionLog(s).WithFields(logrus.Fields{
		"expected_total":   expected,
		"recomputed_total": recomputed.Total,
	}).Error("price mismatch, failing session")

	if err := o.transition(ctx, s, model.SessionFailed, reason, o.releaseHold); err != nil {
		return err
	}
	return apperr.WithMetadata(apperr.CodePriceMismatch, reason, map[string]string{
		"expected_total":   fmt.Sprintf("%.2f", expected),
		"recomputed_total": fmt.Sprintf("%.2f", recomputed.Total),
	})
}

// PaymentOutcome is an inbound gateway notification.
type PaymentOutcome struct {
	SessionID        string
	Outcome          gateway.Outcome
	GatewayReference string
	Reason           string
}

// HandlePaymentOutcome finalizes an AWAITING_PAYMENT session. It is
// idempotent: outcomes for terminal sessions are accepted and ignored, so a
// late success never resurrects an expired or cancelled session. An outcome
// for a session that never issued a checkout is a gateway contract violation
// and fails the session.
func (o *Orchestrator) HandlePaymentOutcome(ctx context.Context, in PaymentOutcome) (*model.CheckoutSession, error) {
	ctx, span := o.startSpan(ctx, "HandlePaymentOutcome", in.SessionID)
	if !in.Outcome.Valid() {
		err := invalidArgument(fmt.Sprintf("unknown payment outcome %q", in.Outcome), "outcome")
		endSpan(span, err)
		return nil, err
	}

	var s *model.CheckoutSession
	err := o.withSession(ctx, in.SessionID, func(ctx context.Context) error {
		var err error
		s, err = o.load(ctx, in.SessionID)
		if err != nil {
			return err
		}
		return o.applyOutcome(ctx, s, in)
	})
	endSpan(span, err)
	if err != nil {
		return nil, tagSession(err, in.SessionID)
	}
	return s, nil
}

func (o *Orchestrator) applyOutcome(ctx context.Context, s *model.CheckoutSession, in PaymentOutcome) error {
	log := o.sessionLog(s).WithFields(logrus.Fields{
		"outcome":           in.Outcome,
		"gateway_reference": in.GatewayReference,
	})

	if s.State.Terminal() {
		replay := (in.Outcome == gateway.OutcomeSuccess && s.State == model.SessionConfirmed) ||
			(in.Outcome == gateway.OutcomeFailure && s.State == model.SessionFailed)
		switch {
		case replay:
			log.Debug("payment outcome replay ignored")
		case in.Outcome == gateway.OutcomeSuccess:
			// money taken for a slot that is no longer held: needs a refund
			log.Error("payment success for a session that is no longer payable, ignored")
		default:
			log.Warn("payment outcome for a terminal session ignored")
		}
		return nil
	}

	if s.State != model.SessionAwaitingPayment {
		log.Error("payment outcome before checkout was issued, failing session")
		violation := invalidTransition(s, outcomeTarget(in.Outcome))
		reason := fmt.Sprintf("payment %s reported in state %s", in.Outcome, s.State)
		if err := o.transition(ctx, s, model.SessionFailed, reason, o.releaseHold); err != nil {
			return err
		}
		return violation
	}

	if in.Outcome == gateway.OutcomeFailure {
		reason := in.Reason
		if reason == "" {
			reason = "payment failed"
		}
		return o.transition(ctx, s, model.SessionFailed, reason, func(ctx context.Context, tx repository.Store, next *model.CheckoutSession) error {
			if in.GatewayReference != "" {
				next.GatewayReference = in.GatewayReference
			}
			return o.releaseHold(ctx, tx, next)
		})
	}

	return o.transition(ctx, s, model.SessionConfirmed, "", func(ctx context.Context, tx repository.Store, next *model.CheckoutSession) error {
		if in.GatewayReference != "" {
			next.GatewayReference = in.GatewayReference
		}
		breakdown := next.Price.Data()
		booking, err := tx.Bookings().RecordConfirmed(ctx, &model.Booking{
			SessionID:        next.ID,
			VenueID:          next.VenueID,
			CoachID:          next.CoachID,
			AttendeeRef:      next.AttendeeRef,
			DependentID:      next.DependentID,
			Sport:            next.Sport,
			SlotDate:         next.SlotDate,
			StartMinute:      next.StartMinute,
			EndMinute:        next.EndMinute,
			Total:            breakdown.Total,
			Price:            snapshot(breakdown),
			GatewayReference: next.GatewayReference,
		})
		if err != nil {
			return fmt.Errorf("record booking: %w", err)
		}
		next.BookingID = &booking.ID
		return o.releaseHold(ctx, tx, next)
	})
}

func outcomeTarget(outcome gateway.Outcome) model.SessionState {
	if outcome == gateway.OutcomeSuccess {
		return model.SessionConfirmed
	}
	return model.SessionFailed
}

// Cancel aborts a non-terminal session and releases its hold. Cancelling a
// cancelled session is a no-op; other terminal states fail.
func (o *Orchestrator) Cancel(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	return o.cancel(ctx, sessionID, "cancelled by caller")
}

func (o *Orchestrator) cancel(ctx context.Context, sessionID, reason string) (*model.CheckoutSession, error) {
	ctx, span := o.startSpan(ctx, "Cancel", sessionID)
	var s *model.CheckoutSession
	err := o.withSession(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = o.load(ctx, sessionID)
		if err != nil {
			return err
		}
		if s.State == model.SessionCancelled {
			return nil
		}
		return o.transition(ctx, s, model.SessionCancelled, reason, o.releaseHold)
	})
	endSpan(span, err)
	if err != nil {
		return nil, tagSession(err, sessionID)
	}
	return s, nil
}

// Get returns the session, expiring it first if its hold has lapsed.
func (o *Orchestrator) Get(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	var s *model.CheckoutSession
	err := o.withSession(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = o.load(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Extend gives a HELD or AWAITING_PAYMENT session more time. A zero ttl
// means the configured hold TTL. Extending after expiry fails with
// HoldExpired and leaves the session EXPIRED.
func (o *Orchestrator) Extend(ctx context.Context, sessionID string, ttl time.Duration) (*model.CheckoutSession, error) {
	ctx, span := o.startSpan(ctx, "Extend", sessionID)
	if ttl <= 0 {
		ttl = o.cfg.HoldTTL
	}

	var s *model.CheckoutSession
	err := o.withSession(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = o.load(ctx, sessionID)
		if err != nil {
			return err
		}
		if s.State == model.SessionExpired {
			return apperr.WithMetadata(apperr.CodeHoldExpired, "hold has expired", map[string]string{"hold_id": deref(s.HoldID)})
		}
		if !holding(s.State) || s.HoldID == nil {
			return apperr.WithMetadata(apperr.CodeInvalidTransition,
				fmt.Sprintf("cannot extend a session in state %s", s.State),
				map[string]string{"session_id": s.ID, "state": string(s.State)})
		}

		h, err := o.holds.Extend(ctx, *s.HoldID, ttl)
		if err != nil {
			if apperr.CodeOf(err) == apperr.CodeHoldExpired {
				if terr := o.transition(ctx, s, model.SessionExpired, "hold expired", o.releaseHold); terr != nil {
					return terr
				}
			}
			return err
		}
		expires := h.ExpiresAt
		s.HoldExpiresAt = &expires
		if err := o.store.Sessions().Save(ctx, s); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		o.sessionLog(s).WithField("expires_at", expires).Debug("hold extended")
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return nil, tagSession(err, sessionID)
	}
	return s, nil
}

// List returns the attendee's sessions, newest first.
func (o *Orchestrator) List(ctx context.Context, attendeeRef string, page, pageSize int) (calendar.Page[model.CheckoutSession], error) {
	if attendeeRef == "" {
		return calendar.Page[model.CheckoutSession]{}, invalidArgument("attendee_ref is required", "attendee_ref")
	}
	page, pageSize = calendar.Normalize(page, pageSize)
	items, total, err := o.store.Sessions().ListByAttendee(ctx, attendeeRef, pageSize, calendar.Offset(page, pageSize))
	if err != nil {
		return calendar.Page[model.CheckoutSession]{}, fmt.Errorf("list sessions: %w", err)
	}
	now := o.now()
	for i := range items {
		// reads are lazy-expired in the view; the row is fixed on next access
		if holding(items[i].State) && items[i].HoldExpiresAt != nil && !now.Before(*items[i].HoldExpiresAt) {
			items[i].State = model.SessionExpired
		}
	}
	return calendar.NewPage(items, page, pageSize, int(total)), nil
}

// SweepResult counts what a housekeeping pass changed.
type SweepResult struct {
	Expired   int
	Abandoned int
	Purged    int64
}

// Sweep expires lapsed sessions, cancels sessions stuck in COLLECTING for
// longer than the hold TTL and purges inactive holds older than retention.
// Housekeeping only: reads already treat lapsed holds as gone.
func (o *Orchestrator) Sweep(ctx context.Context, retention time.Duration, batch int) (SweepResult, error) {
	ctx, span := o.startSpan(ctx, "Sweep", "")
	res, err := o.sweep(ctx, retention, batch)
	endSpan(span, err)
	return res, err
}

func (o *Orchestrator) sweep(ctx context.Context, retention time.Duration, batch int) (SweepResult, error) {
	var res SweepResult
	now := o.now()

	lapsed, err := o.store.Sessions().ListLapsed(ctx, now, batch)
	if err != nil {
		return res, fmt.Errorf("list lapsed sessions: %w", err)
	}
	for _, s := range lapsed {
		got, err := o.Get(ctx, s.ID)
		if err != nil {
			o.log.WithError(err).WithField("session_id", s.ID).Warn("sweep: expire session")
			continue
		}
		if got.State == model.SessionExpired {
			res.Expired++
		}
	}

	abandoned, err := o.store.Sessions().ListAbandoned(ctx, now.Add(-o.cfg.HoldTTL), batch)
	if err != nil {
		return res, fmt.Errorf("list abandoned sessions: %w", err)
	}
	for _, s := range abandoned {
		if _, err := o.cancel(ctx, s.ID, "abandoned before hold"); err != nil {
			o.log.WithError(err).WithField("session_id", s.ID).Warn("sweep: cancel abandoned session")
			continue
		}
		res.Abandoned++
	}

	if retention > 0 {
		n, err := o.holds.Purge(ctx, now.Add(-retention))
		if err != nil {
			return res, err
		}
		res.Purged = n
	}
	return res, nil
}

// Events returns the audit trail of a session.
func (o *Orchestrator) Events(ctx context.Context, sessionID string) ([]model.Event, error) {
	return o.store.Events().ListBySession(ctx, sessionID)
}
