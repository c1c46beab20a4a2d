// Package hold manages short-lived exclusive holds on slots.
package hold

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/availability"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/repository"
)

// DefaultTTL is the reference hold lifetime.
const DefaultTTL = 10 * time.Minute

// Slot is what a hold covers: every listed resource on Date for Interval.
type Slot struct {
	Resources []model.ResourceRef
	Date      string
	Interval  calendar.Interval
}

func (s Slot) lockKeys() []string {
	keys := make([]string, 0, len(s.Resources))
	for _, ref := range s.Resources {
		keys = append(keys, ref.DayKey(s.Date))
	}
	return keys
}

func slotOf(h *model.ReservationHold) Slot {
	return Slot{
		Resources: h.Resources(),
		Date:      h.SlotDate,
		Interval:  calendar.Interval{Start: calendar.TimeOfDay(h.StartMinute), End: calendar.TimeOfDay(h.EndMinute)},
	}
}

type Manager struct {
	holds    repository.HoldRepository
	resolver *availability.Resolver
	locker   Locker
	now      func() time.Time
	log      logrus.FieldLogger
}

type Option func(*Manager)

func WithLocker(l Locker) Option { return func(m *Manager) { m.locker = l } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func WithLogger(log logrus.FieldLogger) Option { return func(m *Manager) { m.log = log } }

func NewManager(holds repository.HoldRepository, resolver *availability.Resolver, opts ...Option) *Manager {
	m := &Manager{
		holds:    holds,
		resolver: resolver,
		locker:   NewKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire places a hold on slot for requestID. The availability check and
// the insert run under the per resource-day lock, so of two racing callers
// for overlapping slots exactly one gets a hold; the other gets SlotConflict.
func (m *Manager) Acquire(ctx context.Context, slot Slot, requestID string, ttl time.Duration) (*model.ReservationHold, error) {
	if len(slot.Resources) == 0 || requestID == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "hold needs a resource and an owner request")
	}
	if ttl <= 0 {
		return nil, apperr.New(apperr.CodeInvalidArgument, "hold ttl must be positive")
	}

	var created *model.ReservationHold
	err := m.locker.WithLock(ctx, slot.lockKeys(), func(ctx context.Context) error {
		now := m.now()
		res, err := m.resolver.Check(ctx, availability.Query{
			Resources:      slot.Resources,
			Date:           slot.Date,
			Interval:       slot.Interval,
			OwnerRequestID: requestID,
			At:             now,
		})
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if !res.Available {
			return conflictError(slot, res.Conflicts)
		}

		h := &model.ReservationHold{
			SlotDate:       slot.Date,
			StartMinute:    slot.Interval.Start.Minutes(),
			EndMinute:      slot.Interval.End.Minutes(),
			OwnerRequestID: requestID,
			ExpiresAt:      now.Add(ttl),
		}
		for _, ref := range slot.Resources {
			id := ref.ID
			switch ref.Kind {
			case model.ResourceVenue:
				h.VenueID = &id
			case model.ResourceCoach:
				h.CoachID = &id
			}
		}
		if err := m.holds.Create(ctx, h); err != nil {
			return fmt.Errorf("create hold: %w", err)
		}
		created = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{
		"hold_id":    created.ID,
		"request_id": requestID,
		"date":       slot.Date,
		"interval":   slot.Interval.String(),
		"expires_at": created.ExpiresAt,
	}).Debug("hold acquired")
	return created, nil
}

func conflictError(slot Slot, conflicts []availability.Conflict) error {
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		parts = append(parts, fmt.Sprintf("%s %s %s", c.Resource, c.Kind, c.Interval))
	}
	return apperr.WithMetadata(
		apperr.CodeSlotConflict,
		fmt.Sprintf("slot %s %s is not available", slot.Date, slot.Interval),
		map[string]string{
			"date":      slot.Date,
			"interval":  slot.Interval.String(),
			"conflicts": strings.Join(parts, "; "),
		},
	)
}

// Release is idempotent: a released, expired or purged hold is a no-op.
func (m *Manager) Release(ctx context.Context, holdID string) error {
	if holdID == "" {
		return nil
	}
	changed, err := m.holds.Release(ctx, holdID, m.now())
	if err != nil {
		return fmt.Errorf("release hold %s: %w", holdID, err)
	}
	if changed {
		m.log.WithField("hold_id", holdID).Debug("hold released")
	}
	return nil
}

// Extend pushes expiry to now+ttl. It fails with HoldExpired once the hold
// is no longer active.
func (m *Manager) Extend(ctx context.Context, holdID string, ttl time.Duration) (*model.ReservationHold, error) {
	if ttl <= 0 {
		return nil, apperr.New(apperr.CodeInvalidArgument, "hold ttl must be positive")
	}
	h, err := m.holds.GetByID(ctx, holdID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, expiredError(holdID)
		}
		return nil, fmt.Errorf("get hold: %w", err)
	}

	// same lock as Acquire: a hold that lapses mid-extend may already be
	// replaced by someone else's
	err = m.locker.WithLock(ctx, slotOf(h).lockKeys(), func(ctx context.Context) error {
		fresh, err := m.holds.GetByID(ctx, holdID)
		if err != nil {
			if repository.IsNotFound(err) {
				return expiredError(holdID)
			}
			return fmt.Errorf("get hold: %w", err)
		}
		now := m.now()
		if !fresh.ActiveAt(now) {
			return expiredError(holdID)
		}
		fresh.ExpiresAt = now.Add(ttl)
		if err := m.holds.UpdateExpiry(ctx, holdID, fresh.ExpiresAt); err != nil {
			return fmt.Errorf("update hold expiry: %w", err)
		}
		h = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func expiredError(holdID string) error {
	return apperr.WithMetadata(apperr.CodeHoldExpired, "hold has expired", map[string]string{"hold_id": holdID})
}

// Get returns the hold and whether it is active right now.
func (m *Manager) Get(ctx context.Context, holdID string) (*model.ReservationHold, bool, error) {
	h, err := m.holds.GetByID(ctx, holdID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return h, h.ActiveAt(m.now()), nil
}

// Purge deletes released and expired holds older than before. Housekeeping
// only: inactive holds are already ignored everywhere.
func (m *Manager) Purge(ctx context.Context, before time.Time) (int64, error) {
	n, err := m.holds.DeleteInactive(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("purge holds: %w", err)
	}
	return n, nil
}

// IsConflict reports whether err is a slot conflict.
func IsConflict(err error) bool {
	return errors.Is(err, apperr.ErrSlotConflict)
}
