// Package availability answers whether a slot is bookable.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/repository"
)

type ConflictKind string

const (
	ConflictBooking ConflictKind = "booking"
	ConflictHold    ConflictKind = "hold"
)

// Query describes a slot. Holds owned by OwnerRequestID do not count as
// conflicts, so a request never blocks itself.
type Query struct {
	Resources      []model.ResourceRef
	Date           string
	Interval       calendar.Interval
	OwnerRequestID string
	At             time.Time
}

type Conflict struct {
	Kind     ConflictKind
	Resource model.ResourceRef
	Interval calendar.Interval
	HoldID   string
}

type Result struct {
	Available bool
	Conflicts []Conflict
}

type Resolver struct {
	bookings repository.BookingRepository
	holds    repository.HoldRepository
}

func NewResolver(bookings repository.BookingRepository, holds repository.HoldRepository) *Resolver {
	return &Resolver{bookings: bookings, holds: holds}
}

// Check reports conflicts with confirmed bookings first, then with active
// holds of other requests. It never writes.
func (r *Resolver) Check(ctx context.Context, q Query) (Result, error) {
	var conflicts []Conflict

	for _, ref := range q.Resources {
		booked, err := r.bookings.ListConfirmedIntervals(ctx, ref, q.Date)
		if err != nil {
			return Result{}, fmt.Errorf("list confirmed intervals for %s: %w", ref, err)
		}
		if ok, overlapping := calendar.HasOverlap(q.Interval, booked); ok {
			for _, iv := range overlapping {
				conflicts = append(conflicts, Conflict{Kind: ConflictBooking, Resource: ref, Interval: iv})
			}
		}
	}

	for _, ref := range q.Resources {
		holds, err := r.holds.ListActive(ctx, ref, q.Date, q.At)
		if err != nil {
			return Result{}, fmt.Errorf("list active holds for %s: %w", ref, err)
		}
		for _, h := range holds {
			if q.OwnerRequestID != "" && h.OwnerRequestID == q.OwnerRequestID {
				continue
			}
			iv := calendar.Interval{Start: calendar.TimeOfDay(h.StartMinute), End: calendar.TimeOfDay(h.EndMinute)}
			if q.Interval.Overlaps(iv) {
				conflicts = append(conflicts, Conflict{Kind: ConflictHold, Resource: ref, Interval: iv, HoldID: h.ID})
			}
		}
	}

	return Result{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

func (r *Resolver) IsAvailable(ctx context.Context, q Query) (bool, error) {
	res, err := r.Check(ctx, q)
	if err != nil {
		return false, err
	}
	return res.Available, nil
}
