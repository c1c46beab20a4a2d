package availability

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/db/dbtest"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/pricing"
	"github.com/Leganyst/booking-engine/internal/repository"
)

const day = "2025-06-01"

func ptr[T any](v T) *T { return &v }

func interval(t *testing.T, start, end string) calendar.Interval {
	t.Helper()
	iv, err := calendar.NewInterval(calendar.MustTimeOfDay(start), calendar.MustTimeOfDay(end))
	if err != nil {
		t.Fatalf("interval %s-%s: %v", start, end, err)
	}
	return iv
}

func setup(t *testing.T) (*Resolver, *repository.GormStore, time.Time) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewGormStore(dbtest.Open(t))
	now := time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC)

	// venue v1 is booked 09:00-10:00
	_, err := store.Bookings().RecordConfirmed(ctx, &model.Booking{
		SessionID: "booked", VenueID: ptr("v1"), AttendeeRef: "acc", Sport: "Cricket",
		SlotDate: day, StartMinute: 9 * 60, EndMinute: 10 * 60,
		Price: datatypes.NewJSONType(pricing.Breakdown{}),
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	// coach c1 is held 12:00-13:00 by request "other"
	err = store.Holds().Create(ctx, &model.ReservationHold{
		CoachID: ptr("c1"), SlotDate: day, StartMinute: 12 * 60, EndMinute: 13 * 60,
		OwnerRequestID: "other", ExpiresAt: now.Add(10 * time.Minute),
	})
	if err != nil {
		t.Fatalf("seed hold: %v", err)
	}

	return NewResolver(store.Bookings(), store.Holds()), store, now
}

func TestResolver_Check(t *testing.T) {
	r, _, now := setup(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		resources []model.ResourceRef
		start     string
		end       string
		owner     string
		at        time.Time
		available bool
	}{
		{"overlaps booking", []model.ResourceRef{model.VenueRef("v1")}, "09:30", "10:30", "", now, false},
		{"back to back after booking", []model.ResourceRef{model.VenueRef("v1")}, "10:00", "11:00", "", now, true},
		{"back to back before booking", []model.ResourceRef{model.VenueRef("v1")}, "08:00", "09:00", "", now, true},
		{"other venue", []model.ResourceRef{model.VenueRef("v2")}, "09:00", "10:00", "", now, true},
		{"overlaps foreign hold", []model.ResourceRef{model.CoachRef("c1")}, "12:30", "13:30", "", now, false},
		{"own hold ignored", []model.ResourceRef{model.CoachRef("c1")}, "12:00", "13:00", "other", now, true},
		{"hold lapsed", []model.ResourceRef{model.CoachRef("c1")}, "12:00", "13:00", "", now.Add(10 * time.Minute), true},
		{"venue free, coach held", []model.ResourceRef{model.VenueRef("v1"), model.CoachRef("c1")}, "12:00", "12:30", "", now, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := r.IsAvailable(ctx, Query{
				Resources:      tc.resources,
				Date:           day,
				Interval:       interval(t, tc.start, tc.end),
				OwnerRequestID: tc.owner,
				At:             tc.at,
			})
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if ok != tc.available {
				t.Fatalf("available = %v, want %v", ok, tc.available)
			}
		})
	}
}

func TestResolver_ReportsConflicts(t *testing.T) {
	r, _, now := setup(t)

	res, err := r.Check(context.Background(), Query{
		Resources: []model.ResourceRef{model.VenueRef("v1"), model.CoachRef("c1")},
		Date:      day,
		Interval:  interval(t, "09:00", "13:00"),
		At:        now,
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Available || len(res.Conflicts) != 2 {
		t.Fatalf("expected two conflicts, got %+v", res)
	}
	if res.Conflicts[0].Kind != ConflictBooking || res.Conflicts[1].Kind != ConflictHold {
		t.Fatalf("bookings must be reported before holds: %+v", res.Conflicts)
	}
	if res.Conflicts[1].HoldID == "" {
		t.Fatalf("hold conflict should carry the hold id")
	}
}

func TestResolver_DoesNotMutate(t *testing.T) {
	r, store, now := setup(t)
	ctx := context.Background()

	var before int64
	store.DB().Model(&model.ReservationHold{}).Count(&before)
	for i := 0; i < 3; i++ {
		if _, err := r.Check(ctx, Query{Resources: []model.ResourceRef{model.CoachRef("c1")}, Date: day, Interval: interval(t, "12:00", "13:00"), At: now}); err != nil {
			t.Fatalf("check: %v", err)
		}
	}
	var after int64
	store.DB().Model(&model.ReservationHold{}).Count(&after)
	if before != after {
		t.Fatalf("resolver changed hold count: %d -> %d", before, after)
	}
}
