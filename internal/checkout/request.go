package checkout

import (
	"strings"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/pricing"
)

// BookingRequest is the caller's booking input. Identity checks happen
// upstream; AccountID is trusted as given.
type BookingRequest struct {
	VenueID     string
	CoachID     string
	Sport       string
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM, venue-local
	EndTime     string
	AccountID   string
	DependentID string
	PromoCode   string
	// ExpectedTotal is the total shown to the customer when they picked the
	// slot. Optional.
	ExpectedTotal *float64
}

// toSession validates r and builds an unsaved COLLECTING session.
// Validation errors come back verbatim: no session, no hold, no pricing.
func (r BookingRequest) toSession() (*model.CheckoutSession, error) {
	venueID := strings.TrimSpace(r.VenueID)
	coachID := strings.TrimSpace(r.CoachID)
	if venueID == "" && coachID == "" {
		return nil, invalidArgument("venue_id or coach_id is required", "venue_id")
	}
	sport := strings.TrimSpace(r.Sport)
	if sport == "" {
		return nil, invalidArgument("sport is required", "sport")
	}
	account := strings.TrimSpace(r.AccountID)
	if account == "" {
		return nil, invalidArgument("account_id is required", "account_id")
	}
	date, err := calendar.ParseDate(r.Date)
	if err != nil {
		return nil, invalidArgument("date must be YYYY-MM-DD", "date")
	}
	start, err := calendar.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return nil, invalidArgument("start_time must be HH:MM", "start_time")
	}
	end, err := calendar.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return nil, invalidArgument("end_time must be HH:MM", "end_time")
	}
	if _, err := pricing.CalculateDuration(start, end); err != nil {
		return nil, err
	}
	if r.ExpectedTotal != nil && *r.ExpectedTotal < 0 {
		return nil, invalidArgument("expected_total must not be negative", "expected_total")
	}

	s := &model.CheckoutSession{
		Sport:         sport,
		SlotDate:      calendar.FormatDate(date),
		StartMinute:   start.Minutes(),
		EndMinute:     end.Minutes(),
		AttendeeRef:   account,
		PromoCode:     pricing.NormalizeCode(r.PromoCode),
		ExpectedTotal: r.ExpectedTotal,
		State:         model.SessionCollecting,
	}
	if venueID != "" {
		s.VenueID = &venueID
	}
	if coachID != "" {
		s.CoachID = &coachID
	}
	if dep := strings.TrimSpace(r.DependentID); dep != "" {
		s.DependentID = &dep
	}
	return s, nil
}

func invalidArgument(msg, field string) error {
	return apperr.WithMetadata(apperr.CodeInvalidArgument, msg, map[string]string{"field": field})
}

func sessionInterval(s *model.CheckoutSession) calendar.Interval {
	return calendar.Interval{Start: calendar.TimeOfDay(s.StartMinute), End: calendar.TimeOfDay(s.EndMinute)}
}
