package checkout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Leganyst/booking-engine/internal/model"
)

// EventPublisher delivers transition events to downstream consumers such
// as notifications. Delivery is best effort; the audit table is the record.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

type nopPublisher struct{}

func (nopPublisher) PublishJSON(context.Context, string, any) error { return nil }

// Event is the broker payload for a session transition.
type Event struct {
	Event      string    `json:"event"`
	Version    int       `json:"version"`
	OccurredAt string    `json:"occurred_at"`
	Data       EventData `json:"data"`
}

type EventData struct {
	SessionID   string  `json:"session_id"`
	FromState   string  `json:"from_state"`
	State       string  `json:"state"`
	BookingID   string  `json:"booking_id,omitempty"`
	AttendeeRef string  `json:"attendee_ref"`
	DependentID string  `json:"dependent_id,omitempty"`
	VenueID     string  `json:"venue_id,omitempty"`
	CoachID     string  `json:"coach_id,omitempty"`
	Sport       string  `json:"sport"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Total       float64 `json:"total"`
	Reason      string  `json:"reason,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newEvent(s *model.CheckoutSession, from model.SessionState, reason string, at time.Time) Event {
	iv := sessionInterval(s)
	return Event{
		Event:      string(eventTypeFor(s.State)),
		Version:    1,
		OccurredAt: at.UTC().Format(time.RFC3339),
		Data: EventData{
			SessionID:   s.ID,
			FromState:   string(from),
			State:       string(s.State),
			BookingID:   deref(s.BookingID),
			AttendeeRef: s.AttendeeRef,
			DependentID: deref(s.DependentID),
			VenueID:     deref(s.VenueID),
			CoachID:     deref(s.CoachID),
			Sport:       s.Sport,
			Date:        s.SlotDate,
			StartTime:   iv.Start.String(),
			EndTime:     iv.End.String(),
			Total:       s.Price.Data().Total,
			Reason:      reason,
		},
	}
}

func auditRecord(ev Event, s *model.CheckoutSession, from model.SessionState) (*model.Event, error) {
	details, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, err
	}
	return &model.Event{
		EventType: model.EventType(ev.Event),
		SessionID: s.ID,
		BookingID: s.BookingID,
		FromState: from,
		ToState:   s.State,
		Details:   string(details),
	}, nil
}
