package checkout

import (
	"fmt"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/model"
)

// transitions lists every allowed move. Terminal states have no entry.
var transitions = map[model.SessionState][]model.SessionState{
	model.SessionCollecting: {
		model.SessionHeld,
		model.SessionCancelled,
		model.SessionFailed,
	},
	model.SessionHeld: {
		model.SessionAwaitingPayment,
		model.SessionExpired,
		model.SessionCancelled,
		model.SessionFailed,
	},
	model.SessionAwaitingPayment: {
		model.SessionConfirmed,
		model.SessionFailed,
		model.SessionExpired,
		model.SessionCancelled,
	},
}

func canTransition(from, to model.SessionState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func invalidTransition(s *model.CheckoutSession, to model.SessionState) error {
	return apperr.WithMetadata(
		apperr.CodeInvalidTransition,
		fmt.Sprintf("cannot move session from %s to %s", s.State, to),
		map[string]string{"session_id": s.ID, "state": string(s.State), "target": string(to)},
	)
}

// holding reports whether the session should own an active hold.
func holding(state model.SessionState) bool {
	return state == model.SessionHeld || state == model.SessionAwaitingPayment
}

func eventTypeFor(to model.SessionState) model.EventType {
	switch to {
	case model.SessionHeld:
		return model.EventTypeCheckoutHeld
	case model.SessionAwaitingPayment:
		return model.EventTypeCheckoutAwaitingPayment
	case model.SessionConfirmed:
		return model.EventTypeBookingConfirmed
	case model.SessionExpired:
		return model.EventTypeCheckoutExpired
	case model.SessionCancelled:
		return model.EventTypeCheckoutCancelled
	default:
		return model.EventTypeCheckoutFailed
	}
}
