// Package gateway requests checkout URLs from payment providers.
package gateway

import (
	"context"
	"errors"
	"math"

	"github.com/Leganyst/booking-engine/internal/pricing"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

func (o Outcome) Valid() bool { return o == OutcomeSuccess || o == OutcomeFailure }

// PaymentRequest is what the engine asks a provider to collect.
type PaymentRequest struct {
	SessionID   string
	Amount      float64
	Currency    string
	Split       *pricing.Split
	Description string
	ReturnURL   string
}

// CheckoutLink is the redirect target returned by a provider.
type CheckoutLink struct {
	URL       string
	Reference string
}

// Adapter is the payment provider port. Implementations do network I/O and
// must honour ctx.
type Adapter interface {
	CreateCheckout(ctx context.Context, req PaymentRequest) (CheckoutLink, error)
}

var ErrEmptyCheckoutURL = errors.New("gateway returned an empty checkout url")

// MinorUnits converts an amount to the currency's smallest unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
