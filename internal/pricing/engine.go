package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/calendar"
)

// Reference rates.
const (
	DefaultServiceFeeRate = 0.02
	DefaultTaxRate        = 0.05
)

// Split divides the subtotal between payees. Shares are never rounded.
type Split struct {
	VenueShare float64 `json:"venue_share"`
	CoachShare float64 `json:"coach_share"`
}

// Breakdown is the full price of a booking request.
type Breakdown struct {
	DurationMinutes int     `json:"duration_minutes"`
	VenueRate       float64 `json:"venue_rate"`
	CoachRate       float64 `json:"coach_rate"`
	Subtotal        float64 `json:"subtotal"`
	ServiceFee      float64 `json:"service_fee"`
	Tax             float64 `json:"tax"`
	Discount        float64 `json:"discount"`
	Total           float64 `json:"total"`
	Split           *Split  `json:"split,omitempty"`
	PromoCode       string  `json:"promo_code,omitempty"`
	PromoMessage    string  `json:"promo_message,omitempty"`
}

// Input is everything the engine needs. Venue and Coach are nil when the
// request does not involve that resource.
type Input struct {
	Start calendar.TimeOfDay
	End   calendar.TimeOfDay
	Sport string
	Venue *Rates
	Coach *Rates

	PromoCode string
	Promo     *PromoCode
	// At is the instant promo validity is evaluated against.
	At time.Time
}

type Engine struct {
	serviceFeeRate float64
	taxRate        float64
}

// NewEngine validates the configured rates; both must lie in [0, 1].
func NewEngine(serviceFeeRate, taxRate float64) (*Engine, error) {
	if !validRate(serviceFeeRate) {
		return nil, fmt.Errorf("service fee rate %v out of range [0, 1]", serviceFeeRate)
	}
	if !validRate(taxRate) {
		return nil, fmt.Errorf("tax rate %v out of range [0, 1]", taxRate)
	}
	return &Engine{serviceFeeRate: serviceFeeRate, taxRate: taxRate}, nil
}

func validRate(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r <= 1
}

func (e *Engine) ServiceFeeRate() float64 { return e.serviceFeeRate }
func (e *Engine) TaxRate() float64        { return e.taxRate }

// Compute prices in. It is a pure function of its argument.
func (e *Engine) Compute(in Input) (Breakdown, error) {
	if in.Venue == nil && in.Coach == nil {
		return Breakdown{}, apperr.New(apperr.CodeInvalidArgument, "venue or coach is required")
	}
	d, err := CalculateDuration(in.Start, in.End)
	if err != nil {
		return Breakdown{}, err
	}

	var b Breakdown
	b.DurationMinutes = d.Minutes

	var venueSubtotal, coachSubtotal float64
	if in.Venue != nil {
		b.VenueRate = in.Venue.Resolve(in.Sport)
		venueSubtotal = d.Hours * b.VenueRate
	}
	if in.Coach != nil {
		b.CoachRate = in.Coach.Resolve(in.Sport)
		coachSubtotal = d.Hours * b.CoachRate
	}

	b.Subtotal = venueSubtotal + coachSubtotal
	b.ServiceFee = math.Round(b.Subtotal * e.serviceFeeRate)
	b.Tax = math.Round(b.Subtotal * e.taxRate)

	promo := ValidatePromo(in.PromoCode, in.Promo, b.Subtotal, in.At)
	b.Discount = promo.Discount
	b.PromoCode = promo.Code
	b.PromoMessage = promo.Message

	b.Total = math.Max(0, b.Subtotal+b.ServiceFee+b.Tax-b.Discount)

	if venueSubtotal != 0 && coachSubtotal != 0 {
		b.Split = &Split{VenueShare: venueSubtotal, CoachShare: coachSubtotal}
	}
	return b, nil
}

// WithinTolerance reports whether two totals differ by at most tolerance.
func WithinTolerance(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
