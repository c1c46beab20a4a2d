package pricing

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

// MessageNoCode is reported when the caller did not enter a promo code.
const MessageNoCode = "no code applied"

var promoCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{2,31}$`)

// DiscountRule computes a discount for a pre-discount subtotal.
type DiscountRule interface {
	Discount(subtotal float64) float64
	Describe() string
}

// PercentageRule discounts a fraction of the subtotal (0.10 is 10%).
type PercentageRule struct {
	Fraction float64
}

func (r PercentageRule) Discount(subtotal float64) float64 {
	return math.Round(subtotal * clampFraction(r.Fraction))
}

func (r PercentageRule) Describe() string {
	return fmt.Sprintf("%g%% off", r.Fraction*100)
}

// FlatRule discounts a fixed amount, never more than the subtotal.
type FlatRule struct {
	Amount float64
}

func (r FlatRule) Discount(subtotal float64) float64 {
	if r.Amount <= 0 {
		return 0
	}
	return math.Round(math.Min(r.Amount, subtotal))
}

func (r FlatRule) Describe() string {
	return fmt.Sprintf("%g off", r.Amount)
}

// Tier applies Fraction once the subtotal reaches MinSubtotal.
type Tier struct {
	MinSubtotal float64 `json:"min_subtotal"`
	Fraction    float64 `json:"fraction"`
}

// TieredRule applies the highest tier whose threshold the subtotal reaches.
type TieredRule struct {
	Tiers []Tier
}

func (r TieredRule) Discount(subtotal float64) float64 {
	tiers := append([]Tier(nil), r.Tiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinSubtotal < tiers[j].MinSubtotal })

	fraction := 0.0
	for _, t := range tiers {
		if subtotal >= t.MinSubtotal {
			fraction = t.Fraction
		}
	}
	return math.Round(subtotal * clampFraction(fraction))
}

func (r TieredRule) Describe() string {
	return fmt.Sprintf("tiered discount (%d tiers)", len(r.Tiers))
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return math.Min(f, 1)
}

// PromoCode is a resolved promo record.
type PromoCode struct {
	Code        string
	Rule        DiscountRule
	MinSubtotal float64
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	Disabled    bool
}

// PromoResult is the validator output. Rejections are reported through
// Message; they never block checkout.
type PromoResult struct {
	Code     string
	Discount float64
	Applied  bool
	Message  string
}

// NormalizeCode upper-cases and trims a caller-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidatePromo evaluates code against subtotal. promo is the catalog record
// for the code, or nil when the catalog does not know it.
func ValidatePromo(code string, promo *PromoCode, subtotal float64, at time.Time) PromoResult {
	code = NormalizeCode(code)
	switch {
	case code == "":
		return PromoResult{Message: MessageNoCode}
	case !promoCodePattern.MatchString(code):
		return reject(code, "promo code %q is malformed")
	case promo == nil || promo.Rule == nil || NormalizeCode(promo.Code) != code:
		return reject(code, "promo code %q is invalid")
	case promo.Disabled:
		return reject(code, "promo code %q is no longer active")
	case promo.ValidFrom != nil && at.Before(*promo.ValidFrom):
		return reject(code, "promo code %q is not active yet")
	case promo.ValidUntil != nil && !at.Before(*promo.ValidUntil):
		return reject(code, "promo code %q has expired")
	case subtotal < promo.MinSubtotal:
		return PromoResult{
			Code:    code,
			Message: fmt.Sprintf("promo code %q requires a subtotal of at least %.2f", code, promo.MinSubtotal),
		}
	}

	discount := math.Max(0, promo.Rule.Discount(subtotal))
	return PromoResult{
		Code:     code,
		Discount: discount,
		Applied:  true,
		Message:  fmt.Sprintf("promo code %q applied: %s", code, promo.Rule.Describe()),
	}
}

func reject(code, format string) PromoResult {
	return PromoResult{Code: code, Message: fmt.Sprintf(format, code)}
}
