package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/pricing"
)

type PromoKind string

const (
	PromoPercentage PromoKind = "percentage"
	PromoFlat       PromoKind = "flat"
	PromoTiered     PromoKind = "tiered"
)

type PromoTier struct {
	MinSubtotal float64 `json:"min_subtotal"`
	Fraction    float64 `json:"fraction"`
}

// promo_codes
type PromoCode struct {
	Code string `gorm:"type:varchar(32);primaryKey"`

	Kind PromoKind `gorm:"type:varchar(16);not null"`

	// Доля для percentage (0.10 = 10%), сумма для flat.
	Percent float64
	Amount  float64
	Tiers   datatypes.JSONSlice[PromoTier]

	MinSubtotal float64
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	Disabled    bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Rule собирает правило скидки из записи.
func (p *PromoCode) Rule() pricing.DiscountRule {
	switch p.Kind {
	case PromoPercentage:
		return pricing.PercentageRule{Fraction: p.Percent}
	case PromoFlat:
		return pricing.FlatRule{Amount: p.Amount}
	case PromoTiered:
		tiers := make([]pricing.Tier, 0, len(p.Tiers))
		for _, t := range p.Tiers {
			tiers = append(tiers, pricing.Tier{MinSubtotal: t.MinSubtotal, Fraction: t.Fraction})
		}
		return pricing.TieredRule{Tiers: tiers}
	default:
		return nil
	}
}

// ToPricing конвертирует запись в вид, понятный валидатору.
func (p *PromoCode) ToPricing() *pricing.PromoCode {
	if p == nil {
		return nil
	}
	return &pricing.PromoCode{
		Code:        p.Code,
		Rule:        p.Rule(),
		MinSubtotal: p.MinSubtotal,
		ValidFrom:   p.ValidFrom,
		ValidUntil:  p.ValidUntil,
		Disabled:    p.Disabled,
	}
}
