package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// reservation_holds — временный эксклюзивный захват слота на время оплаты.
// Холд активен, пока ReleasedAt пуст и не наступил ExpiresAt.
type ReservationHold struct {
	ID string `gorm:"type:varchar(36);primaryKey"`

	// Хотя бы одно из полей заполнено.
	VenueID *string `gorm:"type:varchar(36);index:idx_holds_venue_day,priority:1"`
	CoachID *string `gorm:"type:varchar(36);index:idx_holds_coach_day,priority:1"`

	SlotDate    string `gorm:"type:varchar(10);not null;index:idx_holds_venue_day,priority:2;index:idx_holds_coach_day,priority:2"`
	StartMinute int    `gorm:"not null"`
	EndMinute   int    `gorm:"not null"`

	// ID запроса-владельца (у нас это ID checkout-сессии).
	OwnerRequestID string `gorm:"type:varchar(36);not null;index"`

	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	ExpiresAt  time.Time  `gorm:"not null;index"`
	ReleasedAt *time.Time `gorm:"index"`
}

func (h *ReservationHold) BeforeCreate(*gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// ActiveAt — ленивое истечение: просроченный холд считается отсутствующим.
func (h *ReservationHold) ActiveAt(now time.Time) bool {
	return h.ReleasedAt == nil && now.Before(h.ExpiresAt)
}

// Resources возвращает все ресурсы, которые держит холд.
func (h *ReservationHold) Resources() []ResourceRef {
	var refs []ResourceRef
	if h.VenueID != nil {
		refs = append(refs, VenueRef(*h.VenueID))
	}
	if h.CoachID != nil {
		refs = append(refs, CoachRef(*h.CoachID))
	}
	return refs
}
