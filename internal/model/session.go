package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/pricing"
)

// SessionState — состояние checkout-сессии.
type SessionState string

const (
	SessionCollecting      SessionState = "COLLECTING"
	SessionHeld            SessionState = "HELD"
	SessionAwaitingPayment SessionState = "AWAITING_PAYMENT"
	SessionConfirmed       SessionState = "CONFIRMED"
	SessionExpired         SessionState = "EXPIRED"
	SessionCancelled       SessionState = "CANCELLED"
	SessionFailed          SessionState = "FAILED"
)

// Terminal — из терминального состояния переходов нет.
func (s SessionState) Terminal() bool {
	switch s {
	case SessionConfirmed, SessionExpired, SessionCancelled, SessionFailed:
		return true
	}
	return false
}

// checkout_sessions
type CheckoutSession struct {
	ID string `gorm:"type:varchar(36);primaryKey"`

	// Запрос на бронирование; после создания сессии не меняется.
	VenueID       *string  `gorm:"type:varchar(36);index"`
	CoachID       *string  `gorm:"type:varchar(36);index"`
	Sport         string   `gorm:"type:varchar(64);not null"`
	SlotDate      string   `gorm:"type:varchar(10);not null"`
	StartMinute   int      `gorm:"not null"`
	EndMinute     int      `gorm:"not null"`
	AttendeeRef   string   `gorm:"type:varchar(64);not null;index"`
	DependentID   *string  `gorm:"type:varchar(64)"`
	PromoCode     string   `gorm:"type:varchar(32)"`
	ExpectedTotal *float64 // сумма, показанная клиенту при выборе слота

	State SessionState `gorm:"type:varchar(32);not null;index"`

	Price datatypes.JSONType[pricing.Breakdown]

	HoldID        *string    `gorm:"type:varchar(36)"`
	HoldExpiresAt *time.Time `gorm:"index"`

	CheckoutURL      string  `gorm:"type:text"`
	GatewayReference string  `gorm:"type:varchar(128)"`
	BookingID        *string `gorm:"type:varchar(36)"`
	FailureReason    string  `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (s *CheckoutSession) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Resources возвращает ресурсы из запроса сессии.
func (s *CheckoutSession) Resources() []ResourceRef {
	var refs []ResourceRef
	if s.VenueID != nil {
		refs = append(refs, VenueRef(*s.VenueID))
	}
	if s.CoachID != nil {
		refs = append(refs, CoachRef(*s.CoachID))
	}
	return refs
}
