package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип события аудита. Совпадает с routing key при публикации в брокер.
type EventType string

const (
	EventTypeCheckoutHeld            EventType = "checkout.held"
	EventTypeCheckoutAwaitingPayment EventType = "checkout.awaiting_payment"
	EventTypeBookingConfirmed        EventType = "booking.confirmed"
	EventTypeCheckoutFailed          EventType = "checkout.failed"
	EventTypeCheckoutExpired         EventType = "checkout.expired"
	EventTypeCheckoutCancelled       EventType = "checkout.cancelled"
)

// events — события аудита
type Event struct {
	ID string `gorm:"type:varchar(36);primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	SessionID string  `gorm:"type:varchar(36);not null;index"`
	BookingID *string `gorm:"type:varchar(36);index"`

	FromState SessionState `gorm:"type:varchar(32)"`
	ToState   SessionState `gorm:"type:varchar(32);not null"`

	// JSON с деталями перехода.
	Details string `gorm:"type:text"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
