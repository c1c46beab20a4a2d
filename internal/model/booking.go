package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/pricing"
)

type BookingStatus string

// Отмена и возвраты ведутся внешним сервисом и меняют только статус.
const BookingStatusConfirmed BookingStatus = "confirmed"

// bookings — журнал подтверждённых бронирований.
// Одна сессия даёт не больше одной брони (SessionID уникален).
type Booking struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	SessionID string `gorm:"type:varchar(36);not null;uniqueIndex"`

	VenueID     *string `gorm:"type:varchar(36);index:idx_bookings_venue_day,priority:1"`
	CoachID     *string `gorm:"type:varchar(36);index:idx_bookings_coach_day,priority:1"`
	AttendeeRef string  `gorm:"type:varchar(64);not null;index"`
	DependentID *string `gorm:"type:varchar(64)"`
	Sport       string  `gorm:"type:varchar(64);not null"`

	SlotDate    string `gorm:"type:varchar(10);not null;index:idx_bookings_venue_day,priority:2;index:idx_bookings_coach_day,priority:2"`
	StartMinute int    `gorm:"not null"`
	EndMinute   int    `gorm:"not null"`

	Total            float64                               `gorm:"not null"`
	Price            datatypes.JSONType[pricing.Breakdown] `gorm:"not null"`
	GatewayReference string                                `gorm:"type:varchar(128)"`

	Status BookingStatus `gorm:"type:varchar(32);not null;index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
