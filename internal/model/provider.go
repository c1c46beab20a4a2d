package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/pricing"
)

// Venue — площадка. Каталог ведёт внешний сервис, ядро только читает тарифы.
type Venue struct {
	ID string `gorm:"type:varchar(36);primaryKey"`

	Name string `gorm:"type:varchar(255);not null"`

	// Базовая почасовая ставка.
	HourlyRate float64 `gorm:"not null"`

	// Переопределения ставки по виду спорта: {"Cricket": 1200}.
	// Значения не валидируются при записи, см. pricing.Rates.
	SportPricing datatypes.JSONMap

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Coach — тренер; бронируется так же, как площадка.
type Coach struct {
	ID string `gorm:"type:varchar(36);primaryKey"`

	DisplayName string `gorm:"type:varchar(255);not null"`

	HourlyRate   float64 `gorm:"not null"`
	SportPricing datatypes.JSONMap

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (v *Venue) Rates() pricing.Rates {
	return pricing.Rates{HourlyRate: v.HourlyRate, SportPricing: v.SportPricing}
}

func (c *Coach) Rates() pricing.Rates {
	return pricing.Rates{HourlyRate: c.HourlyRate, SportPricing: c.SportPricing}
}
