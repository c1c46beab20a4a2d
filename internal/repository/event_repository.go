package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	ListBySession(ctx context.Context, sessionID string) ([]model.Event, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, event *model.Event) error {
	return conn(ctx, r.db).Create(event).Error
}

func (r *GormEventRepository) ListBySession(ctx context.Context, sessionID string) ([]model.Event, error) {
	var events []model.Event
	err := conn(ctx, r.db).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
