package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/model"
)

type SessionRepository interface {
	// Создать сессию.
	Create(ctx context.Context, session *model.CheckoutSession) error
	// Получить сессию по ID.
	GetByID(ctx context.Context, id string) (*model.CheckoutSession, error)
	// Сохранить сессию целиком.
	Save(ctx context.Context, session *model.CheckoutSession) error
	// Сессии клиента, новые сначала.
	ListByAttendee(ctx context.Context, attendeeRef string, limit, offset int) ([]model.CheckoutSession, int64, error)
	// Сессии в HELD/AWAITING_PAYMENT, чей холд истёк к моменту now.
	ListLapsed(ctx context.Context, now time.Time, limit int) ([]model.CheckoutSession, error)
	// Сессии, застрявшие в COLLECTING дольше, чем до before.
	ListAbandoned(ctx context.Context, before time.Time, limit int) ([]model.CheckoutSession, error)
}

type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, session *model.CheckoutSession) error {
	return conn(ctx, r.db).Create(session).Error
}

func (r *GormSessionRepository) GetByID(ctx context.Context, id string) (*model.CheckoutSession, error) {
	var s model.CheckoutSession
	if err := conn(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.Error{
				Code:     apperr.CodeSessionNotFound,
				Message:  "checkout session not found",
				Metadata: map[string]string{"session_id": id},
				Cause:    err,
			}
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormSessionRepository) Save(ctx context.Context, session *model.CheckoutSession) error {
	return conn(ctx, r.db).Save(session).Error
}

func (r *GormSessionRepository) ListByAttendee(
	ctx context.Context,
	attendeeRef string,
	limit, offset int,
) ([]model.CheckoutSession, int64, error) {
	var (
		sessions []model.CheckoutSession
		total    int64
	)

	q := conn(ctx, r.db).
		Model(&model.CheckoutSession{}).
		Where("attendee_ref = ?", attendeeRef)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("created_at DESC").Order("id ASC").Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *GormSessionRepository) ListLapsed(ctx context.Context, now time.Time, limit int) ([]model.CheckoutSession, error) {
	var sessions []model.CheckoutSession
	q := conn(ctx, r.db).
		Model(&model.CheckoutSession{}).
		Where("state IN ?", []model.SessionState{model.SessionHeld, model.SessionAwaitingPayment}).
		Where("hold_expires_at IS NOT NULL AND hold_expires_at <= ?", now.UTC()).
		Order("hold_expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormSessionRepository) ListAbandoned(ctx context.Context, before time.Time, limit int) ([]model.CheckoutSession, error) {
	var sessions []model.CheckoutSession
	q := conn(ctx, r.db).
		Model(&model.CheckoutSession{}).
		Where("state = ?", model.SessionCollecting).
		Where("created_at < ?", before.UTC()).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
