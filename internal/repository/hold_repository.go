package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/model"
)

type HoldRepository interface {
	// Создать холд.
	Create(ctx context.Context, hold *model.ReservationHold) error
	// Получить холд по ID.
	GetByID(ctx context.Context, id string) (*model.ReservationHold, error)
	// Активные на момент now холды ресурса на дату.
	ListActive(ctx context.Context, ref model.ResourceRef, date string, now time.Time) ([]model.ReservationHold, error)
	// Отпустить холд; false, если он уже был отпущен.
	Release(ctx context.Context, id string, at time.Time) (bool, error)
	// Сдвинуть срок жизни холда.
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error
	// Удалить отпущенные и истёкшие холды старше before.
	DeleteInactive(ctx context.Context, before time.Time) (int64, error)
}

type GormHoldRepository struct {
	db *gorm.DB
}

func NewGormHoldRepository(db *gorm.DB) *GormHoldRepository {
	return &GormHoldRepository{db: db}
}

func (r *GormHoldRepository) Create(ctx context.Context, hold *model.ReservationHold) error {
	return conn(ctx, r.db).Create(hold).Error
}

func (r *GormHoldRepository) GetByID(ctx context.Context, id string) (*model.ReservationHold, error) {
	var h model.ReservationHold
	if err := conn(ctx, r.db).First(&h, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *GormHoldRepository) ListActive(
	ctx context.Context,
	ref model.ResourceRef,
	date string,
	now time.Time,
) ([]model.ReservationHold, error) {
	var holds []model.ReservationHold
	err := conn(ctx, r.db).
		Model(&model.ReservationHold{}).
		Where(ref.Column()+" = ?", ref.ID).
		Where("slot_date = ?", date).
		Where("released_at IS NULL").
		Order("start_minute ASC").
		Find(&holds).Error
	if err != nil {
		return nil, err
	}

	// истечение проверяем здесь, а не в SQL: результат не зависит от того,
	// как драйвер хранит время
	active := holds[:0]
	for _, h := range holds {
		if h.ActiveAt(now) {
			active = append(active, h)
		}
	}
	return active, nil
}

func (r *GormHoldRepository) Release(ctx context.Context, id string, at time.Time) (bool, error) {
	res := conn(ctx, r.db).
		Model(&model.ReservationHold{}).
		Where("id = ? AND released_at IS NULL", id).
		Update("released_at", at.UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormHoldRepository) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	return conn(ctx, r.db).
		Model(&model.ReservationHold{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt.UTC()).
		Error
}

func (r *GormHoldRepository) DeleteInactive(ctx context.Context, before time.Time) (int64, error) {
	before = before.UTC()
	res := conn(ctx, r.db).
		Where("released_at IS NOT NULL AND released_at < ?", before).
		Or("expires_at < ?", before).
		Delete(&model.ReservationHold{})
	return res.RowsAffected, res.Error
}
