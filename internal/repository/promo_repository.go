package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/booking-engine/internal/model"
)

type PromoRepository interface {
	// Найти промокод. Неизвестный код даёт (nil, nil), а не ошибка.
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)
	// Создать или перезаписать промокод.
	Upsert(ctx context.Context, promo *model.PromoCode) error
	List(ctx context.Context) ([]model.PromoCode, error)
}

type GormPromoRepository struct {
	db *gorm.DB
}

func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

func (r *GormPromoRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var p model.PromoCode
	// Find вместо First: неизвестный код не ошибка и не должен попадать в лог
	res := conn(ctx, r.db).Where("code = ?", code).Limit(1).Find(&p)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *GormPromoRepository) Upsert(ctx context.Context, promo *model.PromoCode) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			UpdateAll: true,
		}).
		Create(promo).
		Error
}

func (r *GormPromoRepository) List(ctx context.Context) ([]model.PromoCode, error) {
	var promos []model.PromoCode
	if err := conn(ctx, r.db).Order("code ASC").Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}
