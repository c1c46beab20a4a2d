package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/model"
)

// CatalogRepository: чтение площадок и тренеров из каталога.
type CatalogRepository interface {
	GetVenue(ctx context.Context, id string) (*model.Venue, error)
	GetCoach(ctx context.Context, id string) (*model.Coach, error)
	// Upsert* нужны для сидирования из CLI; в проде каталог ведёт внешний сервис.
	UpsertVenue(ctx context.Context, v *model.Venue) error
	UpsertCoach(ctx context.Context, c *model.Coach) error
}

type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) GetVenue(ctx context.Context, id string) (*model.Venue, error) {
	var v model.Venue
	if err := conn(ctx, r.db).First(&v, "id = ?", id).Error; err != nil {
		return nil, notFound(err, model.VenueRef(id))
	}
	return &v, nil
}

func (r *GormCatalogRepository) GetCoach(ctx context.Context, id string) (*model.Coach, error) {
	var c model.Coach
	if err := conn(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, model.CoachRef(id))
	}
	return &c, nil
}

func (r *GormCatalogRepository) UpsertVenue(ctx context.Context, v *model.Venue) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "hourly_rate", "sport_pricing", "updated_at"}),
		}).
		Create(v).
		Error
}

func (r *GormCatalogRepository) UpsertCoach(ctx context.Context, c *model.Coach) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "hourly_rate", "sport_pricing", "updated_at"}),
		}).
		Create(c).
		Error
}

func notFound(err error, ref model.ResourceRef) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperr.Error{
			Code:     apperr.CodeResourceNotFound,
			Message:  string(ref.Kind) + " not found",
			Metadata: map[string]string{string(ref.Kind) + "_id": ref.ID},
			Cause:    err,
		}
	}
	return err
}
