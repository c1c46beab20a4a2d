package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/model"
)

// BookingRepository: журнал подтверждённых бронирований.
type BookingRepository interface {
	// Записать подтверждённое бронирование. Повторный вызов для той же
	// сессии возвращает уже созданную запись.
	RecordConfirmed(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	// Получить бронирование по ID.
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// Бронирование, в которое превратилась сессия.
	GetBySessionID(ctx context.Context, sessionID string) (*model.Booking, error)
	// Занятые интервалы ресурса на дату.
	ListConfirmedIntervals(ctx context.Context, ref model.ResourceRef, date string) ([]calendar.Interval, error)
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) RecordConfirmed(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	booking.Status = model.BookingStatusConfirmed
	err := conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).
		Create(booking).Error
	if err != nil {
		return nil, err
	}
	return r.GetBySessionID(ctx, booking.SessionID)
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := conn(ctx, r.db).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Booking, error) {
	var b model.Booking
	if err := conn(ctx, r.db).First(&b, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) ListConfirmedIntervals(
	ctx context.Context,
	ref model.ResourceRef,
	date string,
) ([]calendar.Interval, error) {
	var bookings []model.Booking
	err := conn(ctx, r.db).
		Model(&model.Booking{}).
		Select("start_minute", "end_minute").
		Where(ref.Column()+" = ?", ref.ID).
		Where("slot_date = ?", date).
		Where("status = ?", model.BookingStatusConfirmed).
		Order("start_minute ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	intervals := make([]calendar.Interval, 0, len(bookings))
	for _, b := range bookings {
		intervals = append(intervals, calendar.Interval{
			Start: calendar.TimeOfDay(b.StartMinute),
			End:   calendar.TimeOfDay(b.EndMinute),
		})
	}
	return intervals, nil
}

// IsNotFound сообщает, что записи нет.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
