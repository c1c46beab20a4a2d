package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store собирает репозитории над одним подключением и позволяет выполнить
// несколько изменений в одной транзакции.
type Store interface {
	Catalog() CatalogRepository
	Promos() PromoRepository
	Holds() HoldRepository
	Sessions() SessionRepository
	Bookings() BookingRepository
	Events() EventRepository

	// Transaction выполняет fn в транзакции; tx видит те же репозитории,
	// привязанные к транзакции.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Catalog() CatalogRepository { return NewGormCatalogRepository(s.db) }
func (s *GormStore) Promos() PromoRepository    { return NewGormPromoRepository(s.db) }
func (s *GormStore) Holds() HoldRepository      { return NewGormHoldRepository(s.db) }
func (s *GormStore) Sessions() SessionRepository {
	return NewGormSessionRepository(s.db)
}
func (s *GormStore) Bookings() BookingRepository { return NewGormBookingRepository(s.db) }
func (s *GormStore) Events() EventRepository     { return NewGormEventRepository(s.db) }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return conn(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
