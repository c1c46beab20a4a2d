package hold

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/repository"
)

// Locker serializes work on a set of keys. Keys are locked in sorted order,
// so two callers with overlapping key sets cannot deadlock.
type Locker interface {
	WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

func normalizeKeys(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

// KeyedMutex is an in-process Locker. It is enough for a single replica.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*keySlot
}

type keySlot struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*keySlot)}
}

func (m *KeyedMutex) WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	keys = normalizeKeys(keys)
	locked := make([]string, 0, len(keys))
	defer func() {
		for i := len(locked) - 1; i >= 0; i-- {
			m.unlock(locked[i])
		}
	}()

	for _, k := range keys {
		if err := m.lock(ctx, k); err != nil {
			return fmt.Errorf("lock %s: %w", k, err)
		}
		locked = append(locked, k)
	}
	return fn(ctx)
}

func (m *KeyedMutex) lock(ctx context.Context, key string) error {
	m.mu.Lock()
	s, ok := m.slots[key]
	if !ok {
		s = &keySlot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	m.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.mu.Lock()
		m.drop(key, s)
		m.mu.Unlock()
		return ctx.Err()
	}
}

func (m *KeyedMutex) unlock(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.slots[key]
	<-s.ch
	m.drop(key, s)
}

func (m *KeyedMutex) drop(key string, s *keySlot) {
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
}

// PGAdvisoryLockSQL takes a transaction-scoped Postgres advisory lock.
const PGAdvisoryLockSQL = "SELECT pg_advisory_xact_lock(hashtext(?))"

// TxLocker serializes across replicas with locks scoped to a database
// transaction. fn runs with that transaction bound to its context (see
// repository.ContextWithTx), so a locked operation holds exactly one pool
// connection however many repositories and nested locks it touches. Work
// done by fn is committed even when fn returns an error, the same as
// without the lock.
type TxLocker struct {
	db      *gorm.DB
	lockSQL string
}

// NewTxLocker locks each key by running lockSQL with the key as its only
// argument.
func NewTxLocker(db *gorm.DB, lockSQL string) *TxLocker {
	return &TxLocker{db: db, lockSQL: lockSQL}
}

func NewPGAdvisoryLocker(db *gorm.DB) *TxLocker {
	return NewTxLocker(db, PGAdvisoryLockSQL)
}

func (l *TxLocker) WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	keys = normalizeKeys(keys)

	// nested lock: reuse the caller's transaction, the locks live until it ends
	if tx, ok := repository.TxFromContext(ctx); ok {
		if err := l.lock(tx.WithContext(ctx), keys); err != nil {
			return err
		}
		return fn(ctx)
	}

	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin lock tx: %w", tx.Error)
	}
	finished := false
	defer func() {
		if !finished {
			tx.Rollback()
		}
	}()

	if err := l.lock(tx, keys); err != nil {
		return err
	}
	fnErr := fn(repository.ContextWithTx(ctx, tx))
	finished = true
	if err := tx.Commit().Error; err != nil && fnErr == nil {
		return fmt.Errorf("commit lock tx: %w", err)
	}
	return fnErr
}

func (l *TxLocker) lock(tx *gorm.DB, keys []string) error {
	for _, k := range keys {
		if err := tx.Exec(l.lockSQL, k).Error; err != nil {
			return fmt.Errorf("advisory lock %s: %w", k, err)
		}
	}
	return nil
}
