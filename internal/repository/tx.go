package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// ContextWithTx привязывает транзакцию к контексту. Репозитории, вызванные с
// таким контекстом, работают в ней, а Store.Transaction открывает savepoint,
// так что вся операция держит одно соединение из пула.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext возвращает транзакцию, привязанную через ContextWithTx.
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// conn выбирает соединение для запроса: собственную транзакцию репозитория,
// затем транзакцию из контекста, иначе пул.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if committer, ok := db.Statement.ConnPool.(gorm.TxCommitter); ok && committer != nil {
		return db.WithContext(ctx)
	}
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
