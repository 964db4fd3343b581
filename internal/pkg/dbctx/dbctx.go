package dbctx

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx возвращает контекст, несущий открытую транзакцию GORM
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom извлекает транзакцию из контекста, если она там есть
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// Conn возвращает транзакцию из контекста, а при ее отсутствии базовое соединение, привязанное к ctx.
// Репозитории обращаются к базе только через Conn, поэтому одинаково работают внутри и вне транзакции.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := TxFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
