package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/pkg/dbctx"
)

// Transactor выполняет функцию в рамках одной транзакции
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// GormTransactor реализует Transactor поверх GORM
type GormTransactor struct {
	db *gorm.DB
}

// NewTransactor создает Transactor
func NewTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// WithinTransaction открывает транзакцию, кладет ее в контекст и вызывает fn.
// Ошибка или паника fn откатывают транзакцию; паника пробрасывается дальше после отката.
// Если в контексте уже есть транзакция, fn выполняется в ней.
func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := dbctx.TxFrom(ctx); ok {
		return fn(ctx)
	}

	tx := t.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return WrapError(tx.Error, "begin transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(dbctx.WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return WrapError(err, "commit transaction")
	}
	return nil
}
