package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// WrapError переводит ошибки драйвера и GORM в ошибки приложения.
// Исходная ошибка сохраняется в цепочке для логирования.
func WrapError(err error, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), pgconn.Timeout(err):
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrTimeout, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrConflict, err)
	case IsConnectionError(err):
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// IsConnectionError распознает обрыв или отсутствие соединения с базой
func IsConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}
