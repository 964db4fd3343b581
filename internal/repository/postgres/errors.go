package postgres

import "github.com/yourusername/lms-api/pkg/database"

// wrapDBError классифицирует ошибку запроса общим для репозиториев и транзакций способом
func wrapDBError(err error, op string) error {
	return database.WrapError(err, op)
}
