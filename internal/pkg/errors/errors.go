package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (нет токена, неверный токен).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken используется, когда срок действия токена истек.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict используется для конфликтов состояния (дубликаты, связанные записи).
	ErrConflict = errors.New("resource state conflict")

	// ErrTimeout используется, когда операция не уложилась в дедлайн запроса.
	ErrTimeout = errors.New("operation timed out")

	// ErrUnavailable используется, когда хранилище недоступно.
	ErrUnavailable = errors.New("storage unavailable")
)

