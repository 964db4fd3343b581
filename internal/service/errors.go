package service

import (
	"fmt"

	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// Доменные ошибки сервисов. Каждая оборачивает общую ошибку из apperrors,
// поэтому errors.Is срабатывает и на конкретную, и на общую категорию.
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid_credentials", apperrors.ErrUnauthorized)
	ErrUserExists         = fmt.Errorf("%w: user_exists", apperrors.ErrConflict)
	ErrUserNotFound       = fmt.Errorf("%w: user_not_found", apperrors.ErrNotFound)
	ErrInvalidRole        = fmt.Errorf("%w: invalid_role", apperrors.ErrValidation)

	ErrLessonNotFound   = fmt.Errorf("%w: lesson_not_found", apperrors.ErrNotFound)
	ErrLessonHasQuizzes = fmt.Errorf("%w: lesson_has_quizzes", apperrors.ErrConflict)
	ErrEmptySearchQuery = fmt.Errorf("%w: empty_search_query", apperrors.ErrValidation)

	ErrQuizNotFound     = fmt.Errorf("%w: quiz_not_found", apperrors.ErrNotFound)
	ErrInvalidQuestion  = fmt.Errorf("%w: invalid_question", apperrors.ErrValidation)
	ErrAlreadyCompleted = fmt.Errorf("%w: quiz_already_completed", apperrors.ErrConflict)

	ErrResultNotFound    = fmt.Errorf("%w: result_not_found", apperrors.ErrNotFound)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported_format", apperrors.ErrValidation)
	ErrFeedbackNotFound  = fmt.Errorf("%w: feedback_not_found", apperrors.ErrNotFound)
	ErrFeedbackExists    = fmt.Errorf("%w: feedback_exists", apperrors.ErrConflict)
	ErrInvalidRating     = fmt.Errorf("%w: invalid_rating", apperrors.ErrValidation)
	ErrAccessDenied      = fmt.Errorf("%w: access_denied", apperrors.ErrForbidden)
)
