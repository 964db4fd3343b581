package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/pkg/database"
)

// LessonService управляет уроками
type LessonService struct {
	tx           database.Transactor
	lessonRepo   repository.LessonRepository
	quizRepo     repository.QuizRepository
	feedbackRepo repository.FeedbackRepository
	log          *logger.Logger
}

// LessonInput - редактируемые поля урока
type LessonInput struct {
	Title       string
	Description string
	Content     string
	VideoURL    string
	Level       string
}

// LessonPage - страница уроков
type LessonPage struct {
	Lessons    []repository.LessonView
	Pagination Pagination
}

// NewLessonService создает сервис уроков
func NewLessonService(
	tx database.Transactor,
	lessonRepo repository.LessonRepository,
	quizRepo repository.QuizRepository,
	feedbackRepo repository.FeedbackRepository,
	log *logger.Logger,
) *LessonService {
	return &LessonService{
		tx:           tx,
		lessonRepo:   lessonRepo,
		quizRepo:     quizRepo,
		feedbackRepo: feedbackRepo,
		log:          log.Component("lesson_service"),
	}
}

// List возвращает страницу уроков с именами авторов
func (s *LessonService) List(ctx context.Context, page PageRequest) (*LessonPage, error) {
	lessons, total, err := s.lessonRepo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return &LessonPage{Lessons: lessons, Pagination: NewPagination(page, total)}, nil
}

// Search ищет уроки по подстроке в названии, описании и содержании
func (s *LessonService) Search(ctx context.Context, query string, page PageRequest) (*LessonPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearchQuery
	}
	lessons, total, err := s.lessonRepo.Search(ctx, query, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return &LessonPage{Lessons: lessons, Pagination: NewPagination(page, total)}, nil
}

// Get возвращает урок по ID
func (s *LessonService) Get(ctx context.Context, id uint) (*repository.LessonView, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

// Create создает урок от имени администратора
func (s *LessonService) Create(ctx context.Context, authorID uint, input LessonInput) (*repository.LessonView, error) {
	lesson, err := input.toEntity()
	if err != nil {
		return nil, err
	}
	lesson.CreatedBy = &authorID

	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	s.log.Info("[LessonService] Урок создан", "lesson_id", lesson.ID, "created_by", authorID)
	return s.Get(ctx, lesson.ID)
}

// Update заменяет редактируемые поля урока
func (s *LessonService) Update(ctx context.Context, id uint, input LessonInput) (*repository.LessonView, error) {
	lesson, err := input.toEntity()
	if err != nil {
		return nil, err
	}
	lesson.ID = id

	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete удаляет урок вместе с отзывами. Урок с тестами удалить нельзя
func (s *LessonService) Delete(ctx context.Context, id uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.lessonRepo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrLessonNotFound
		}

		quizCount, err := s.quizRepo.CountByLesson(ctx, id)
		if err != nil {
			return err
		}
		if quizCount > 0 {
			return ErrLessonHasQuizzes
		}

		if err := s.feedbackRepo.DeleteByLessonID(ctx, id); err != nil {
			return err
		}
		if err := s.lessonRepo.Delete(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrLessonNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("[LessonService] Урок удален", "lesson_id", id)
	return nil
}

func (in LessonInput) toEntity() (*entity.Lesson, error) {
	level := entity.LessonLevel(strings.TrimSpace(in.Level))
	if level == "" {
		level = entity.LevelBeginner
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: invalid lesson level %q", apperrors.ErrValidation, in.Level)
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperrors.ErrValidation)
	}

	return &entity.Lesson{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Content:     in.Content,
		VideoURL:    strings.TrimSpace(in.VideoURL),
		Level:       level,
	}, nil
}
