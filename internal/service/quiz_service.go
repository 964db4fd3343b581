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

// QuizService предоставляет методы для работы с тестами
type QuizService struct {
	tx           database.Transactor
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	resultRepo   repository.ResultRepository
	lessonRepo   repository.LessonRepository
	stats        *StatsCache
	log          *logger.Logger
}

// QuizInput - поля теста вместе с полным набором вопросов
type QuizInput struct {
	Title       string
	Description string
	LessonID    *uint
	Questions   []QuestionInput
}

// QuestionInput - вопрос в запросе на создание или обновление теста
type QuestionInput struct {
	QuestionText  string
	Options       []string
	CorrectAnswer int
	// Points == 0 означает значение по умолчанию
	Points int
}

// QuizDetail - тест со сводкой и вопросами
type QuizDetail struct {
	Quiz      *repository.QuizSummary
	Questions []entity.Question
}

// QuizPage - страница тестов
type QuizPage struct {
	Quizzes    []repository.QuizSummary
	Pagination Pagination
}

// NewQuizService создает новый сервис тестов
func NewQuizService(
	tx database.Transactor,
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	resultRepo repository.ResultRepository,
	lessonRepo repository.LessonRepository,
	stats *StatsCache,
	log *logger.Logger,
) *QuizService {
	return &QuizService{
		tx:           tx,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		lessonRepo:   lessonRepo,
		stats:        stats,
		log:          log.Component("quiz_service"),
	}
}

// List возвращает страницу тестов с числом вопросов
func (s *QuizService) List(ctx context.Context, page PageRequest) (*QuizPage, error) {
	quizzes, total, err := s.quizRepo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return &QuizPage{Quizzes: quizzes, Pagination: NewPagination(page, total)}, nil
}

// ListByLesson возвращает тесты урока
func (s *QuizService) ListByLesson(ctx context.Context, lessonID uint) ([]repository.QuizSummary, error) {
	return s.quizRepo.ListByLesson(ctx, lessonID)
}

// Get возвращает тест с вопросами
func (s *QuizService) Get(ctx context.Context, id uint) (*QuizDetail, error) {
	summary, err := s.quizRepo.GetSummary(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	questions, err := s.questionRepo.GetByQuizID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return &QuizDetail{Quiz: summary, Questions: questions}, nil
}

// Create создает тест с вопросами в одной транзакции
func (s *QuizService) Create(ctx context.Context, authorID uint, input QuizInput) (*QuizDetail, error) {
	questions, err := buildQuestions(input.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &entity.Quiz{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		LessonID:    input.LessonID,
		CreatedBy:   &authorID,
		Questions:   questions,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureLesson(ctx, input.LessonID); err != nil {
			return err
		}
		return s.quizRepo.Create(ctx, quiz)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("[QuizService] Тест создан", "quiz_id", quiz.ID, "questions", len(questions))
	return s.Get(ctx, quiz.ID)
}

// Update обновляет поля теста и полностью заменяет набор вопросов.
// При ошибке транзакция откатывается и прежние вопросы сохраняются.
func (s *QuizService) Update(ctx context.Context, id uint, input QuizInput) (*QuizDetail, error) {
	questions, err := buildQuestions(input.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &entity.Quiz{
		ID:          id,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		LessonID:    input.LessonID,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureLesson(ctx, input.LessonID); err != nil {
			return err
		}
		if err := s.quizRepo.Update(ctx, quiz); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrQuizNotFound
			}
			return err
		}
		if err := s.questionRepo.DeleteByQuizID(ctx, id); err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = id
		}
		return s.questionRepo.CreateBatch(ctx, questions)
	})
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx, id)
	s.log.Info("[QuizService] Тест обновлен", "quiz_id", id, "questions", len(questions))
	return s.Get(ctx, id)
}

// Delete удаляет тест вместе с вопросами и результатами
func (s *QuizService) Delete(ctx context.Context, id uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.quizRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrQuizNotFound
			}
			return err
		}
		if err := s.resultRepo.DeleteByQuizID(ctx, id); err != nil {
			return err
		}
		if err := s.questionRepo.DeleteByQuizID(ctx, id); err != nil {
			return err
		}
		return s.quizRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.stats.Invalidate(ctx, id)
	s.log.Info("[QuizService] Тест удален", "quiz_id", id)
	return nil
}

func (s *QuizService) ensureLesson(ctx context.Context, lessonID *uint) error {
	if lessonID == nil {
		return nil
	}
	exists, err := s.lessonRepo.Exists(ctx, *lessonID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrLessonNotFound
	}
	return nil
}

// buildQuestions проверяет вопросы и превращает их в сущности
func buildQuestions(inputs []QuestionInput) ([]entity.Question, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: quiz must have at least one question", ErrInvalidQuestion)
	}

	questions := make([]entity.Question, 0, len(inputs))
	for i, in := range inputs {
		points := in.Points
		if points == 0 {
			points = 1
		}
		q := entity.Question{
			QuestionText:  strings.TrimSpace(in.QuestionText),
			Options:       entity.StringArray(in.Options),
			CorrectAnswer: in.CorrectAnswer,
			Points:        points,
		}
		if q.QuestionText == "" {
			return nil, fmt.Errorf("%w: question %d: text is required", ErrInvalidQuestion, i+1)
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidQuestion, i+1, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}
