package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/pkg/database"
)

// SubmissionService оценивает и сохраняет попытки прохождения тестов
type SubmissionService struct {
	tx         database.Transactor
	quizRepo   repository.QuizRepository
	resultRepo repository.ResultRepository
	stats      *StatsCache
	events     EventPublisher
	log        *logger.Logger
	now        func() time.Time
}

// SubmissionResult - сохраненный результат и производные поля для ответа
type SubmissionResult struct {
	Result     *entity.Result
	QuizTitle  string
	Percentage int
}

// NewSubmissionService создает сервис отправки тестов. events может быть nil
func NewSubmissionService(
	tx database.Transactor,
	quizRepo repository.QuizRepository,
	resultRepo repository.ResultRepository,
	stats *StatsCache,
	events EventPublisher,
	log *logger.Logger,
) *SubmissionService {
	if events == nil {
		events = noopPublisher{}
	}
	return &SubmissionService{
		tx:         tx,
		quizRepo:   quizRepo,
		resultRepo: resultRepo,
		stats:      stats,
		events:     events,
		log:        log.Component("submission_service"),
		now:        time.Now,
	}
}

// SubmitQuiz атомарно оценивает ответы и сохраняет результат.
// Повторная попытка того же пользователя возвращает ErrAlreadyCompleted,
// в том числе когда гонку ловит уникальный индекс (user_id, quiz_id).
func (s *SubmissionService) SubmitQuiz(ctx context.Context, user *entity.User, quizID uint, answers []entity.SubmittedAnswer) (*SubmissionResult, error) {
	if user == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if answers == nil {
		answers = []entity.SubmittedAnswer{}
	}

	var (
		result *entity.Result
		quiz   *entity.Quiz
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		quiz, err = s.quizRepo.GetWithQuestions(ctx, quizID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrQuizNotFound
			}
			return err
		}

		completed, err := s.resultRepo.ExistsForUserAndQuiz(ctx, user.ID, quizID)
		if err != nil {
			return err
		}
		if completed {
			return ErrAlreadyCompleted
		}

		score, total := ScoreAnswers(quiz.Questions, answers)
		result = &entity.Result{
			UserID:      user.ID,
			QuizID:      quizID,
			Score:       score,
			TotalPoints: total,
			Answers:     datatypes.NewJSONType(answers),
			CompletedAt: s.now(),
		}
		return s.resultRepo.Create(ctx, result)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, ErrAlreadyCompleted) {
			s.log.Info("[SubmissionService] Повторная отправка отклонена уникальным индексом", "user_id", user.ID, "quiz_id", quizID)
			return nil, ErrAlreadyCompleted
		}
		if errors.Is(err, ErrQuizNotFound) || errors.Is(err, ErrAlreadyCompleted) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit quiz: %w", err)
	}

	percentage := result.Percentage()
	s.log.Info("[SubmissionService] Тест пройден",
		"user_id", user.ID, "quiz_id", quizID, "score", result.Score, "total_points", result.TotalPoints)

	s.stats.Invalidate(ctx, quizID)
	event := ResultSubmittedEvent{
		ResultID:    result.ID,
		UserID:      user.ID,
		Username:    user.Username,
		QuizID:      quizID,
		QuizTitle:   quiz.Title,
		Score:       result.Score,
		TotalPoints: result.TotalPoints,
		Percentage:  percentage,
		CompletedAt: result.CompletedAt,
	}
	if err := s.events.Publish(ctx, EventResultSubmitted, event); err != nil {
		s.log.Warn("[SubmissionService] Не удалось опубликовать событие", "result_id", result.ID, "error", err)
	}

	return &SubmissionResult{Result: result, QuizTitle: quiz.Title, Percentage: percentage}, nil
}

// ScoreAnswers считает набранные и максимальные баллы.
// Каждый вопрос теста входит в total; при повторе question_id учитывается последний ответ,
// ответы на чужие вопросы игнорируются.
func ScoreAnswers(questions []entity.Question, answers []entity.SubmittedAnswer) (score, total int) {
	selected := make(map[uint]int, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedAnswer
	}

	for i := range questions {
		q := &questions[i]
		total += q.Points
		if answer, ok := selected[q.ID]; ok && q.IsCorrect(answer) {
			score += q.Points
		}
	}
	return score, total
}
