package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
)

// ResultService строит отчеты по результатам тестов
type ResultService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	resultRepo   repository.ResultRepository
	stats        *StatsCache
	log          *logger.Logger
}

// LeaderboardEntry - строка лидерборда с местом и процентом
type LeaderboardEntry struct {
	Rank       int
	Row        repository.LeaderboardRow
	Percentage int
}

// LeaderboardPage - страница лидерборда теста
type LeaderboardPage struct {
	Entries    []LeaderboardEntry
	Pagination Pagination
}

// QuizResultsReport - отчет администратора: тест, страница лидерборда и статистика
type QuizResultsReport struct {
	Quiz        *entity.Quiz
	Leaderboard *LeaderboardPage
	Statistics  *repository.QuizStatistics
}

// HistoryEntry - результат из истории пользователя
type HistoryEntry struct {
	Row        repository.UserResultRow
	Percentage int
}

// HistoryPage - страница истории пользователя
type HistoryPage struct {
	Entries    []HistoryEntry
	Pagination Pagination
}

// AnswerBreakdown - разбор одного вопроса в результате
type AnswerBreakdown struct {
	QuestionID    uint
	QuestionText  string
	Options       []string
	CorrectAnswer int
	UserAnswer    *int
	Points        int
	IsCorrect     bool
}

// ResultDetail - результат с разбором ответов
type ResultDetail struct {
	Row             *repository.ResultDetailRow
	Percentage      int
	DetailedAnswers []AnswerBreakdown
}

// NewResultService создает сервис отчетов по результатам
func NewResultService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	resultRepo repository.ResultRepository,
	stats *StatsCache,
	log *logger.Logger,
) *ResultService {
	return &ResultService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		stats:        stats,
		log:          log.Component("result_service"),
	}
}

// GetQuizStatistics возвращает число попыток и средний, лучший и худший процент.
// Значения читаются из кеша, при промахе считаются в БД и кешируются.
func (s *ResultService) GetQuizStatistics(ctx context.Context, quizID uint) (*repository.QuizStatistics, error) {
	if _, err := s.getQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.statistics(ctx, quizID)
}

func (s *ResultService) statistics(ctx context.Context, quizID uint) (*repository.QuizStatistics, error) {
	if cached, ok := s.stats.Get(ctx, quizID); ok {
		return cached, nil
	}

	stats, err := s.resultRepo.GetStatistics(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz statistics: %w", err)
	}
	stats.AveragePercentage = round2(stats.AveragePercentage)
	stats.HighestPercentage = round2(stats.HighestPercentage)
	stats.LowestPercentage = round2(stats.LowestPercentage)

	s.stats.Set(ctx, quizID, stats)
	return stats, nil
}

// GetQuizLeaderboard возвращает страницу лидерборда.
// Место считается как offset + позиция на странице + 1.
func (s *ResultService) GetQuizLeaderboard(ctx context.Context, quizID uint, page PageRequest) (*LeaderboardPage, error) {
	if _, err := s.getQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.leaderboard(ctx, quizID, page)
}

func (s *ResultService) leaderboard(ctx context.Context, quizID uint, page PageRequest) (*LeaderboardPage, error) {
	rows, total, err := s.resultRepo.GetLeaderboard(ctx, quizID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return &LeaderboardPage{
		Entries:    rankRows(rows, page.Offset()),
		Pagination: NewPagination(page, total),
	}, nil
}

// GetQuizResultsReport возвращает тест, страницу лидерборда и статистику
func (s *ResultService) GetQuizResultsReport(ctx context.Context, quizID uint, page PageRequest) (*QuizResultsReport, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	board, err := s.leaderboard(ctx, quizID, page)
	if err != nil {
		return nil, err
	}
	stats, err := s.statistics(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return &QuizResultsReport{Quiz: quiz, Leaderboard: board, Statistics: stats}, nil
}

// ExportQuizResults возвращает тест и все его результаты в порядке лидерборда
func (s *ResultService) ExportQuizResults(ctx context.Context, quizID uint) (*entity.Quiz, []LeaderboardEntry, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.resultRepo.ListForExport(ctx, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list results for export: %w", err)
	}
	return quiz, rankRows(rows, 0), nil
}

// GetUserHistory возвращает результаты пользователя, новые первыми
func (s *ResultService) GetUserHistory(ctx context.Context, userID uint, page PageRequest) (*HistoryPage, error) {
	rows, total, err := s.resultRepo.GetUserHistory(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to get user history: %w", err)
	}

	entries := make([]HistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = HistoryEntry{Row: row, Percentage: entity.Percentage(row.Score, row.TotalPoints)}
	}
	return &HistoryPage{Entries: entries, Pagination: NewPagination(page, total)}, nil
}

// GetResultDetail возвращает результат с разбором по вопросам.
// Доступ есть у владельца результата и у администратора.
func (s *ResultService) GetResultDetail(ctx context.Context, resultID uint, requester *entity.User) (*ResultDetail, error) {
	row, err := s.resultRepo.GetDetail(ctx, resultID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	if requester == nil || !requester.CanAccess(row.UserID) {
		return nil, ErrAccessDenied
	}

	questions, err := s.questionRepo.GetByQuizID(ctx, row.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return &ResultDetail{
		Row:             row,
		Percentage:      row.Percentage(),
		DetailedAnswers: BuildAnswerBreakdown(questions, row.Answers.Data()),
	}, nil
}

// DeleteResult удаляет результат и сбрасывает статистику теста
func (s *ResultService) DeleteResult(ctx context.Context, resultID uint) error {
	result, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrResultNotFound
		}
		return err
	}
	if err := s.resultRepo.Delete(ctx, resultID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrResultNotFound
		}
		return err
	}

	s.stats.Invalidate(ctx, result.QuizID)
	s.log.Info("[ResultService] Результат удален", "result_id", resultID, "quiz_id", result.QuizID)
	return nil
}

func (s *ResultService) getQuiz(ctx context.Context, quizID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// BuildAnswerBreakdown сопоставляет текущие вопросы теста с сохраненными ответами.
// При повторе question_id берется последний ответ, как и при подсчете баллов.
func BuildAnswerBreakdown(questions []entity.Question, answers []entity.SubmittedAnswer) []AnswerBreakdown {
	selected := make(map[uint]int, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedAnswer
	}

	breakdown := make([]AnswerBreakdown, len(questions))
	for i := range questions {
		q := &questions[i]
		item := AnswerBreakdown{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		}
		if answer, ok := selected[q.ID]; ok {
			item.UserAnswer = &answer
			item.IsCorrect = q.IsCorrect(answer)
		}
		breakdown[i] = item
	}
	return breakdown
}

func rankRows(rows []repository.LeaderboardRow, offset int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{
			Rank:       offset + i + 1,
			Row:        row,
			Percentage: entity.Percentage(row.Score, row.TotalPoints),
		}
	}
	return entries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 округляет до одного знака после запятой
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
