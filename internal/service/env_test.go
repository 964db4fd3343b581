package service

import (
	"testing"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/repository/postgres"
	"github.com/yourusername/lms-api/internal/testutil"
	"github.com/yourusername/lms-api/pkg/database"
)

// testEnv связывает настоящие репозитории поверх in-memory SQLite с сервисами
type testEnv struct {
	db *gorm.DB

	users     *postgres.UserRepo
	lessons   *postgres.LessonRepo
	quizzes   *postgres.QuizRepo
	questions *postgres.QuestionRepo
	results   *postgres.ResultRepo
	feedback  *postgres.FeedbackRepo

	lessonService     *LessonService
	quizService       *QuizService
	submissionService *SubmissionService
	resultService     *ResultService
	feedbackService   *FeedbackService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Nop()
	tx := database.NewTransactor(db)
	stats := NewStatsCache(nil, 0, log)

	env := &testEnv{
		db:        db,
		users:     postgres.NewUserRepo(db),
		lessons:   postgres.NewLessonRepo(db),
		quizzes:   postgres.NewQuizRepo(db),
		questions: postgres.NewQuestionRepo(db),
		results:   postgres.NewResultRepo(db),
		feedback:  postgres.NewFeedbackRepo(db),
	}
	env.lessonService = NewLessonService(tx, env.lessons, env.quizzes, env.feedback, log)
	env.quizService = NewQuizService(tx, env.quizzes, env.questions, env.results, env.lessons, stats, log)
	env.submissionService = NewSubmissionService(tx, env.quizzes, env.results, stats, nil, log)
	env.resultService = NewResultService(env.quizzes, env.questions, env.results, stats, log)
	env.feedbackService = NewFeedbackService(env.feedback, env.lessons, log)
	return env
}
