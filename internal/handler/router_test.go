package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/middleware"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/repository/postgres"
	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/internal/testutil"
	"github.com/yourusername/lms-api/internal/websocket"
	"github.com/yourusername/lms-api/pkg/auth"
	"github.com/yourusername/lms-api/pkg/database"
)

// fakePinger имитирует *sql.DB для health check
type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error { return p.err }

// testServer собирает роутер поверх in-memory SQLite и настоящих сервисов
type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	jwt    *auth.JWTService
}

func newTestServer(t *testing.T, pinger Pinger) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Nop()
	tx := database.NewTransactor(db)

	userRepo := postgres.NewUserRepo(db)
	lessonRepo := postgres.NewLessonRepo(db)
	quizRepo := postgres.NewQuizRepo(db)
	questionRepo := postgres.NewQuestionRepo(db)
	resultRepo := postgres.NewResultRepo(db)
	feedbackRepo := postgres.NewFeedbackRepo(db)

	jwtService, err := auth.NewJWTService("test-secret-that-is-long-enough-123", time.Hour, "lms-test")
	require.NoError(t, err)

	stats := service.NewStatsCache(nil, 0, log)
	authService := service.NewAuthService(userRepo, jwtService, nil, log)

	router := NewRouter(RouterConfig{
		AuthHandler:     NewAuthHandler(authService, log),
		UserHandler:     NewUserHandler(service.NewUserService(userRepo, log), log),
		LessonHandler:   NewLessonHandler(service.NewLessonService(tx, lessonRepo, quizRepo, feedbackRepo, log), log),
		QuizHandler:     NewQuizHandler(service.NewQuizService(tx, quizRepo, questionRepo, resultRepo, lessonRepo, stats, log), log),
		ResultHandler: NewResultHandler(
			service.NewSubmissionService(tx, quizRepo, resultRepo, stats, nil, log),
			service.NewResultService(quizRepo, questionRepo, resultRepo, stats, log),
			log,
		),
		FeedbackHandler: NewFeedbackHandler(service.NewFeedbackService(feedbackRepo, lessonRepo, log), log),
		FeedHandler:     NewFeedHandler(websocket.NewHub(log), nil, log),
		HealthHandler:   NewHealthHandler(pinger, nil, log),
		AuthMiddleware:  middleware.NewAuthMiddleware(authService, log),
		RateLimiter:     middleware.NewRateLimiter(nil, log),
		RequestTimeout:  5 * time.Second,
		Logger:          log,
	})

	return &testServer{t: t, db: db, router: router, jwt: jwtService}
}

func (s *testServer) tokenFor(user *entity.User) string {
	s.t.Helper()
	token, err := s.jwt.GenerateToken(user)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, fakePinger{})

	// Регистрация
	w := srv.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := parseJSONResponse(t, w)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "student", user["role"])
	assert.NotContains(t, w.Body.String(), "password")

	// Повторная регистрация
	w = srv.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "user_exists", parseJSONResponse(t, w)["error_type"])

	// Вход
	w = srv.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", parseJSONResponse(t, w)["error_type"])

	// Профиль
	w = srv.do(http.MethodGet, "/api/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	profile := parseJSONResponse(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "alice", profile["username"])
}

func TestRegister_Roles(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
		wantType   string
	}{
		{name: "default role", role: "", wantStatus: http.StatusCreated},
		{name: "explicit student", role: "student", wantStatus: http.StatusCreated},
		{name: "admin rejected", role: "admin", wantStatus: http.StatusBadRequest, wantType: "invalid_role"},
		{name: "unknown role", role: "moderator", wantStatus: http.StatusBadRequest, wantType: "invalid_role"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			srv := newTestServer(t, fakePinger{})
			body := map[string]string{
				"username": fmt.Sprintf("user%d", i),
				"email":    fmt.Sprintf("user%d@example.com", i),
				"password": "secret1",
				"role":     tt.role,
			}

			// Act
			w := srv.do(http.MethodPost, "/api/auth/register", body, "")

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, parseJSONResponse(t, w)["error_type"])
			}
		})
	}
}

func TestGetQuiz_CorrectAnswerVisibility(t *testing.T) {
	// Arrange
	srv := newTestServer(t, fakePinger{})
	admin := testutil.CreateUser(t, srv.db, "admin", entity.RoleAdmin)
	student := testutil.CreateUser(t, srv.db, "student", entity.RoleStudent)
	quiz := testutil.TwoQuestionQuiz(t, srv.db, nil)
	path := fmt.Sprintf("/api/quizzes/%d", quiz.ID)

	tests := []struct {
		name        string
		token       string
		wantAnswers bool
	}{
		{name: "anonymous", token: "", wantAnswers: false},
		{name: "student", token: srv.tokenFor(student), wantAnswers: false},
		{name: "admin", token: srv.tokenFor(admin), wantAnswers: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			w := srv.do(http.MethodGet, path, nil, tt.token)

			// Assert
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			quizResp := parseJSONResponse(t, w)["quiz"].(map[string]interface{})
			questions := quizResp["questions"].([]interface{})
			require.Len(t, questions, 2)
			for _, q := range questions {
				_, has := q.(map[string]interface{})["correct_answer"]
				assert.Equal(t, tt.wantAnswers, has)
			}
		})
	}
}

func TestSubmitQuiz_Flow(t *testing.T) {
	// Arrange
	srv := newTestServer(t, fakePinger{})
	admin := testutil.CreateUser(t, srv.db, "admin", entity.RoleAdmin)
	student := testutil.CreateUser(t, srv.db, "student", entity.RoleStudent)
	other := testutil.CreateUser(t, srv.db, "other", entity.RoleStudent)
	quiz := testutil.TwoQuestionQuiz(t, srv.db, nil)
	studentToken := srv.tokenFor(student)

	body := map[string]interface{}{
		"quiz_id": quiz.ID,
		"answers": []map[string]interface{}{
			{"question_id": quiz.Questions[0].ID, "selected_answer": 0},
			{"question_id": quiz.Questions[1].ID, "selected_answer": 0},
		},
	}

	// Act: первая отправка
	w := srv.do(http.MethodPost, "/api/quiz-results", body, studentToken)

	// Assert
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "Quiz completed successfully", resp["message"])
	result := resp["quiz_result"].(map[string]interface{})
	assert.EqualValues(t, 1, result["score"])
	assert.EqualValues(t, 3, result["total_points"])
	assert.EqualValues(t, 33, result["percentage"])
	resultID := uint(result["id"].(float64))

	// Act: повторная отправка
	w = srv.do(http.MethodPost, "/api/quiz-results", body, studentToken)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "quiz_already_completed", parseJSONResponse(t, w)["error_type"])

	// Детали результата видят владелец и администратор
	detailPath := fmt.Sprintf("/api/quiz-results/%d", resultID)
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, detailPath, nil, studentToken).Code)
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, detailPath, nil, srv.tokenFor(admin)).Code)
	w = srv.do(http.MethodGet, detailPath, nil, srv.tokenFor(other))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// История: только сам пользователь или администратор
	historyPath := fmt.Sprintf("/api/quiz-results/user/%d", student.ID)
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, historyPath, nil, studentToken).Code)
	w = srv.do(http.MethodGet, historyPath, nil, srv.tokenFor(other))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "access_denied", parseJSONResponse(t, w)["error_type"])
}

func TestSubmitQuiz_Errors(t *testing.T) {
	srv := newTestServer(t, fakePinger{})
	student := testutil.CreateUser(t, srv.db, "student", entity.RoleStudent)
	token := srv.tokenFor(student)

	tests := []struct {
		name       string
		body       interface{}
		token      string
		wantStatus int
		wantType   string
	}{
		{
			name:       "no token",
			body:       map[string]interface{}{"quiz_id": 1, "answers": []interface{}{}},
			wantStatus: http.StatusUnauthorized,
			wantType:   "token_missing",
		},
		{
			name:       "missing quiz",
			body:       map[string]interface{}{"quiz_id": 999, "answers": []interface{}{}},
			token:      token,
			wantStatus: http.StatusNotFound,
			wantType:   "quiz_not_found",
		},
		{
			name:       "negative answer",
			body:       map[string]interface{}{"quiz_id": 1, "answers": []map[string]interface{}{{"question_id": 1, "selected_answer": -1}}},
			token:      token,
			wantStatus: http.StatusBadRequest,
			wantType:   "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			w := srv.do(http.MethodPost, "/api/quiz-results", tt.body, tt.token)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantType, parseJSONResponse(t, w)["error_type"])
		})
	}
}

func TestQuizResults_AdminReport(t *testing.T) {
	// Arrange
	srv := newTestServer(t, fakePinger{})
	admin := testutil.CreateUser(t, srv.db, "admin", entity.RoleAdmin)
	student := testutil.CreateUser(t, srv.db, "student", entity.RoleStudent)
	quiz := testutil.TwoQuestionQuiz(t, srv.db, nil)
	body := map[string]interface{}{
		"quiz_id": quiz.ID,
		"answers": []map[string]interface{}{
			{"question_id": quiz.Questions[0].ID, "selected_answer": 0},
			{"question_id": quiz.Questions[1].ID, "selected_answer": 1},
		},
	}
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/api/quiz-results", body, srv.tokenFor(student)).Code)
	path := fmt.Sprintf("/api/quiz-results/quiz/%d", quiz.ID)

	// Act
	w := srv.do(http.MethodGet, path, nil, srv.tokenFor(admin))

	// Assert
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "Go basics", resp["quiz_title"])
	entries := resp["quiz_results"].([]interface{})
	require.Len(t, entries, 1)
	first := entries[0].(map[string]interface{})
	assert.EqualValues(t, 1, first["rank"])
	assert.EqualValues(t, 100, first["percentage"])
	assert.Equal(t, "student", first["username"])
	stats := resp["statistics"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_attempts"])

	// Студенту отчет недоступен
	w = srv.do(http.MethodGet, path, nil, srv.tokenFor(student))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "admin_required", parseJSONResponse(t, w)["error_type"])
}

func TestExportQuizResults(t *testing.T) {
	// Arrange
	srv := newTestServer(t, fakePinger{})
	admin := testutil.CreateUser(t, srv.db, "admin", entity.RoleAdmin)
	student := testutil.CreateUser(t, srv.db, "=cmd", entity.RoleStudent)
	quiz := testutil.TwoQuestionQuiz(t, srv.db, nil)
	body := map[string]interface{}{
		"quiz_id": quiz.ID,
		"answers": []map[string]interface{}{{"question_id": quiz.Questions[1].ID, "selected_answer": 1}},
	}
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/api/quiz-results", body, srv.tokenFor(student)).Code)
	adminToken := srv.tokenFor(admin)
	base := fmt.Sprintf("/api/quiz-results/quiz/%d/export", quiz.ID)

	t.Run("csv", func(t *testing.T) {
		// Act
		w := srv.do(http.MethodGet, base+"?format=csv", nil, adminToken)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
		data := w.Body.Bytes()
		require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "CSV должен начинаться с BOM")
		lines := strings.Split(strings.TrimSpace(string(data[3:])), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "Rank,Username,Score,Total points,Percentage", strings.TrimSpace(lines[0]))
		// Формулы экранируются
		assert.Equal(t, "1,'=cmd,2,3,67", strings.TrimSpace(lines[1]))
	})

	t.Run("xlsx", func(t *testing.T) {
		// Act
		w := srv.do(http.MethodGet, base+"?format=xlsx", nil, adminToken)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Results")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, exportHeaders, rows[0])
		assert.Equal(t, "'=cmd", rows[1][1])
	})

	t.Run("unsupported format", func(t *testing.T) {
		// Act
		w := srv.do(http.MethodGet, base+"?format=pdf", nil, adminToken)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "unsupported_format", parseJSONResponse(t, w)["error_type"])
	})
}

func TestInvalidPathID(t *testing.T) {
	srv := newTestServer(t, fakePinger{})

	tests := []struct {
		name string
		path string
	}{
		{name: "lesson", path: "/api/lessons/abc"},
		{name: "quiz zero", path: "/api/quizzes/0"},
		{name: "negative", path: "/api/quizzes/-5"},
		{name: "lesson quizzes", path: "/api/quizzes/lesson/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			w := srv.do(http.MethodGet, tt.path, nil, "")

			// Assert
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "invalid_id", parseJSONResponse(t, w)["error_type"])
		})
	}
}

func TestLessonCRUD(t *testing.T) {
	// Arrange
	srv := newTestServer(t, fakePinger{})
	admin := testutil.CreateUser(t, srv.db, "admin", entity.RoleAdmin)
	student := testutil.CreateUser(t, srv.db, "student", entity.RoleStudent)
	adminToken := srv.tokenFor(admin)
	body := map[string]string{"title": "Channels", "content": "Unbuffered channels block", "level": "intermediate"}

	// Студент не может создавать уроки
	w := srv.do(http.MethodPost, "/api/lessons", body, srv.tokenFor(student))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Создание
	w = srv.do(http.MethodPost, "/api/lessons", body, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lesson := parseJSONResponse(t, w)["lesson"].(map[string]interface{})
	assert.Equal(t, "admin", lesson["creator_username"])
	lessonID := uint(lesson["id"].(float64))

	// Поиск без учета регистра
	w = srv.do(http.MethodGet, "/api/lessons/search/UNBUFFERED", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, parseJSONResponse(t, w)["lessons"], 1)

	// Урок с тестом удалить нельзя
	testutil.CreateQuiz(t, srv.db, "Channels quiz", &lessonID, entity.Question{
		QuestionText: "Does an unbuffered send block?", Options: entity.StringArray{"yes", "no"}, Points: 1,
	})
	w = srv.do(http.MethodDelete, fmt.Sprintf("/api/lessons/%d", lessonID), nil, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "lesson_has_quizzes", parseJSONResponse(t, w)["error_type"])

	// Некорректный уровень
	w = srv.do(http.MethodPut, fmt.Sprintf("/api/lessons/%d", lessonID),
		map[string]string{"title": "Channels", "content": "x", "level": "expert"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", parseJSONResponse(t, w)["error_type"])
}

func TestFeedback_LessonStatistics(t *testing.T) {
	// Arrange
	srv := newTestServer(t, fakePinger{})
	lesson := testutil.CreateLesson(t, srv.db, "Interfaces", nil)
	alice := testutil.CreateUser(t, srv.db, "alice", entity.RoleStudent)
	bob := testutil.CreateUser(t, srv.db, "bob", entity.RoleStudent)

	for user, rating := range map[*entity.User]int{alice: 5, bob: 4} {
		w := srv.do(http.MethodPost, "/api/feedback",
			map[string]interface{}{"lesson_id": lesson.ID, "rating": rating, "comment": "ok"}, srv.tokenFor(user))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// Повторный отзыв
	w := srv.do(http.MethodPost, "/api/feedback",
		map[string]interface{}{"lesson_id": lesson.ID, "rating": 3}, srv.tokenFor(alice))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "feedback_exists", parseJSONResponse(t, w)["error_type"])

	// Act
	w = srv.do(http.MethodGet, fmt.Sprintf("/api/feedback/lesson/%d", lesson.ID), nil, "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Len(t, resp["feedback"], 2)
	stats := resp["statistics"].(map[string]interface{})
	assert.EqualValues(t, 4.5, stats["average_rating"])
	assert.EqualValues(t, 2, stats["total_feedback"])
	breakdown := stats["rating_breakdown"].(map[string]interface{})
	assert.Len(t, breakdown, 5)
	assert.EqualValues(t, 1, breakdown["5"])
	assert.EqualValues(t, 0, breakdown["1"])
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantState  string
	}{
		{name: "ok", wantStatus: http.StatusOK, wantState: "ok"},
		{name: "postgres down", pingErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantState: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			srv := newTestServer(t, fakePinger{err: tt.pingErr})

			// Act
			w := srv.do(http.MethodGet, "/api/health", nil, "")

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, tt.wantState, resp["status"])
			checks := resp["checks"].(map[string]interface{})
			assert.Equal(t, "disabled", checks["redis"])
		})
	}
}

func TestUsers_AdminEndpoints(t *testing.T) {
	// Arrange
	srv := newTestServer(t, fakePinger{})
	admin := testutil.CreateUser(t, srv.db, "admin", entity.RoleAdmin)
	student := testutil.CreateUser(t, srv.db, "student", entity.RoleStudent)
	adminToken := srv.tokenFor(admin)

	// Статистика регистрируется раньше /users/:id
	w := srv.do(http.MethodGet, "/api/users/stats/overview", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := parseJSONResponse(t, w)["statistics"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["total_users"])

	// Смена роли
	w = srv.do(http.MethodPut, fmt.Sprintf("/api/users/%d/role", student.ID), map[string]string{"role": "admin"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(http.MethodPut, fmt.Sprintf("/api/users/%d/role", student.ID), map[string]string{"role": "moderator"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_role", parseJSONResponse(t, w)["error_type"])

	w = srv.do(http.MethodGet, "/api/users/999", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
