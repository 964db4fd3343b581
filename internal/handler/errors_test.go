package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"user exists", service.ErrUserExists, http.StatusConflict, "user_exists"},
		{"invalid role", service.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
		{"lesson has quizzes", service.ErrLessonHasQuizzes, http.StatusConflict, "lesson_has_quizzes"},
		{"wrapped already completed", fmt.Errorf("submit: %w", service.ErrAlreadyCompleted), http.StatusConflict, "quiz_already_completed"},
		{"quiz not found", service.ErrQuizNotFound, http.StatusNotFound, "quiz_not_found"},
		{"feedback exists", service.ErrFeedbackExists, http.StatusConflict, "feedback_exists"},
		{"invalid rating", service.ErrInvalidRating, http.StatusBadRequest, "invalid_rating"},
		{"access denied", service.ErrAccessDenied, http.StatusForbidden, "access_denied"},
		{"unsupported format", service.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_format"},
		{"invalid question", fmt.Errorf("%w: question 2: options must have 2 to 6 items", service.ErrInvalidQuestion), http.StatusBadRequest, "invalid_question"},
		{"generic validation", fmt.Errorf("%w: title is required", apperrors.ErrValidation), http.StatusBadRequest, "validation_error"},
		{"generic not found", fmt.Errorf("get: %w", apperrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{"generic conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"timeout", fmt.Errorf("list: %w: %v", apperrors.ErrTimeout, context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"unavailable", apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"unknown", errors.New("pq: syntax error at or near SELECT"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c, w := newTestGinContext(http.MethodGet, "/api/test", nil)

			// Act
			respondError(c, logger.Nop(), tt.err)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, tt.wantType, resp["error_type"])
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	// Arrange
	c, w := newTestGinContext(http.MethodGet, "/api/test", nil)

	// Act
	respondError(c, logger.Nop(), errors.New(`pq: relation "users" does not exist`))

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Equal(t, "Internal server error", parseJSONResponse(t, w)["error"])
}

func TestRespondError_InvalidQuestionMessage(t *testing.T) {
	// Arrange
	c, w := newTestGinContext(http.MethodPost, "/api/quizzes", nil)
	err := fmt.Errorf("%w: question 1: correct_answer out of range", service.ErrInvalidQuestion)

	// Act
	respondError(c, logger.Nop(), err)

	// Assert
	resp := parseJSONResponse(t, w)
	assert.Contains(t, resp["error"], "question 1: correct_answer out of range")
	assert.NotContains(t, resp["error"], "validation failed")
}

func TestBindJSON_ValidationDetails(t *testing.T) {
	tests := []struct {
		name        string
		body        interface{}
		wantDetails []string
	}{
		{
			name:        "missing fields",
			body:        map[string]string{},
			wantDetails: []string{"username", "email", "password"},
		},
		{
			name:        "bad email and short password",
			body:        map[string]string{"username": "alice", "email": "not-an-email", "password": "123"},
			wantDetails: []string{"email", "password"},
		},
		{
			name:        "non alphanumeric username",
			body:        map[string]string{"username": "al ice!", "email": "a@example.com", "password": "secret1"},
			wantDetails: []string{"username"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c, w := newTestGinContext(http.MethodPost, "/api/auth/register", tt.body)
			var req RegisterRequest

			// Act
			ok := bindJSON(c, &req)

			// Assert
			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, "validation_error", resp["error_type"])
			details, isMap := resp["details"].(map[string]interface{})
			require.True(t, isMap, "details should be an object: %s", w.Body.String())
			for _, field := range tt.wantDetails {
				assert.Contains(t, details, field)
			}
		})
	}
}

func TestBindJSON_NotBlank(t *testing.T) {
	// Arrange
	c, w := newTestGinContext(http.MethodPost, "/api/auth/login", map[string]string{"username": "   ", "password": "secret"})
	var req LoginRequest

	// Act
	ok := bindJSON(c, &req)

	// Assert
	assert.False(t, ok)
	details := parseJSONResponse(t, w)["details"].(map[string]interface{})
	assert.Equal(t, "username cannot be blank", details["username"])
}

func TestBindJSON_MalformedBody(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")
	var req LoginRequest

	// Act
	ok := bindJSON(c, &req)

	// Assert
	assert.False(t, ok)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "validation_error", resp["error_type"])
	assert.Equal(t, "Invalid request body", resp["error"])
}

func TestBindJSON_NestedFieldPath(t *testing.T) {
	// Arrange
	body := map[string]interface{}{
		"quiz_id": 1,
		"answers": []map[string]interface{}{
			{"question_id": 1},
			{"question_id": 2, "selected_answer": -1},
		},
	}
	c, w := newTestGinContext(http.MethodPost, "/api/quiz-results", body)
	var req SubmitQuizRequest

	// Act
	ok := bindJSON(c, &req)

	// Assert
	assert.False(t, ok)
	details := parseJSONResponse(t, w)["details"].(map[string]interface{})
	assert.Contains(t, details, "answers[0].selected_answer")
	assert.Contains(t, details, "answers[1].selected_answer")
	assert.NotContains(t, details, "selected_answer")
}
