package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/pkg/auth"
)

const testJWTSecret = "test-secret-key-with-at-least-32-bytes"

// createTestAuthService создаёт AuthService для тестирования с моками
func createTestAuthService(t *testing.T, userRepo *MockUserRepository, email EmailService) *AuthService {
	t.Helper()
	jwtService, err := auth.NewJWTService(testJWTSecret, time.Hour, "lms-api")
	require.NoError(t, err)
	return NewAuthService(userRepo, jwtService, email, logger.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)
	sent := make(chan struct{})

	mockUserRepo.On("ExistsByUsernameOrEmail", mock.Anything, "newuser", "new@example.com").Return(false, nil)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.User).ID = 42
		}).
		Return(nil)
	mockEmail.On("SendWelcome", mock.Anything, "new@example.com", "newuser").
		Run(func(mock.Arguments) { close(sent) }).
		Return(nil)

	authService := createTestAuthService(t, mockUserRepo, mockEmail)

	// Act
	result, err := authService.Register(context.Background(), RegisterInput{
		Username: "  newuser ",
		Email:    "New@Example.com",
		Password: "password123",
	})

	// Assert
	require.NoError(t, err, "Регистрация должна быть успешной")
	assert.Equal(t, uint(42), result.User.ID)
	assert.Equal(t, "newuser", result.User.Username)
	assert.Equal(t, "new@example.com", result.User.Email)
	assert.Equal(t, entity.RoleStudent, result.User.Role, "Роль по умолчанию - student")
	assert.NotEmpty(t, result.Token)

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("Приветственное письмо не было отправлено")
	}
	mockUserRepo.AssertExpectations(t)
	mockEmail.AssertExpectations(t)
}

func TestAuthService_Register_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   RegisterInput
		setup   func(m *MockUserRepository)
		wantErr error
	}{
		{
			name:  "занятое имя или email",
			input: RegisterInput{Username: "taken", Email: "taken@example.com", Password: "password"},
			setup: func(m *MockUserRepository) {
				m.On("ExistsByUsernameOrEmail", mock.Anything, "taken", "taken@example.com").Return(true, nil)
			},
			wantErr: ErrUserExists,
		},
		{
			name:  "гонка на уникальном индексе",
			input: RegisterInput{Username: "racer", Email: "racer@example.com", Password: "password"},
			setup: func(m *MockUserRepository) {
				m.On("ExistsByUsernameOrEmail", mock.Anything, "racer", "racer@example.com").Return(false, nil)
				m.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrConflict)
			},
			wantErr: ErrUserExists,
		},
		{
			name:    "регистрация администратора запрещена",
			input:   RegisterInput{Username: "boss", Email: "boss@example.com", Password: "password", Role: "admin"},
			setup:   func(m *MockUserRepository) {},
			wantErr: ErrInvalidRole,
		},
		{
			name:    "неизвестная роль",
			input:   RegisterInput{Username: "who", Email: "who@example.com", Password: "password", Role: "moderator"},
			setup:   func(m *MockUserRepository) {},
			wantErr: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockUserRepo := new(MockUserRepository)
			tt.setup(mockUserRepo)
			authService := createTestAuthService(t, mockUserRepo, nil)

			// Act
			result, err := authService.Register(context.Background(), tt.input)

			// Assert
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	// Arrange
	user := &entity.User{ID: 7, Username: "alice", Email: "alice@example.com", Password: "correctPassword123", Role: entity.RoleStudent}
	require.NoError(t, user.BeforeSave(nil))

	tests := []struct {
		name     string
		username string
		password string
		setup    func(m *MockUserRepository)
		wantErr  error
	}{
		{
			name:     "верные данные",
			username: "alice",
			password: "correctPassword123",
			setup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
			},
		},
		{
			name:     "неверный пароль",
			username: "alice",
			password: "wrong",
			setup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "пользователь не найден",
			username: "bob",
			password: "whatever",
			setup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "bob").Return(nil, apperrors.ErrNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "база недоступна",
			username: "alice",
			password: "correctPassword123",
			setup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "alice").Return(nil, apperrors.ErrUnavailable)
			},
			wantErr: apperrors.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			tt.setup(mockUserRepo)
			authService := createTestAuthService(t, mockUserRepo, nil)

			// Act
			result, err := authService.Login(context.Background(), tt.username, tt.password)

			// Assert
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, result.User.ID)
			assert.NotEmpty(t, result.Token)
		})
	}
}

func TestAuthService_ResolveUser(t *testing.T) {
	// Arrange
	user := &entity.User{ID: 3, Username: "carol", Role: entity.RoleAdmin}
	mockUserRepo := new(MockUserRepository)
	authService := createTestAuthService(t, mockUserRepo, nil)

	token, err := authService.jwtService.GenerateToken(user)
	require.NoError(t, err)

	t.Run("валидный токен", func(t *testing.T) {
		mockUserRepo.On("GetByID", mock.Anything, uint(3)).Return(user, nil).Once()

		resolved, err := authService.ResolveUser(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, user, resolved)
	})

	t.Run("пользователь удален", func(t *testing.T) {
		mockUserRepo.On("GetByID", mock.Anything, uint(3)).Return(nil, apperrors.ErrNotFound).Once()

		resolved, err := authService.ResolveUser(context.Background(), token)

		assert.Nil(t, resolved)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("испорченный токен", func(t *testing.T) {
		resolved, err := authService.ResolveUser(context.Background(), token+"x")

		assert.Nil(t, resolved)
		assert.True(t, errors.Is(err, auth.ErrTokenInvalid))
	})

	mockUserRepo.AssertExpectations(t)
}
