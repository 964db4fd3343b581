package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/pkg/auth"
)

const welcomeEmailTimeout = 15 * time.Second

// AuthService отвечает за регистрацию, вход и проверку токенов
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	email      EmailService
	log        *logger.Logger
}

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Username string
	Email    string
	Password string
	// Role необязательна; при самостоятельной регистрации допускается только student
	Role string
}

// AuthResult - пользователь и выданный ему токен
type AuthResult struct {
	User  *entity.User
	Token string
}

// NewAuthService создает сервис аутентификации. email может быть nil
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	email EmailService,
	log *logger.Logger,
) *AuthService {
	if email == nil {
		email = NewNoopEmailService(log)
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		email:      email,
		log:        log.Component("auth_service"),
	}
}

// Register создает студента и выдает ему токен
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)

	role := entity.RoleStudent
	if input.Role != "" {
		parsed, ok := entity.ParseRole(input.Role)
		if !ok || parsed != entity.RoleStudent {
			return nil, ErrInvalidRole
		}
		role = parsed
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Параллельная регистрация с тем же именем упирается в уникальный индекс
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info("[AuthService] Пользователь зарегистрирован", "user_id", user.ID, "username", user.Username)
	s.sendWelcome(ctx, user)

	return &AuthResult{User: user, Token: token}, nil
}

// sendWelcome отправляет приветственное письмо в фоне, ошибки только логируются
func (s *AuthService) sendWelcome(ctx context.Context, user *entity.User) {
	bg := context.WithoutCancel(ctx)
	email, username, userID := user.Email, user.Username, user.ID
	go func() {
		sendCtx, cancel := context.WithTimeout(bg, welcomeEmailTimeout)
		defer cancel()
		if err := s.email.SendWelcome(sendCtx, email, username); err != nil {
			s.log.Warn("[AuthService] Не удалось отправить приветственное письмо", "user_id", userID, "error", err)
		}
	}()
}

// Login проверяет имя пользователя и пароль и выдает токен
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile возвращает пользователя по ID
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ResolveUser проверяет токен и загружает его владельца.
// Возвращает auth.ErrTokenExpired, auth.ErrTokenInvalid или ErrUserNotFound.
func (s *AuthService) ResolveUser(ctx context.Context, tokenString string) (*entity.User, error) {
	claims, err := s.jwtService.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, claims.UserID)
}

// normalizeEmail приводит email к стандартному виду: trim пробелов + lowercase
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
