package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
)

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo repository.UserRepository
	log      *logger.Logger
	now      func() time.Time
}

// UserPage - страница списка пользователей
type UserPage struct {
	Users      []entity.User
	Pagination Pagination
}

// UserOverview - сводка по пользователям для панели администратора
type UserOverview struct {
	TotalUsers      int64 `json:"total_users"`
	Students        int64 `json:"students"`
	Admins          int64 `json:"admins"`
	RegisteredToday int64 `json:"registered_today"`
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository, log *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      log.Component("user_service"),
		now:      time.Now,
	}
}

// List возвращает страницу пользователей, новые первыми
func (s *UserService) List(ctx context.Context, page PageRequest) (*UserPage, error) {
	users, total, err := s.userRepo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		s.log.Error("[UserService] Ошибка получения списка пользователей", "error", err)
		return nil, err
	}
	return &UserPage{Users: users, Pagination: NewPagination(page, total)}, nil
}

// Get возвращает пользователя по ID
func (s *UserService) Get(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateRole меняет роль пользователя и возвращает обновленную запись
func (s *UserService) UpdateRole(ctx context.Context, userID uint, roleName string) (*entity.User, error) {
	role, ok := entity.ParseRole(roleName)
	if !ok {
		return nil, ErrInvalidRole
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.log.Info("[UserService] Роль пользователя изменена", "user_id", userID, "role", role)
	return s.Get(ctx, userID)
}

// OverviewStats считает пользователей по ролям и зарегистрированных сегодня
func (s *UserService) OverviewStats(ctx context.Context) (*UserOverview, error) {
	var overview UserOverview
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview.TotalUsers, err = s.userRepo.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		overview.Students, err = s.userRepo.Count(gctx, entity.RoleStudent)
		return err
	})
	g.Go(func() (err error) {
		overview.Admins, err = s.userRepo.Count(gctx, entity.RoleAdmin)
		return err
	})
	g.Go(func() (err error) {
		overview.RegisteredToday, err = s.userRepo.CountCreatedSince(gctx, startOfDay)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	return &overview, nil
}
