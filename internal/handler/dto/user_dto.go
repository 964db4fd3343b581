package dto

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/service"
)

// UserResponse представляет пользователя в ответе клиенту. Хеш пароля не отдается
type UserResponse struct {
	ID        uint        `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AuthResponse - ответ на регистрацию и вход
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UserListResponse - страница пользователей
type UserListResponse struct {
	Users      []UserResponse     `json:"users"`
	Pagination service.Pagination `json:"pagination"`
}

// NewUserResponse создает DTO пользователя
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewAuthResponse создает DTO ответа аутентификации
func NewAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{User: NewUserResponse(res.User), Token: res.Token}
}

// NewUserListResponse создает DTO страницы пользователей
func NewUserListResponse(page *service.UserPage) UserListResponse {
	users := make([]UserResponse, 0, len(page.Users))
	for i := range page.Users {
		users = append(users, NewUserResponse(&page.Users[i]))
	}
	return UserListResponse{Users: users, Pagination: page.Pagination}
}
