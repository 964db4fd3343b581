package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/pkg/auth"
)

// Ключи контекста Gin, которые заполняет RequireAuth
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
)

// UserResolver проверяет токен и возвращает его владельца
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (*entity.User, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	resolver UserResolver
	log      *logger.Logger
}

// NewAuthMiddleware создает middleware аутентификации
func NewAuthMiddleware(resolver UserResolver, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, log: log.Component("auth_middleware")}
}

type authFailure struct {
	status  int
	message string
	code    string
}

var (
	failTokenMissing = authFailure{http.StatusUnauthorized, "Authorization header is required", "token_missing"}
	failTokenFormat  = authFailure{http.StatusUnauthorized, "Authorization header format must be Bearer {token}", "token_format"}
	failTokenExpired = authFailure{http.StatusUnauthorized, "Token has expired", "token_expired"}
	failTokenInvalid = authFailure{http.StatusUnauthorized, "Invalid token", "token_invalid"}
	failUserNotFound = authFailure{http.StatusUnauthorized, "User no longer exists", "user_not_found"}
)

func (f authFailure) abort(c *gin.Context) {
	c.AbortWithStatusJSON(f.status, gin.H{"error": f.message, "error_type": f.code})
}

// RequireAuth проверяет Bearer-токен и кладет пользователя в контекст
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return m.authenticate(false)
}

// RequireAuthAllowQuery дополнительно принимает токен из query-параметра token.
// Используется для websocket, где браузер не может передать заголовок.
func (m *AuthMiddleware) RequireAuthAllowQuery() gin.HandlerFunc {
	return m.authenticate(true)
}

func (m *AuthMiddleware) authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, failure, ok := bearerToken(c)
		if !ok && allowQuery && failure == failTokenMissing {
			if q := c.Query("token"); q != "" {
				token, ok = q, true
			}
		}
		if !ok {
			failure.abort(c)
			return
		}

		user, err := m.resolver.ResolveUser(c.Request.Context(), token)
		if err != nil {
			m.resolveFailure(err).abort(c)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth кладет пользователя в контекст, если передан валидный токен.
// Анонимные запросы и запросы с невалидным токеном проходят без пользователя.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _, ok := bearerToken(c)
		if ok {
			if user, err := m.resolver.ResolveUser(c.Request.Context(), token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireRole пропускает пользователей с одной из перечисленных ролей.
// Должен применяться ПОСЛЕ RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	adminOnly := len(roles) == 1 && roles[0] == entity.RoleAdmin
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			failTokenMissing.abort(c)
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		if adminOnly {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin rights required", "error_type": "admin_required"})
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions", "error_type": "forbidden"})
	}
}

// AdminOnly - сокращение для RequireRole(entity.RoleAdmin)
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return m.RequireRole(entity.RoleAdmin)
}

// RequireSelfOrAdmin пропускает запрос, если id из контекста (см. ExtractUintParam)
// совпадает с id пользователя или пользователь - администратор.
func (m *AuthMiddleware) RequireSelfOrAdmin(contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			failTokenMissing.abort(c)
			return
		}

		targetID, ok := c.Get(contextKey)
		if !ok {
			m.log.Error("[AuthMiddleware] RequireSelfOrAdmin: параметр не извлечен", "context_key", contextKey)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_error"})
			return
		}

		if id, isUint := targetID.(uint); !isUint || !user.CanAccess(id) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied", "error_type": "access_denied"})
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) resolveFailure(err error) authFailure {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return failTokenExpired
	case errors.Is(err, auth.ErrTokenInvalid):
		return failTokenInvalid
	case errors.Is(err, apperrors.ErrNotFound):
		return failUserNotFound
	}
	m.log.Error("[AuthMiddleware] Ошибка проверки пользователя", "error", err)
	if errors.Is(err, apperrors.ErrTimeout) {
		return authFailure{http.StatusGatewayTimeout, "Request timed out", "timeout"}
	}
	return authFailure{http.StatusServiceUnavailable, "Service temporarily unavailable", "unavailable"}
}

// bearerToken извлекает токен из заголовка Authorization
func bearerToken(c *gin.Context) (string, authFailure, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", failTokenMissing, false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", failTokenFormat, false
	}
	return parts[1], authFailure{}, true
}

func setUser(c *gin.Context, user *entity.User) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
	c.Set(ContextRoleKey, user.Role)
}

// CurrentUser возвращает пользователя, положенного RequireAuth или OptionalAuth
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*entity.User)
	return user, ok && user != nil
}
