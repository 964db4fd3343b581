package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/middleware"
	"github.com/yourusername/lms-api/internal/pkg/logger"
)

// RouterConfig содержит обработчики и middleware, из которых собирается роутер
type RouterConfig struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	LessonHandler   *LessonHandler
	QuizHandler     *QuizHandler
	ResultHandler   *ResultHandler
	FeedbackHandler *FeedbackHandler
	FeedHandler     *FeedHandler
	HealthHandler   *HealthHandler

	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter

	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *logger.Logger
}

// NewRouter регистрирует все маршруты API.
// Статические сегменты регистрируются раньше параметризованных для наглядности
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(cfg.Logger))

	// CORS
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || containsWildcard(cfg.AllowedOrigins) {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	auth := cfg.AuthMiddleware
	userID := middleware.ExtractUintParam("userId", "userID")
	lessonID := middleware.ExtractUintParam("lessonId", "lessonID")
	quizID := middleware.ExtractUintParam("quizId", "quizID")

	api := router.Group("/api")
	api.Use(cfg.RateLimiter.LimitByIP(middleware.DefaultAPIRateLimitConfig()))

	api.GET("/health", cfg.HealthHandler.Health)

	// ===============
	// || Auth      ||
	// ===============
	authGroup := api.Group("/auth")
	{
		strict := cfg.RateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
		authGroup.POST("/register", strict, cfg.AuthHandler.Register)
		authGroup.POST("/login", strict, cfg.AuthHandler.Login)
		authGroup.GET("/profile", auth.RequireAuth(), cfg.AuthHandler.GetProfile)
	}

	// ===============
	// || Users     ||
	// ===============
	users := api.Group("/users", auth.RequireAuth())
	{
		users.GET("", auth.AdminOnly(), cfg.UserHandler.ListUsers)
		users.GET("/stats/overview", auth.AdminOnly(), cfg.UserHandler.GetOverviewStats)
		userByID := middleware.ExtractUintParam("id", "userID")
		users.GET("/:id", userByID, auth.RequireSelfOrAdmin("userID"), cfg.UserHandler.GetUser)
		users.PUT("/:id/role", auth.AdminOnly(), userByID, cfg.UserHandler.UpdateRole)
	}

	// ===============
	// || Lessons   ||
	// ===============
	lessons := api.Group("/lessons")
	{
		lessonByID := middleware.ExtractUintParam("id", "lessonID")
		lessons.GET("", cfg.LessonHandler.ListLessons)
		lessons.GET("/search/:query", cfg.LessonHandler.SearchLessons)
		lessons.GET("/:id", lessonByID, cfg.LessonHandler.GetLesson)
		lessons.POST("", auth.RequireAuth(), auth.AdminOnly(), cfg.LessonHandler.CreateLesson)
		lessons.PUT("/:id", auth.RequireAuth(), auth.AdminOnly(), lessonByID, cfg.LessonHandler.UpdateLesson)
		lessons.DELETE("/:id", auth.RequireAuth(), auth.AdminOnly(), lessonByID, cfg.LessonHandler.DeleteLesson)
	}

	// ===============
	// || Quizzes   ||
	// ===============
	quizzes := api.Group("/quizzes")
	{
		quizByID := middleware.ExtractUintParam("id", "quizID")
		quizzes.GET("", cfg.QuizHandler.ListQuizzes)
		quizzes.GET("/lesson/:lessonId", lessonID, cfg.QuizHandler.ListLessonQuizzes)
		quizzes.GET("/:id", auth.OptionalAuth(), quizByID, cfg.QuizHandler.GetQuiz)
		quizzes.POST("", auth.RequireAuth(), auth.AdminOnly(), cfg.QuizHandler.CreateQuiz)
		quizzes.PUT("/:id", auth.RequireAuth(), auth.AdminOnly(), quizByID, cfg.QuizHandler.UpdateQuiz)
		quizzes.DELETE("/:id", auth.RequireAuth(), auth.AdminOnly(), quizByID, cfg.QuizHandler.DeleteQuiz)
	}

	// ===============
	// || Results   ||
	// ===============
	results := api.Group("/quiz-results")
	{
		resultByID := middleware.ExtractUintParam("id", "resultID")
		results.POST("", auth.RequireAuth(), cfg.ResultHandler.SubmitQuiz)
		results.GET("/feed", auth.RequireAuthAllowQuery(), auth.AdminOnly(), cfg.FeedHandler.HandleConnection)
		results.GET("/user/:userId", auth.RequireAuth(), userID, auth.RequireSelfOrAdmin("userID"), cfg.ResultHandler.GetUserHistory)

		admin := results.Group("/quiz/:quizId", auth.RequireAuth(), auth.AdminOnly(), quizID)
		admin.GET("", cfg.ResultHandler.GetQuizResults)
		admin.GET("/statistics", cfg.ResultHandler.GetQuizStatistics)
		admin.GET("/export", cfg.ResultHandler.ExportQuizResults)

		results.GET("/:id", auth.RequireAuth(), resultByID, cfg.ResultHandler.GetResultDetail)
		results.DELETE("/:id", auth.RequireAuth(), auth.AdminOnly(), resultByID, cfg.ResultHandler.DeleteResult)
	}

	// ===============
	// || Feedback  ||
	// ===============
	feedback := api.Group("/feedback")
	{
		feedbackByID := middleware.ExtractUintParam("id", "feedbackID")
		feedback.GET("", auth.RequireAuth(), auth.AdminOnly(), cfg.FeedbackHandler.ListFeedback)
		feedback.GET("/lesson/:lessonId", lessonID, cfg.FeedbackHandler.ListLessonFeedback)
		feedback.GET("/my-feedback", auth.RequireAuth(), cfg.FeedbackHandler.ListMyFeedback)
		feedback.POST("", auth.RequireAuth(), cfg.FeedbackHandler.CreateFeedback)
		feedback.PUT("/:id", auth.RequireAuth(), feedbackByID, cfg.FeedbackHandler.UpdateFeedback)
		feedback.DELETE("/:id", auth.RequireAuth(), feedbackByID, cfg.FeedbackHandler.DeleteFeedback)
	}

	return router
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
