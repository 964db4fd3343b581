package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/config"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/handler"
	"github.com/yourusername/lms-api/internal/middleware"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	pgRepo "github.com/yourusername/lms-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/lms-api/internal/repository/redis"
	"github.com/yourusername/lms-api/internal/service"
	ws "github.com/yourusername/lms-api/internal/websocket"
	"github.com/yourusername/lms-api/pkg/auth"
	"github.com/yourusername/lms-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	appLog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Printf("Failed to init logger: %v", err)
		os.Exit(1)
	}
	defer appLog.Sync()
	appLog.Info("[Main] Конфигурация загружена", "path", configPath, "gin_mode", gin.Mode())

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), gin.Mode() != gin.ReleaseMode)
	if err != nil {
		appLog.Fatal("[Main] Failed to connect to database", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLog.Fatal("[Main] Failed to get sql.DB", "error", err)
	}
	defer sqlDB.Close()

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Server.MigrationsURL, appLog); err != nil {
		appLog.Fatal("[Main] Failed to migrate database", "error", err)
	}

	// Создаем контекст с отменой для корректного завершения работы горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis необязателен: без него кеш статистики, rate limit и межсерверная лента отключены
	var cache repository.CacheRepository
	var pubSubProvider ws.PubSubProvider = &ws.NoOpPubSub{}
	redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		appLog.Warn("[Main] Redis недоступен, работаем без кеша", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			appLog.Fatal("[Main] Failed to initialize CacheRepo", "error", err)
		}
		cache = cacheRepo

		redisProvider, err := ws.NewRedisPubSub(redisClient, appLog)
		if err != nil {
			appLog.Warn("[Main] Redis PubSub недоступен, лента работает локально", "error", err)
		} else {
			pubSubProvider = redisProvider
		}
		appLog.Info("[Main] Successfully connected to Redis", "mode", cfg.Redis.Mode)
	}

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	lessonRepo := pgRepo.NewLessonRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	resultRepo := pgRepo.NewResultRepo(db)
	feedbackRepo := pgRepo.NewFeedbackRepo(db)
	tx := database.NewTransactor(db)

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiration(), cfg.JWT.Issuer)
	if err != nil {
		appLog.Fatal("[Main] Failed to initialize JWTService", "error", err)
	}

	var emailService service.EmailService = service.NewNoopEmailService(appLog)
	if cfg.Email.Enabled() {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			appLog.Fatal("[Main] Failed to initialize email service", "error", err)
		}
		emailService = resendService
	}

	// Лента результатов
	hub := ws.NewHub(appLog)
	go hub.Run(ctx)
	feed := ws.NewFeed(hub, pubSubProvider, appLog)
	if err := feed.Start(ctx); err != nil {
		appLog.Warn("[Main] Не удалось подписаться на ленту кластера", "error", err)
	}

	// Инициализируем сервисы
	stats := service.NewStatsCache(cache, cfg.Cache.StatsTTL(), appLog)
	authService := service.NewAuthService(userRepo, jwtService, emailService, appLog)
	userService := service.NewUserService(userRepo, appLog)
	lessonService := service.NewLessonService(tx, lessonRepo, quizRepo, feedbackRepo, appLog)
	quizService := service.NewQuizService(tx, quizRepo, questionRepo, resultRepo, lessonRepo, stats, appLog)
	submissionService := service.NewSubmissionService(tx, quizRepo, resultRepo, stats, feed, appLog)
	resultService := service.NewResultService(quizRepo, questionRepo, resultRepo, stats, appLog)
	feedbackService := service.NewFeedbackService(feedbackRepo, lessonRepo, appLog)

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:     handler.NewAuthHandler(authService, appLog),
		UserHandler:     handler.NewUserHandler(userService, appLog),
		LessonHandler:   handler.NewLessonHandler(lessonService, appLog),
		QuizHandler:     handler.NewQuizHandler(quizService, appLog),
		ResultHandler:   handler.NewResultHandler(submissionService, resultService, appLog),
		FeedbackHandler: handler.NewFeedbackHandler(feedbackService, appLog),
		FeedHandler:     handler.NewFeedHandler(hub, cfg.CORS.AllowedOrigins, appLog),
		HealthHandler:   handler.NewHealthHandler(sqlDB, cache, appLog),
		AuthMiddleware:  middleware.NewAuthMiddleware(authService, appLog),
		RateLimiter:     middleware.NewRateLimiter(cache, appLog),
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		RequestTimeout:  cfg.Server.RequestTimeout(),
		Logger:          appLog,
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		appLog.Info("[Main] Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("[Main] Failed to start server", "error", err)
		}
	}()

	// После получения SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("[Main] Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("[Main] Server forced to shutdown", "error", err)
	}

	// Отправляем сигнал завершения хабу и подписке
	cancel()
	if err := pubSubProvider.Close(); err != nil {
		appLog.Warn("[Main] Error closing PubSub provider", "error", err)
	}

	appLog.Info("[Main] Server exited properly")
}
