package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/yourusername/lms-api/internal/config"
	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	pgRepo "github.com/yourusername/lms-api/internal/repository/postgres"
	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/pkg/auth"
	"github.com/yourusername/lms-api/pkg/database"
)

type seedUser struct {
	username string
	email    string
	password string
	role     entity.Role
}

var seedUsers = []seedUser{
	{username: "admin", email: "admin@example.com", password: "admin123", role: entity.RoleAdmin},
	{username: "student", email: "student@example.com", password: "student123", role: entity.RoleStudent},
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), false)
	if err != nil {
		appLog.Fatal("[Seed] Failed to connect to database", "error", err)
	}
	if err := database.MigrateDB(db, cfg.Server.MigrationsURL, appLog); err != nil {
		appLog.Fatal("[Seed] Failed to migrate database", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	userRepo := pgRepo.NewUserRepo(db)
	lessonRepo := pgRepo.NewLessonRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	tx := database.NewTransactor(db)

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiration(), cfg.JWT.Issuer)
	if err != nil {
		appLog.Fatal("[Seed] Failed to initialize JWTService", "error", err)
	}
	authService := service.NewAuthService(userRepo, jwtService, nil, appLog)
	userService := service.NewUserService(userRepo, appLog)
	lessonService := service.NewLessonService(tx, lessonRepo, quizRepo, pgRepo.NewFeedbackRepo(db), appLog)
	quizService := service.NewQuizService(tx, quizRepo, pgRepo.NewQuestionRepo(db),
		pgRepo.NewResultRepo(db), lessonRepo, service.NewStatsCache(nil, 0, appLog), appLog)

	var admin *entity.User
	for _, su := range seedUsers {
		user, err := ensureUser(ctx, userRepo, authService, userService, su)
		if err != nil {
			appLog.Fatal("[Seed] Failed to seed user", "username", su.username, "error", err)
		}
		if user.IsAdmin() {
			admin = user
		}
	}

	lessons, err := lessonService.List(ctx, service.NewPageRequest(1, 1))
	if err != nil {
		appLog.Fatal("[Seed] Failed to list lessons", "error", err)
	}
	if lessons.Pagination.Total > 0 {
		appLog.Info("[Seed] Уроки уже есть, контент не создается")
		return
	}

	lesson, err := lessonService.Create(ctx, admin.ID, service.LessonInput{
		Title:       "Introduction to Go",
		Description: "Basic syntax and tooling",
		Content:     "Go programs are organized into packages. A package is a collection of source files in the same directory.",
		Level:       string(entity.LevelBeginner),
	})
	if err != nil {
		appLog.Fatal("[Seed] Failed to create lesson", "error", err)
	}

	quiz, err := quizService.Create(ctx, admin.ID, service.QuizInput{
		Title:       "Go basics",
		Description: "Check what you learned in the first lesson",
		LessonID:    &lesson.ID,
		Questions: []service.QuestionInput{
			{
				QuestionText:  "Which keyword declares a package?",
				Options:       []string{"module", "package", "import", "namespace"},
				CorrectAnswer: 1,
				Points:        1,
			},
			{
				QuestionText:  "Which command formats Go source code?",
				Options:       []string{"go vet", "go build", "gofmt"},
				CorrectAnswer: 2,
				Points:        2,
			},
		},
	})
	if err != nil {
		appLog.Fatal("[Seed] Failed to create quiz", "error", err)
	}

	appLog.Info("[Seed] Данные созданы", "lesson_id", lesson.ID, "quiz_id", quiz.Quiz.ID)
}

// ensureUser создает пользователя, если его еще нет. Администратор получает роль после регистрации
func ensureUser(
	ctx context.Context,
	userRepo *pgRepo.UserRepo,
	authService *service.AuthService,
	userService *service.UserService,
	su seedUser,
) (*entity.User, error) {
	user, err := userRepo.GetByUsername(ctx, su.username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	result, err := authService.Register(ctx, service.RegisterInput{
		Username: su.username,
		Email:    su.email,
		Password: su.password,
	})
	if err != nil {
		return nil, err
	}
	if su.role == entity.RoleStudent {
		return result.User, nil
	}
	return userService.UpdateRole(ctx, result.User.ID, string(su.role))
}
