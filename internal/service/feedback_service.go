package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
)

// FeedbackService управляет отзывами об уроках
type FeedbackService struct {
	feedbackRepo repository.FeedbackRepository
	lessonRepo   repository.LessonRepository
	log          *logger.Logger
}

// FeedbackInput - данные отзыва
type FeedbackInput struct {
	LessonID uint
	Rating   int
	Comment  string
}

// FeedbackPage - страница всех отзывов
type FeedbackPage struct {
	Feedback   []repository.FeedbackView
	Pagination Pagination
}

// LessonFeedback - отзывы урока со статистикой оценок
type LessonFeedback struct {
	Feedback   []repository.FeedbackView
	Statistics *repository.RatingStats
}

// NewFeedbackService создает сервис отзывов
func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	lessonRepo repository.LessonRepository,
	log *logger.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		lessonRepo:   lessonRepo,
		log:          log.Component("feedback_service"),
	}
}

// ListAll возвращает страницу всех отзывов
func (s *FeedbackService) ListAll(ctx context.Context, page PageRequest) (*FeedbackPage, error) {
	items, total, err := s.feedbackRepo.ListAll(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return &FeedbackPage{Feedback: items, Pagination: NewPagination(page, total)}, nil
}

// ListByLesson возвращает отзывы урока и статистику оценок
func (s *FeedbackService) ListByLesson(ctx context.Context, lessonID uint) (*LessonFeedback, error) {
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}

	items, err := s.feedbackRepo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	stats, err := s.feedbackRepo.GetLessonRatingStats(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	stats.AverageRating = round1(stats.AverageRating)

	return &LessonFeedback{Feedback: items, Statistics: stats}, nil
}

// ListMine возвращает отзывы пользователя
func (s *FeedbackService) ListMine(ctx context.Context, userID uint) ([]repository.FeedbackView, error) {
	return s.feedbackRepo.ListByUser(ctx, userID)
}

// Create оставляет отзыв. На один урок пользователь оставляет один отзыв
func (s *FeedbackService) Create(ctx context.Context, userID uint, input FeedbackInput) (*entity.Feedback, error) {
	if !entity.ValidRating(input.Rating) {
		return nil, ErrInvalidRating
	}
	if err := s.ensureLesson(ctx, input.LessonID); err != nil {
		return nil, err
	}

	exists, err := s.feedbackRepo.ExistsForUserAndLesson(ctx, userID, input.LessonID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrFeedbackExists
	}

	feedback := &entity.Feedback{
		UserID:   userID,
		LessonID: input.LessonID,
		Rating:   input.Rating,
		Comment:  strings.TrimSpace(input.Comment),
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, ErrFeedbackExists
		}
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return feedback, nil
}

// Update изменяет отзыв. Изменять может автор или администратор
func (s *FeedbackService) Update(ctx context.Context, id uint, requester *entity.User, input FeedbackInput) (*entity.Feedback, error) {
	feedback, err := s.getOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	if !entity.ValidRating(input.Rating) {
		return nil, ErrInvalidRating
	}
	if input.LessonID != 0 && input.LessonID != feedback.LessonID {
		if err := s.ensureLesson(ctx, input.LessonID); err != nil {
			return nil, err
		}
		feedback.LessonID = input.LessonID
	}
	feedback.Rating = input.Rating
	feedback.Comment = strings.TrimSpace(input.Comment)

	if err := s.feedbackRepo.Update(ctx, feedback); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			return nil, ErrFeedbackExists
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}
	return s.feedbackRepo.GetByID(ctx, id)
}

// Delete удаляет отзыв. Удалять может автор или администратор
func (s *FeedbackService) Delete(ctx context.Context, id uint, requester *entity.User) error {
	if _, err := s.getOwned(ctx, id, requester); err != nil {
		return err
	}
	if err := s.feedbackRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrFeedbackNotFound
		}
		return err
	}
	return nil
}

func (s *FeedbackService) getOwned(ctx context.Context, id uint, requester *entity.User) (*entity.Feedback, error) {
	feedback, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	if requester == nil || !requester.CanAccess(feedback.UserID) {
		return nil, ErrAccessDenied
	}
	return feedback, nil
}

func (s *FeedbackService) ensureLesson(ctx context.Context, lessonID uint) error {
	exists, err := s.lessonRepo.Exists(ctx, lessonID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrLessonNotFound
	}
	return nil
}
