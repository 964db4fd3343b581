package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/testutil"
)

func TestFeedbackService_Create(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	student := testutil.CreateUser(t, env.db, "student", entity.RoleStudent)
	lesson := testutil.CreateLesson(t, env.db, "Slices", nil)

	// Act
	created, err := env.feedbackService.Create(context.Background(), student.ID, FeedbackInput{LessonID: lesson.ID, Rating: 5, Comment: " great "})
	require.NoError(t, err)
	_, dupErr := env.feedbackService.Create(context.Background(), student.ID, FeedbackInput{LessonID: lesson.ID, Rating: 1})

	// Assert
	assert.Equal(t, "great", created.Comment)
	assert.ErrorIs(t, dupErr, ErrFeedbackExists)

	tests := []struct {
		name    string
		input   FeedbackInput
		wantErr error
	}{
		{"оценка 0", FeedbackInput{LessonID: lesson.ID, Rating: 0}, ErrInvalidRating},
		{"оценка 6", FeedbackInput{LessonID: lesson.ID, Rating: 6}, ErrInvalidRating},
		{"несуществующий урок", FeedbackInput{LessonID: 404, Rating: 3}, ErrLessonNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.feedbackService.Create(context.Background(), student.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFeedbackService_ListByLesson_Statistics(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	lesson := testutil.CreateLesson(t, env.db, "Errors", nil)
	for i, rating := range []int{5, 4, 4} {
		user := testutil.CreateUser(t, env.db, []string{"u1", "u2", "u3"}[i], entity.RoleStudent)
		_, err := env.feedbackService.Create(context.Background(), user.ID, FeedbackInput{LessonID: lesson.ID, Rating: rating})
		require.NoError(t, err)
	}

	// Act
	res, err := env.feedbackService.ListByLesson(context.Background(), lesson.ID)

	// Assert
	require.NoError(t, err)
	assert.Len(t, res.Feedback, 3)
	assert.Equal(t, "Errors", res.Feedback[0].LessonTitle)
	assert.Equal(t, int64(3), res.Statistics.TotalFeedback)
	assert.InDelta(t, 4.3, res.Statistics.AverageRating, 0.0001, "Среднее округляется до одного знака")
	assert.Equal(t, map[int]int64{1: 0, 2: 0, 3: 0, 4: 2, 5: 1}, res.Statistics.RatingBreakdown)
}

func TestFeedbackService_UpdateDelete_Ownership(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "author", entity.RoleStudent)
	stranger := testutil.CreateUser(t, env.db, "stranger", entity.RoleStudent)
	admin := testutil.CreateUser(t, env.db, "admin", entity.RoleAdmin)
	lesson := testutil.CreateLesson(t, env.db, "Testing", nil)
	fb, err := env.feedbackService.Create(context.Background(), author.ID, FeedbackInput{LessonID: lesson.ID, Rating: 3})
	require.NoError(t, err)

	// Act & Assert
	_, err = env.feedbackService.Update(context.Background(), fb.ID, stranger, FeedbackInput{Rating: 1})
	assert.ErrorIs(t, err, ErrAccessDenied)

	updated, err := env.feedbackService.Update(context.Background(), fb.ID, author, FeedbackInput{Rating: 4, Comment: "better"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, lesson.ID, updated.LessonID, "Урок не меняется без lesson_id")

	assert.ErrorIs(t, env.feedbackService.Delete(context.Background(), fb.ID, stranger), ErrAccessDenied)
	assert.NoError(t, env.feedbackService.Delete(context.Background(), fb.ID, admin))
	assert.ErrorIs(t, env.feedbackService.Delete(context.Background(), fb.ID, admin), ErrFeedbackNotFound)
}

func TestFeedbackService_ListMine(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "me", entity.RoleStudent)
	other := testutil.CreateUser(t, env.db, "other", entity.RoleStudent)
	lesson := testutil.CreateLesson(t, env.db, "Context", nil)
	_, err := env.feedbackService.Create(context.Background(), user.ID, FeedbackInput{LessonID: lesson.ID, Rating: 2})
	require.NoError(t, err)
	_, err = env.feedbackService.Create(context.Background(), other.ID, FeedbackInput{LessonID: lesson.ID, Rating: 5})
	require.NoError(t, err)

	mine, err := env.feedbackService.ListMine(context.Background(), user.ID)

	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "me", mine[0].Username)
}
