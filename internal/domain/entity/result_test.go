package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	testCases := []struct {
		name     string
		score    int
		total    int
		expected int
	}{
		{"все верно", 3, 3, 100},
		{"две трети", 2, 3, 67},
		{"одна треть", 1, 3, 33},
		{"ноль баллов", 0, 3, 0},
		{"половина округляется вверх", 1, 2, 50},
		{"пустой тест", 0, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Percentage(tc.score, tc.total))
		})
	}
}

func TestResult_Percentage(t *testing.T) {
	r := &Result{Score: 7, TotalPoints: 8}
	assert.Equal(t, 88, r.Percentage())
}

func TestQuiz_TotalPoints(t *testing.T) {
	quiz := &Quiz{Questions: []Question{{Points: 1}, {Points: 2}}}
	assert.Equal(t, 3, quiz.TotalPoints())
	assert.Equal(t, 0, (&Quiz{}).TotalPoints())
}

func TestLessonLevel_Valid(t *testing.T) {
	assert.True(t, LevelBeginner.Valid())
	assert.True(t, LevelAdvanced.Valid())
	assert.False(t, LessonLevel("expert").Valid())
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
}
