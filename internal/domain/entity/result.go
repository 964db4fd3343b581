package entity

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// SubmittedAnswer - ответ пользователя на один вопрос в том виде, в каком он пришел от клиента
type SubmittedAnswer struct {
	QuestionID     uint `json:"question_id"`
	SelectedAnswer int  `json:"selected_answer"`
}

// Result представляет попытку прохождения теста. Для пары пользователь-тест допускается одна запись
type Result struct {
	ID          uint                                  `gorm:"primaryKey" json:"id"`
	UserID      uint                                  `gorm:"not null;index;uniqueIndex:idx_user_quiz" json:"user_id"`
	User        *User                                 `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	QuizID      uint                                  `gorm:"not null;index;uniqueIndex:idx_user_quiz" json:"quiz_id"`
	Quiz        *Quiz                                 `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`
	Score       int                                   `gorm:"not null;default:0" json:"score"`
	TotalPoints int                                   `gorm:"not null;default:0" json:"total_points"`
	Answers     datatypes.JSONType[[]SubmittedAnswer] `gorm:"not null" json:"answers"`
	CompletedAt time.Time                             `gorm:"not null;index" json:"completed_at"`
}

// TableName определяет имя таблицы для GORM
func (Result) TableName() string {
	return "quiz_results"
}

// Percentage возвращает процент набранных баллов, округленный до целого
func (r *Result) Percentage() int {
	return Percentage(r.Score, r.TotalPoints)
}

// Percentage вычисляет round(score/total*100), при total = 0 возвращает 0
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
