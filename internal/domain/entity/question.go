package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	MinQuestionOptions = 2
	MaxQuestionOptions = 6
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray.
// Postgres отдает JSONB как []byte, sqlite может отдать строку.
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Question представляет вопрос теста
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	QuizID        uint        `gorm:"not null;index" json:"quiz_id"`
	QuestionText  string      `gorm:"type:text;not null" json:"question_text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer int         `gorm:"not null" json:"correct_answer"`
	Points        int         `gorm:"not null;default:1" json:"points"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectAnswer
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Options)
}

// Validate проверяет структуру вопроса: число вариантов, индекс правильного ответа и баллы
func (q *Question) Validate() error {
	if len(q.Options) < MinQuestionOptions || len(q.Options) > MaxQuestionOptions {
		return errors.New("question must have between 2 and 6 options")
	}
	if !q.IsValidOption(q.CorrectAnswer) {
		return errors.New("correct_answer must reference an existing option")
	}
	if q.Points <= 0 {
		return errors.New("points must be positive")
	}
	return nil
}
