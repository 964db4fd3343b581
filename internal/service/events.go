package service

import (
	"context"
	"time"
)

// EventResultSubmitted публикуется после успешной отправки теста
const EventResultSubmitted = "result_submitted"

// EventPublisher доставляет события в ленту администраторов
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// ResultSubmittedEvent - данные события EventResultSubmitted
type ResultSubmittedEvent struct {
	ResultID    uint      `json:"result_id"`
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	QuizID      uint      `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"total_points"`
	Percentage  int       `json:"percentage"`
	CompletedAt time.Time `json:"completed_at"`
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }
