package websocket

import (
	"encoding/json"
	"time"
)

// Типы сообщений ленты
const (
	// RESULT_SUBMITTED сообщает о новом результате теста
	RESULT_SUBMITTED = "result_submitted"

	// USER_HEARTBEAT присылает клиент для проверки соединения
	USER_HEARTBEAT = "user:heartbeat"

	// SERVER_HEARTBEAT - ответ сервера на USER_HEARTBEAT
	SERVER_HEARTBEAT = "server:heartbeat"

	// ERROR сообщает клиенту об ошибке обработки его сообщения
	ERROR = "error"
)

// Event - конверт сообщения, отправляемого клиентам
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent сериализует payload и упаковывает его в конверт
func NewEvent(eventType string, payload interface{}) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()})
}
