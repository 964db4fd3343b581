package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/lms-api/internal/pkg/logger"
)

// FeedChannel - канал Pub/Sub, через который экземпляры API обмениваются событиями ленты
const FeedChannel = "lms:feed:results"

// Feed доставляет события результатов администраторам, подключенным к любому экземпляру API
type Feed struct {
	hub        *Hub
	provider   PubSubProvider
	channel    string
	instanceID string
	log        *logger.Logger
}

// NewFeed создает ленту. Если provider равен nil, события доставляются только локально
func NewFeed(hub *Hub, provider PubSubProvider, log *logger.Logger) *Feed {
	if provider == nil {
		provider = &NoOpPubSub{}
	}
	return &Feed{
		hub:        hub,
		provider:   provider,
		channel:    FeedChannel,
		instanceID: uuid.New().String(),
		log:        log.Component("ws_feed"),
	}
}

// InstanceID возвращает идентификатор экземпляра
func (f *Feed) InstanceID() string {
	return f.instanceID
}

// Publish отправляет событие локальным клиентам и остальным экземплярам
func (f *Feed) Publish(ctx context.Context, eventType string, payload interface{}) error {
	msg, err := NewEvent(eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to encode feed event: %w", err)
	}
	f.hub.Broadcast(msg)

	data, err := json.Marshal(ClusterMessage{
		InstanceID: f.instanceID,
		Payload:    msg,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode cluster message: %w", err)
	}
	if err := f.provider.Publish(ctx, f.channel, data); err != nil {
		return fmt.Errorf("failed to publish feed event: %w", err)
	}
	return nil
}

// Start подписывается на канал ленты и пересылает события других экземпляров локальным клиентам.
// Возвращается сразу после оформления подписки
func (f *Feed) Start(ctx context.Context) error {
	msgCh, err := f.provider.Subscribe(ctx, f.channel)
	if err != nil {
		return err
	}

	go func() {
		for data := range msgCh {
			var msg ClusterMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				f.log.Warn("[Feed] Некорректное сообщение кластера", "error", err)
				continue
			}
			if msg.InstanceID == f.instanceID {
				continue
			}
			f.hub.Broadcast(msg.Payload)
		}
		f.log.Info("[Feed] Подписка завершена", "channel", f.channel)
	}()
	return nil
}
