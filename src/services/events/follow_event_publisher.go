package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"followerspoc/src/domain"
	"followerspoc/src/infra/kafka"

	"github.com/google/uuid"
)

// FollowEventPublisher é a implementação Kafka do Notification Sink.
// Cada transição do engine vira uma mensagem no tópico de follow
// events, com headers para filtragem (estilo SNS) no lado consumidor.
type FollowEventPublisher struct {
	logger      *slog.Logger
	kafkaClient *kafka.KafkaClient
	topic       string
}

func NewFollowEventPublisher(
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	topic string,
) *FollowEventPublisher {
	return &FollowEventPublisher{
		logger:      logger,
		kafkaClient: kafkaClient,
		topic:       topic,
	}
}

var _ domain.FollowNotifier = (*FollowEventPublisher)(nil)

func (p *FollowEventPublisher) Notify(ctx context.Context, notification domain.FollowNotification) error {
	eventID := uuid.NewString()

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal follow notification %s: %w", eventID, err)
	}

	message := kafka.Message{
		// Particiona pelo sender para manter a ordem das transições
		// vistas por cada remetente
		Key:     notification.Sender.ID,
		Value:   payload,
		Headers: p.eventHeaders(eventID, notification),
	}

	if err := p.kafkaClient.Producer([]kafka.Message{message}, p.topic); err != nil {
		p.logger.Error("Failed to publish follow notification",
			"error", err,
			"topic", p.topic,
			"event_id", eventID,
			"event", string(notification.Event))
		return fmt.Errorf("failed to publish follow notification to topic %s: %w", p.topic, err)
	}

	p.logger.Debug("Published follow notification",
		"topic", p.topic,
		"event_id", eventID,
		"event", string(notification.Event))

	return nil
}

// eventHeaders monta os headers de filtragem da mensagem.
func (p *FollowEventPublisher) eventHeaders(eventID string, notification domain.FollowNotification) map[string]string {
	return map[string]string{
		"event_id":       eventID,
		"event_type":     string(notification.Event),
		"source_service": "followers-api",
		"schema_version": "v1",
		"sender_type":    notification.Sender.Type,
		"recipient_type": notification.Recipient.Type,
	}
}
