package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
	"followerspoc/src/infra/kafka"
	"followerspoc/src/repositories"
)

// KafkaFollowMessage representa o schema da mensagem de follow event
type KafkaFollowMessage struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	Sender     KafkaRef  `json:"sender"`
	Recipient  KafkaRef  `json:"recipient"`
}

type KafkaRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// DeliveryHandler recebe cada notificação já validada. A entrega de
// referência apenas loga; integrações reais (push, e-mail) plugam aqui.
type DeliveryHandler func(ctx context.Context, notification domain.FollowNotification) error

type FollowEventsConsumer struct {
	logger           *slog.Logger
	entityRepository *repositories.EntityRepository
	deliver          DeliveryHandler
}

func NewFollowEventsConsumer(
	logger *slog.Logger,
	entityRepository *repositories.EntityRepository,
	deliver DeliveryHandler,
) *FollowEventsConsumer {
	consumer := &FollowEventsConsumer{
		logger:           logger,
		entityRepository: entityRepository,
		deliver:          deliver,
	}

	if consumer.deliver == nil {
		consumer.deliver = consumer.logDelivery
	}

	return consumer
}

func (c *FollowEventsConsumer) Start(ctx context.Context, kafkaClient *kafka.KafkaClient, topic string) error {
	c.logger.Info("Starting follow events consumer", "topic", topic)

	handler := func(messages []kafka.Message) error {
		return c.handleMessages(ctx, messages)
	}

	return kafkaClient.Consumer(ctx, handler, topic)
}

func (c *FollowEventsConsumer) handleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	c.logger.Info("Processing messages batch", "count", len(messages))

	delivered := 0
	for _, msg := range messages {
		var kafkaFollowMessage KafkaFollowMessage
		if err := json.Unmarshal(msg.Value, &kafkaFollowMessage); err != nil {
			c.logger.Error("Failed to unmarshal message",
				"error", err,
				"key", msg.Key,
				"value", string(msg.Value))
			return fmt.Errorf("failed to unmarshal message with key %s: %w", msg.Key, err)
		}

		// Validate required fields
		if kafkaFollowMessage.Event == "" ||
			kafkaFollowMessage.Sender.Type == "" || kafkaFollowMessage.Sender.ID == "" ||
			kafkaFollowMessage.Recipient.Type == "" || kafkaFollowMessage.Recipient.ID == "" {
			c.logger.Error("Invalid message: missing required fields",
				"key", msg.Key,
				"event", kafkaFollowMessage.Event)
			return fmt.Errorf("invalid message with key %s: event, sender and recipient are required", msg.Key)
		}

		notification := domain.FollowNotification{
			Event:      domain.FollowEvent(kafkaFollowMessage.Event),
			OccurredAt: kafkaFollowMessage.OccurredAt,
			Sender: entities.Ref{
				Type: kafkaFollowMessage.Sender.Type,
				ID:   kafkaFollowMessage.Sender.ID,
			},
			Recipient: entities.Ref{
				Type: kafkaFollowMessage.Recipient.Type,
				ID:   kafkaFollowMessage.Recipient.ID,
			},
		}

		// Keep the entity catalog fresh: any entity seen in an event
		// is guaranteed a row before delivery runs.
		if err := c.registerSeenEntities(ctx, notification); err != nil {
			return err
		}

		if err := c.deliver(ctx, notification); err != nil {
			c.logger.Error("Failed to deliver follow notification",
				"error", err,
				"event", kafkaFollowMessage.Event,
				"key", msg.Key)
			return fmt.Errorf("failed to deliver notification with key %s: %w", msg.Key, err)
		}
		delivered++
	}

	c.logger.Info("Successfully processed messages batch",
		"count", len(messages),
		"deliveredCount", delivered)

	return nil
}

func (c *FollowEventsConsumer) registerSeenEntities(ctx context.Context, notification domain.FollowNotification) error {
	for _, ref := range []entities.Ref{notification.Sender, notification.Recipient} {
		if _, err := c.entityRepository.Upsert(ctx, ref, nil); err != nil {
			c.logger.Error("Failed to upsert entity from event",
				"error", err,
				"type", ref.Type,
				"reference", ref.ID)
			return fmt.Errorf("failed to upsert entity %s:%s: %w", ref.Type, ref.ID, err)
		}
	}
	return nil
}

func (c *FollowEventsConsumer) logDelivery(_ context.Context, notification domain.FollowNotification) error {
	c.logger.Info("Follow notification",
		"event", string(notification.Event),
		"senderType", notification.Sender.Type,
		"senderId", notification.Sender.ID,
		"recipientType", notification.Recipient.Type,
		"recipientId", notification.Recipient.ID,
		"occurredAt", notification.OccurredAt)
	return nil
}
