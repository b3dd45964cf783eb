package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"followerspoc/src/domain/entities"
	"followerspoc/src/infra/kafka"
	"followerspoc/src/services/followers"
)

// KafkaCommandMessage representa o schema da mensagem de comando
type KafkaCommandMessage struct {
	Action    string   `json:"action"`
	Actor     KafkaRef `json:"actor"`
	Target    KafkaRef `json:"target"`
	RequestID string   `json:"request_id"`
}

// Ações aceitas no tópico de comandos. Actor é sempre quem age:
// o sender nas ações de follow, o recipient em accept/deny, o
// bloqueador em block/unblock.
const (
	ActionFollow   = "follow"
	ActionUnfollow = "unfollow"
	ActionAccept   = "accept"
	ActionDeny     = "deny"
	ActionBlock    = "block"
	ActionUnblock  = "unblock"
)

// FollowCommandsConsumer aplica comandos de follow vindos do Kafka no
// engine. Recusas de regra (retornos falsy) são resultado normal e só
// geram log; a mensagem é considerada processada.
type FollowCommandsConsumer struct {
	logger          *slog.Logger
	followerService *followers.FollowerService
}

func NewFollowCommandsConsumer(
	logger *slog.Logger,
	followerService *followers.FollowerService,
) *FollowCommandsConsumer {
	return &FollowCommandsConsumer{
		logger:          logger,
		followerService: followerService,
	}
}

func (c *FollowCommandsConsumer) Start(ctx context.Context, kafkaClient *kafka.KafkaClient, topic string) error {
	c.logger.Info("Starting follow commands consumer", "topic", topic)

	handler := func(messages []kafka.Message) error {
		return c.handleMessages(ctx, messages)
	}

	return kafkaClient.Consumer(ctx, handler, topic)
}

func (c *FollowCommandsConsumer) handleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	c.logger.Info("Processing messages batch", "count", len(messages))

	for _, msg := range messages {
		var command KafkaCommandMessage
		if err := json.Unmarshal(msg.Value, &command); err != nil {
			c.logger.Error("Failed to unmarshal message",
				"error", err,
				"key", msg.Key,
				"value", string(msg.Value))
			return fmt.Errorf("failed to unmarshal message with key %s: %w", msg.Key, err)
		}

		if command.Action == "" ||
			command.Actor.Type == "" || command.Actor.ID == "" ||
			command.Target.Type == "" || command.Target.ID == "" {
			c.logger.Error("Invalid message: missing required fields",
				"key", msg.Key,
				"action", command.Action)
			return fmt.Errorf("invalid message with key %s: action, actor and target are required", msg.Key)
		}

		applied, err := c.apply(ctx, command)
		if err != nil {
			c.logger.Error("Failed to apply follow command",
				"error", err,
				"action", command.Action,
				"requestId", command.RequestID)
			return fmt.Errorf("failed to apply command %s with key %s: %w", command.Action, msg.Key, err)
		}

		if !applied {
			// Recusa soft: regra de negócio barrou, nada a re-tentar
			c.logger.Info("Follow command refused by rules",
				"action", command.Action,
				"requestId", command.RequestID,
				"actorType", command.Actor.Type,
				"actorId", command.Actor.ID,
				"targetType", command.Target.Type,
				"targetId", command.Target.ID)
		}
	}

	c.logger.Info("Successfully processed messages batch", "count", len(messages))
	return nil
}

func (c *FollowCommandsConsumer) apply(ctx context.Context, command KafkaCommandMessage) (bool, error) {
	actor := entities.Ref{Type: command.Actor.Type, ID: command.Actor.ID}
	target := entities.Ref{Type: command.Target.Type, ID: command.Target.ID}

	switch command.Action {
	case ActionFollow:
		created, err := c.followerService.Follow(ctx, actor, target)
		return created != nil, err
	case ActionUnfollow:
		return c.followerService.Unfollow(ctx, actor, target)
	case ActionAccept:
		return c.followerService.AcceptRequest(ctx, actor, target)
	case ActionDeny:
		return c.followerService.DenyRequest(ctx, actor, target)
	case ActionBlock:
		created, err := c.followerService.Block(ctx, actor, target)
		return created != nil, err
	case ActionUnblock:
		return c.followerService.Unblock(ctx, actor, target)
	default:
		return false, fmt.Errorf("unknown follow command action: %s", command.Action)
	}
}
