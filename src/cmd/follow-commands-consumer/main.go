package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"followerspoc/src/adapters/kafka/consumers"
	"followerspoc/src/domain"
	"followerspoc/src/helper/env"
	"followerspoc/src/infra/kafka"
	"followerspoc/src/infra/postgres"
	"followerspoc/src/infra/redis"
	"followerspoc/src/repositories"
	"followerspoc/src/services/events"
	"followerspoc/src/services/followers"

	"go.uber.org/fx"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting Follow Commands Consumer with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newReadWriteClient,
			newRedisClient,
			newKafkaClient,
			newFollowerRepository,
			newCachedFollowerRepository,
			newEntityRepository,
			newRegistry,
			newFollowEventPublisher,
			newFollowerService,
			newFollowCommandsConsumer,
		),

		// Invocations
		fx.Invoke(startConsumer),
	)

	// Start the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start consumer application: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down follow commands consumer...")

	// Stop the application
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}

	log.Println("Follow commands consumer shutdown complete")
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	dbReadHost := env.MustGetString("DB_READ_HOST")
	dbWriteHost := env.MustGetString("DB_WRITE_HOST")
	dbReadPort := env.GetString("DB_READ_PORT", "5432")
	dbWritePort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	return postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, maxConnections)
}

func newRedisClient() *redis.RedisClient {
	redisHosts := env.MustGetString("REDIS_HOSTS")
	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	redisDefaultTTL := env.GetDuration("REDIS_DEFAULT_TTL", 120*time.Second)

	return redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL)
}

func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.MustGetString("KAFKA_FOLLOW_COMMANDS_CONSUMER_GROUP_ID")
	batchSize := env.MustGetInt("KAFKA_BATCH_SIZE")

	return kafka.NewKafkaClient(brokers, groupID, batchSize)
}

func newFollowerRepository(readWriteClient *postgres.ReadWriteClient) *repositories.FollowerRepository {
	return repositories.NewFollowerRepository(readWriteClient)
}

func newCachedFollowerRepository(
	followerRepository *repositories.FollowerRepository,
	redisClient *redis.RedisClient,
) *repositories.CachedFollowerRepository {
	return repositories.NewCachedFollowerRepository(followerRepository, redisClient)
}

func newEntityRepository(readWriteClient *postgres.ReadWriteClient) *repositories.EntityRepository {
	return repositories.NewEntityRepository(readWriteClient)
}

// newRegistry registra como seguíveis os tipos listados em
// FOLLOWERS_FOLLOWABLE_TYPES (separados por vírgula).
func newRegistry(entityRepository *repositories.EntityRepository) *followers.Registry {
	registry := followers.NewRegistry(entityRepository)

	followableTypes := env.GetString("FOLLOWERS_FOLLOWABLE_TYPES", "user")
	for _, entityType := range strings.Split(followableTypes, ",") {
		entityType = strings.TrimSpace(entityType)
		if entityType == "" {
			continue
		}
		registry.RegisterType(entityType, followers.FollowablePolicy{Accepts: true})
	}

	return registry
}

func newFollowEventPublisher(
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
) *events.FollowEventPublisher {
	topic := env.MustGetString("KAFKA_FOLLOW_EVENTS_TOPIC")
	return events.NewFollowEventPublisher(logger, kafkaClient, topic)
}

func newFollowerService(
	logger *slog.Logger,
	cachedFollowerRepository *repositories.CachedFollowerRepository,
	registry *followers.Registry,
	publisher *events.FollowEventPublisher,
) *followers.FollowerService {
	config := followers.Config{
		MaxFollowing:      env.GetInt("FOLLOWERS_MAX_FOLLOWING", 0),
		LimitAcceptedOnly: env.GetBool("FOLLOWERS_LIMIT_ACCEPTED_ONLY", false),
	}

	var notifier domain.FollowNotifier = publisher
	return followers.NewFollowerService(logger, cachedFollowerRepository, registry, notifier, config)
}

func newFollowCommandsConsumer(
	logger *slog.Logger,
	followerService *followers.FollowerService,
) *consumers.FollowCommandsConsumer {
	return consumers.NewFollowCommandsConsumer(logger, followerService)
}

func startConsumer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	commandsConsumer *consumers.FollowCommandsConsumer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			topic := env.GetString("KAFKA_FOLLOW_COMMANDS_CONSUMER_TOPIC")
			logger.Info("Starting follow commands consumer", "topic", topic)

			// Start consumer in background
			go func() {
				if err := commandsConsumer.Start(ctx, kafkaClient, topic); err != nil {
					logger.Error("Consumer failed", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down Kafka client...")
			if err := kafkaClient.Close(); err != nil {
				logger.Error("Failed to close Kafka client", "error", err)
				return err
			}
			logger.Info("Kafka client shut down gracefully")
			return nil
		},
	})
}
