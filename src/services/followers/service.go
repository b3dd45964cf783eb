package followers

import (
	"context"
	"log/slog"
	"time"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
)

// Config são os tunables do engine, lidos no momento em que cada Follow
// é avaliado.
type Config struct {
	// MaxFollowing limita quantas linhas de saída um sender pode
	// acumular. 0 desliga o limite.
	MaxFollowing int
	// LimitAcceptedOnly conta só linhas ACCEPTED para o limite, em vez
	// de todas as linhas de saída (o default).
	LimitAcceptedOnly bool
}

// FollowerService implementa a máquina de estados da relação de follow:
// NONE -> PENDING -> ACCEPTED/DENIED, mais a via de bloqueio. Violações
// de regra retornam falsy (nil/false) sem erro; só falhas de storage e
// integridade viram error.
type FollowerService struct {
	logger   *slog.Logger
	store    Store
	resolver domain.FollowableResolver
	notifier domain.FollowNotifier
	config   Config
}

func NewFollowerService(
	logger *slog.Logger,
	store Store,
	resolver domain.FollowableResolver,
	notifier domain.FollowNotifier,
	config Config,
) *FollowerService {
	if notifier == nil {
		notifier = domain.NoopNotifier{}
	}
	return &FollowerService{
		logger:   logger,
		store:    store,
		resolver: resolver,
		notifier: notifier,
		config:   config,
	}
}

// notify emite a notificação de transição de forma síncrona. Falha de
// entrega é logada e engolida: a mutação já aconteceu e não volta atrás.
func (s *FollowerService) notify(ctx context.Context, event domain.FollowEvent, sender, recipient entities.Ref) {
	notification := domain.FollowNotification{
		Event:      event,
		Sender:     sender,
		Recipient:  recipient,
		OccurredAt: time.Now().UTC(),
	}

	if err := s.notifier.Notify(ctx, notification); err != nil {
		s.logger.Error("Failed to deliver follow notification",
			"error", err,
			"event", string(event),
			"sender", sender,
			"recipient", recipient)
	}
}
