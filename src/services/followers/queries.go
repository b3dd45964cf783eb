package followers

import (
	"context"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
)

// Consultas derivadas, todas puras: nenhuma muda estado nem notifica.

// IsFollowing responde se sender segue recipient (relação ACCEPTED).
func (s *FollowerService) IsFollowing(ctx context.Context, sender, recipient entities.Ref) (bool, error) {
	accepted := entities.StatusAccepted
	return s.store.Exists(ctx, domain.FollowerFilter{
		Sender:    &sender,
		Recipient: &recipient,
		Status:    &accepted,
	})
}

// IsFollowedBy é a mesma pergunta do ponto de vista do recipient.
func (s *FollowerService) IsFollowedBy(ctx context.Context, recipient, sender entities.Ref) (bool, error) {
	return s.IsFollowing(ctx, sender, recipient)
}

// HasSentFollowRequestTo responde se existe pedido PENDING de sender
// para recipient.
func (s *FollowerService) HasSentFollowRequestTo(ctx context.Context, sender, recipient entities.Ref) (bool, error) {
	pending := entities.StatusPending
	return s.store.Exists(ctx, domain.FollowerFilter{
		Sender:    &sender,
		Recipient: &recipient,
		Status:    &pending,
	})
}

func (s *FollowerService) HasFollowRequestFrom(ctx context.Context, recipient, sender entities.Ref) (bool, error) {
	return s.HasSentFollowRequestTo(ctx, sender, recipient)
}

// GetFollowing devolve a linha de relação sender -> recipient, em
// qualquer status. Nil quando não existe.
func (s *FollowerService) GetFollowing(ctx context.Context, sender, recipient entities.Ref) (*entities.Follower, error) {
	return s.store.FindByPair(ctx, sender, recipient)
}

// GetFollowingCount conta quantas entidades a ref segue (só ACCEPTED).
func (s *FollowerService) GetFollowingCount(ctx context.Context, ref entities.Ref) (int64, error) {
	accepted := entities.StatusAccepted
	return s.store.Count(ctx, domain.FollowerFilter{Sender: &ref, Status: &accepted})
}

// GetFollowedByCount conta quantas entidades seguem a ref (só ACCEPTED).
func (s *FollowerService) GetFollowedByCount(ctx context.Context, ref entities.Ref) (int64, error) {
	accepted := entities.StatusAccepted
	return s.store.Count(ctx, domain.FollowerFilter{Recipient: &ref, Status: &accepted})
}
