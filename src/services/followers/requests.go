package followers

import (
	"context"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
)

// AcceptRequest aceita, como recipient, o pedido vindo de sender. A
// linha do par vai para ACCEPTED in place. Sem linha, é um no-op que
// retorna false e não emite nada.
func (s *FollowerService) AcceptRequest(ctx context.Context, recipient, sender entities.Ref) (bool, error) {
	affected, err := s.store.UpdateStatusByPair(ctx, sender, recipient, entities.StatusAccepted)
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	s.notify(ctx, domain.EventFollowRequestAccepted, sender, recipient)
	return true, nil
}

// DenyRequest nega, como recipient, o pedido vindo de sender. A linha
// DENIED fica registrada mas não impede um novo Follow depois.
func (s *FollowerService) DenyRequest(ctx context.Context, recipient, sender entities.Ref) (bool, error) {
	affected, err := s.store.UpdateStatusByPair(ctx, sender, recipient, entities.StatusDenied)
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	s.notify(ctx, domain.EventFollowRequestDenied, sender, recipient)
	return true, nil
}

// GetFollowerRequests lista os pedidos PENDING aguardando decisão do
// recipient.
func (s *FollowerService) GetFollowerRequests(ctx context.Context, recipient entities.Ref) ([]entities.Follower, error) {
	pending := entities.StatusPending
	return s.store.Find(ctx, domain.FollowerFilter{Recipient: &recipient, Status: &pending})
}
