package followers

import (
	"context"
	"errors"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
)

// Block impede que other siga blocker. Polaridade fixa: o bloqueador é
// gravado como recipient e o bloqueado como sender, com status BLOCKED.
// Qualquer relação anterior other -> blocker (pendente, aceita, negada)
// é derrubada antes. Bloquear quem já está bloqueado é um no-op soft.
func (s *FollowerService) Block(ctx context.Context, blocker, other entities.Ref) (*entities.Follower, error) {
	if blocker.IsZero() || other.IsZero() || blocker.Equals(other) {
		return nil, nil
	}

	existing, err := s.store.FindByPair(ctx, other, blocker)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == entities.StatusBlocked {
			return nil, nil
		}
		if _, err := s.store.DeleteByPair(ctx, other, blocker); err != nil {
			return nil, err
		}
	}

	created, err := s.store.Create(ctx, other, blocker, entities.StatusBlocked)
	if err != nil {
		if errors.Is(err, domain.ErrRelationshipExists) {
			// Corrida com outra escrita no mesmo par; se o bloqueio já
			// está lá, o objetivo foi atingido.
			current, findErr := s.store.FindByPair(ctx, other, blocker)
			if findErr != nil {
				return nil, findErr
			}
			if current != nil && current.Status == entities.StatusBlocked {
				return nil, nil
			}
		}
		return nil, err
	}

	s.notify(ctx, domain.EventFollowingBlocked, other, blocker)
	return created, nil
}

// Unblock desfaz o bloqueio do blocker sobre other. Só remove a linha
// BLOCKED daquela polaridade; um bloqueio na direção contrária (other
// bloqueou blocker) fica intacto até other desbloquear por conta
// própria.
func (s *FollowerService) Unblock(ctx context.Context, blocker, other entities.Ref) (bool, error) {
	existing, err := s.store.FindByPair(ctx, other, blocker)
	if err != nil {
		return false, err
	}
	if existing == nil || existing.Status != entities.StatusBlocked {
		return false, nil
	}

	deleted, err := s.store.DeleteByPair(ctx, other, blocker)
	if err != nil {
		return false, err
	}
	if deleted == 0 {
		return false, nil
	}

	s.notify(ctx, domain.EventFollowingUnblocked, other, blocker)
	return true, nil
}

// HasBlocked responde se blocker mantém um bloqueio ativo sobre other.
func (s *FollowerService) HasBlocked(ctx context.Context, blocker, other entities.Ref) (bool, error) {
	blocked := entities.StatusBlocked
	return s.store.Exists(ctx, domain.FollowerFilter{
		Sender:    &other,
		Recipient: &blocker,
		Status:    &blocked,
	})
}

// IsBlockedFromFollowing responde, do ponto de vista do sender, se o
// recipient o bloqueou.
func (s *FollowerService) IsBlockedFromFollowing(ctx context.Context, sender, recipient entities.Ref) (bool, error) {
	return s.HasBlocked(ctx, recipient, sender)
}
