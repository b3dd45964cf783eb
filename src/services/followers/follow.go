package followers

import (
	"context"
	"errors"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
)

// Follow envia o pedido de follow de sender para recipient, criando a
// linha PENDING. Retorna nil (sem erro) quando alguma regra barra a
// operação: recipient não seguível, veto do recipient, relação não
// DENIED já existente ou limite de following atingido.
func (s *FollowerService) Follow(ctx context.Context, sender, recipient entities.Ref) (*entities.Follower, error) {
	if sender.IsZero() || recipient.IsZero() || sender.Equals(recipient) {
		// O engine nunca constrói relação consigo mesmo
		return nil, nil
	}

	allowed, err := s.CanFollow(ctx, sender, recipient)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.logger.Debug("Follow refused by rules", "sender", sender, "recipient", recipient)
		return nil, nil
	}

	if ok, err := s.underFollowingLimit(ctx, sender); err != nil {
		return nil, err
	} else if !ok {
		// Falha silenciosa: sem linha, sem notificação
		s.logger.Debug("Follow refused by following limit", "sender", sender, "limit", s.config.MaxFollowing)
		return nil, nil
	}

	// Uma linha DENIED não bloqueia reenvio: sai a velha, entra PENDING
	if existing, err := s.store.FindByPair(ctx, sender, recipient); err != nil {
		return nil, err
	} else if existing != nil && existing.Status == entities.StatusDenied {
		if _, err := s.store.DeleteByPair(ctx, sender, recipient); err != nil {
			return nil, err
		}
	}

	created, err := s.store.Create(ctx, sender, recipient, entities.StatusPending)
	if errors.Is(err, domain.ErrRelationshipExists) {
		// Corrida no insert: outro follow passou pelo pre-check
		// junto. Relê e reconcilia em vez de estourar.
		current, findErr := s.store.FindByPair(ctx, sender, recipient)
		if findErr != nil {
			return nil, findErr
		}
		switch {
		case current == nil:
			// a linha sumiu de novo entre o insert e a releitura
			return nil, err
		case current.Status != entities.StatusDenied:
			return nil, nil
		default:
			// sobrou uma DENIED: a troca delete-recria do concorrente
			// parou no meio. Repete a substituição uma única vez.
			if _, delErr := s.store.DeleteByPair(ctx, sender, recipient); delErr != nil {
				return nil, delErr
			}
			created, err = s.store.Create(ctx, sender, recipient, entities.StatusPending)
		}
	}
	if err != nil {
		return nil, err
	}

	s.notify(ctx, domain.EventFollowRequest, sender, recipient)
	return created, nil
}

// CanFollow é o gate do Follow. Tem um efeito colateral deliberado,
// herdado do comportamento de referência: se o sender tinha bloqueado o
// recipient, a mudança de ideia vale como consentimento e o bloqueio é
// desfeito aqui antes das demais checagens.
func (s *FollowerService) CanFollow(ctx context.Context, sender, recipient entities.Ref) (bool, error) {
	followable, found, err := s.resolver.ResolveFollowable(ctx, recipient)
	if err != nil {
		return false, err
	}
	if !found || !followable.AcceptsFollowers() {
		return false, nil
	}

	// sender bloqueou recipient antes? desbloqueia e segue
	blockedBySender, err := s.HasBlocked(ctx, sender, recipient)
	if err != nil {
		return false, err
	}
	if blockedBySender {
		if _, err := s.Unblock(ctx, sender, recipient); err != nil {
			return false, err
		}
	}

	allowed, err := followable.CanBeFollowedBy(ctx, sender)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, nil
	}

	existing, err := s.store.FindByPair(ctx, sender, recipient)
	if err != nil {
		return false, err
	}
	if existing != nil && existing.Status != entities.StatusDenied {
		return false, nil
	}

	return true, nil
}

// Unfollow remove a relação sender -> recipient, qualquer que seja o
// estágio dela. A exceção é uma linha BLOCKED: ela pertence ao
// recipient (é o bloqueio dele) e não é do sender para desfazer.
func (s *FollowerService) Unfollow(ctx context.Context, sender, recipient entities.Ref) (bool, error) {
	existing, err := s.store.FindByPair(ctx, sender, recipient)
	if err != nil {
		return false, err
	}
	if existing == nil || existing.Status == entities.StatusBlocked {
		return false, nil
	}

	deleted, err := s.store.DeleteByPair(ctx, sender, recipient)
	if err != nil {
		return false, err
	}
	if deleted == 0 {
		return false, nil
	}

	s.notify(ctx, domain.EventUnfollow, sender, recipient)
	return true, nil
}

// underFollowingLimit aplica o limite configurado de linhas de saída.
func (s *FollowerService) underFollowingLimit(ctx context.Context, sender entities.Ref) (bool, error) {
	limit := s.config.MaxFollowing
	if limit <= 0 {
		return true, nil
	}

	filter := domain.FollowerFilter{Sender: &sender}
	if s.config.LimitAcceptedOnly {
		accepted := entities.StatusAccepted
		filter.Status = &accepted
	}

	count, err := s.store.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count < int64(limit), nil
}
