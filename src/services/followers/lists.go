package followers

import (
	"context"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
)

// Listas de linhas de relação, por lado e por status. A ordem é a de
// inserção, herdada do Store.

func (s *FollowerService) GetAllFollowing(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.store.Find(ctx, domain.FollowerFilter{Sender: &ref})
}

func (s *FollowerService) GetAllFollowedBy(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.store.Find(ctx, domain.FollowerFilter{Recipient: &ref})
}

func (s *FollowerService) GetAcceptedRequestsToFollow(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.findByStatus(ctx, ref, domain.SideSender, entities.StatusAccepted)
}

func (s *FollowerService) GetPendingRequestsToFollow(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.findByStatus(ctx, ref, domain.SideSender, entities.StatusPending)
}

func (s *FollowerService) GetDeniedRequestsToFollow(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.findByStatus(ctx, ref, domain.SideSender, entities.StatusDenied)
}

func (s *FollowerService) GetBlockedFollowing(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.findByStatus(ctx, ref, domain.SideSender, entities.StatusBlocked)
}

func (s *FollowerService) GetAcceptedRequestsToBeFollowed(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.findByStatus(ctx, ref, domain.SideRecipient, entities.StatusAccepted)
}

func (s *FollowerService) GetPendingRequestsToBeFollowed(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.findByStatus(ctx, ref, domain.SideRecipient, entities.StatusPending)
}

func (s *FollowerService) GetDeniedRequestsToBeFollowed(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.findByStatus(ctx, ref, domain.SideRecipient, entities.StatusDenied)
}

func (s *FollowerService) GetBlockedFollowedBy(ctx context.Context, ref entities.Ref) ([]entities.Follower, error) {
	return s.findByStatus(ctx, ref, domain.SideRecipient, entities.StatusBlocked)
}

// GetFollowingList resolve as entidades que a ref segue (ACCEPTED),
// nunca as linhas de relação. A própria ref é excluída do resultado.
// PerPage 0 devolve o conjunto inteiro numa página.
func (s *FollowerService) GetFollowingList(ctx context.Context, ref entities.Ref, page domain.PageRequest) (*domain.EntityPage, error) {
	return s.store.ListRelatedEntities(ctx, ref, domain.SideSender, entities.StatusAccepted, page)
}

// GetFollowedByList resolve as entidades que seguem a ref (ACCEPTED).
func (s *FollowerService) GetFollowedByList(ctx context.Context, ref entities.Ref, page domain.PageRequest) (*domain.EntityPage, error) {
	return s.store.ListRelatedEntities(ctx, ref, domain.SideRecipient, entities.StatusAccepted, page)
}

func (s *FollowerService) findByStatus(ctx context.Context, ref entities.Ref, side domain.RelationSide, status entities.FollowStatus) ([]entities.Follower, error) {
	filter := domain.FollowerFilter{Status: &status}
	if side == domain.SideSender {
		filter.Sender = &ref
	} else {
		filter.Recipient = &ref
	}
	return s.store.Find(ctx, filter)
}
