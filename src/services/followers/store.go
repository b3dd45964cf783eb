package followers

import (
	"context"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
	"followerspoc/src/repositories"
)

// Store é o que o engine exige do Relationship Store. O engine nunca
// fala SQL nem passa por cima do Store; o Store nunca aplica regra de
// negócio.
type Store interface {
	FindByPair(ctx context.Context, sender, recipient entities.Ref) (*entities.Follower, error)
	Find(ctx context.Context, filter domain.FollowerFilter) ([]entities.Follower, error)
	Exists(ctx context.Context, filter domain.FollowerFilter) (bool, error)
	Count(ctx context.Context, filter domain.FollowerFilter) (int64, error)
	Create(ctx context.Context, sender, recipient entities.Ref, status entities.FollowStatus) (*entities.Follower, error)
	UpdateStatusByPair(ctx context.Context, sender, recipient entities.Ref, status entities.FollowStatus) (int64, error)
	DeleteByPair(ctx context.Context, sender, recipient entities.Ref) (int64, error)
	ListRelatedEntities(ctx context.Context, ref entities.Ref, side domain.RelationSide, status entities.FollowStatus, page domain.PageRequest) (*domain.EntityPage, error)
}

var (
	_ Store = (*repositories.FollowerRepository)(nil)
	_ Store = (*repositories.CachedFollowerRepository)(nil)
)
