package followers

import (
	"context"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
)

// EntityGetter é o pedaço do EntityRepository que o registry precisa.
type EntityGetter interface {
	GetByRef(ctx context.Context, ref entities.Ref) (*entities.Entity, error)
}

// FollowablePolicy descreve a capacidade de um tipo de entidade:
// o flag global e um veto opcional por remetente.
type FollowablePolicy struct {
	Accepts bool
	// Veto permite lógica específica do tipo (ex: lista de bloqueio
	// própria). Nil significa sem veto adicional.
	Veto func(ctx context.Context, recipient, sender entities.Ref) (bool, error)
}

// Registry é o resolver de capacidade de referência: tipos de entidade
// optam por ser seguíveis registrando uma policy. Tipos não registrados
// (e refs sem linha na tabela de entidades) não são seguíveis, e toda
// operação do engine contra eles falha de forma soft.
type Registry struct {
	entityGetter EntityGetter
	policies     map[string]FollowablePolicy
}

func NewRegistry(entityGetter EntityGetter) *Registry {
	return &Registry{
		entityGetter: entityGetter,
		policies:     make(map[string]FollowablePolicy),
	}
}

// RegisterType liga a policy de um tipo de entidade. Não é seguro
// chamar depois que o engine começou a atender.
func (r *Registry) RegisterType(entityType string, policy FollowablePolicy) {
	r.policies[entityType] = policy
}

func (r *Registry) ResolveFollowable(ctx context.Context, ref entities.Ref) (domain.Followable, bool, error) {
	policy, registered := r.policies[ref.Type]
	if !registered {
		return nil, false, nil
	}

	entity, err := r.entityGetter.GetByRef(ctx, ref)
	if err != nil {
		return nil, false, err
	}
	if entity == nil {
		return nil, false, nil
	}

	return &registeredFollowable{ref: ref, policy: policy}, true, nil
}

var _ domain.FollowableResolver = (*Registry)(nil)

type registeredFollowable struct {
	ref    entities.Ref
	policy FollowablePolicy
}

func (f *registeredFollowable) AcceptsFollowers() bool {
	return f.policy.Accepts
}

func (f *registeredFollowable) CanBeFollowedBy(ctx context.Context, sender entities.Ref) (bool, error) {
	if f.policy.Veto == nil {
		return true, nil
	}
	return f.policy.Veto(ctx, f.ref, sender)
}
