package domain

import (
	"context"
	"errors"
	"time"

	"followerspoc/src/domain/entities"
)

var (
	ErrEntityNotFound = errors.New("entity not found")

	// ErrRelationshipExists indica violação da unicidade do par
	// (sender, recipient) no storage. É o guarda final contra corridas:
	// o caller deve reler o par e reconciliar, não re-tentar às cegas.
	ErrRelationshipExists = errors.New("relationship already exists for pair")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// ############################################################
// ############ CONSULTAS TIPADAS AO FOLLOWER STORE ###########
// ############################################################

// FollowerFilter substitui os scopes encadeados do query builder por
// parâmetros explícitos. Campos nil não filtram.
type FollowerFilter struct {
	Sender    *entities.Ref
	Recipient *entities.Ref
	Status    *entities.FollowStatus
}

// RelationSide indica de qual lado da aresta a entidade consultada está.
type RelationSide int

const (
	SideSender RelationSide = iota
	SideRecipient
)

// PageRequest descreve a paginação das listas de entidades relacionadas.
// PerPage 0 (ou negativo) retorna tudo numa página só.
type PageRequest struct {
	Page    int
	PerPage int
}

func (p PageRequest) Unpaged() bool {
	return p.PerPage <= 0
}

// Offset devolve o deslocamento em linhas da página pedida.
func (p PageRequest) Offset() int {
	if p.Unpaged() || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// EntityPage é uma página de entidades relacionadas + total do conjunto.
type EntityPage struct {
	Items   []entities.Entity `json:"items"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// ############################################################
// ################## CONTRATO DE CAPACIDADE ##################
// ############################################################

// Followable é o contrato que uma entidade precisa expor para poder
// receber follows: um flag global e um hook de veto por remetente
// (ex: bloqueio do lado do destinatário).
type Followable interface {
	AcceptsFollowers() bool
	CanBeFollowedBy(ctx context.Context, sender entities.Ref) (bool, error)
}

// FollowableResolver resolve um Ref para a sua capacidade. found=false
// significa "não é uma entidade seguível" e toda operação do engine
// contra ela falha de forma soft.
type FollowableResolver interface {
	ResolveFollowable(ctx context.Context, ref entities.Ref) (Followable, bool, error)
}

// ############################################################
// ################ NOTIFICAÇÕES DO ENGINE ####################
// ############################################################

type FollowEvent string

const (
	EventFollowRequest         FollowEvent = "follow.request"
	EventFollowRequestAccepted FollowEvent = "follow.request_accepted"
	EventFollowRequestDenied   FollowEvent = "follow.request_denied"
	EventUnfollow              FollowEvent = "follow.unfollowed"
	EventFollowingBlocked      FollowEvent = "follow.blocked"
	EventFollowingUnblocked    FollowEvent = "follow.unblocked"
)

// FollowNotification é o registro imutável emitido a cada transição.
// Para eventos de bloqueio, Sender é o bloqueado e Recipient o
// bloqueador (mesma polaridade da linha persistida).
type FollowNotification struct {
	Event      FollowEvent  `json:"event"`
	Sender     entities.Ref `json:"sender"`
	Recipient  entities.Ref `json:"recipient"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// FollowNotifier é o sink plugável. A entrega é responsabilidade do
// colaborador; o engine chama de forma síncrona e loga falhas sem
// propagar nem desfazer a mutação.
type FollowNotifier interface {
	Notify(ctx context.Context, notification FollowNotification) error
}

// NoopNotifier descarta notificações. Útil em testes e no datagen.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, FollowNotification) error { return nil }
