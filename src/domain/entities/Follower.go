package entities

import (
	"time"
)

// FollowStatus é o estado da relação de follow. Persistido como SMALLINT.
type FollowStatus int16

const (
	StatusPending  FollowStatus = 0
	StatusAccepted FollowStatus = 1
	StatusDenied   FollowStatus = 2
	StatusBlocked  FollowStatus = 3
)

func (s FollowStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusDenied:
		return "denied"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Follower é a "aresta" direcional do grafo social: sender pediu para
// seguir recipient. Existe no máximo uma linha por par ordenado
// (sender, recipient); só o status muda depois de criada.
//
// Polaridade de bloqueio: o bloqueador fica em recipient e o bloqueado
// em sender, com status BLOCKED.
type Follower struct {
	ID            int64        `json:"id"`
	SenderType    string       `json:"sender_type"`
	SenderID      string       `json:"sender_id"`
	RecipientType string       `json:"recipient_type"`
	RecipientID   string       `json:"recipient_id"`
	Status        FollowStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (f Follower) Sender() Ref {
	return Ref{Type: f.SenderType, ID: f.SenderID}
}

func (f Follower) Recipient() Ref {
	return Ref{Type: f.RecipientType, ID: f.RecipientID}
}

// IsPair verifica se a linha pertence ao par ordenado (sender, recipient).
func (f Follower) IsPair(sender, recipient Ref) bool {
	return f.Sender().Equals(sender) && f.Recipient().Equals(recipient)
}
