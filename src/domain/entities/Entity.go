package entities

import (
	"encoding/json"
	"time"
)

// Ref identifica qualquer entidade seguível pelo par (type, key).
// É a única coisa que o engine precisa saber sobre um participante.
type Ref struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (r Ref) Equals(other Ref) bool {
	return r.Type == other.Type && r.ID == other.ID
}

func (r Ref) IsZero() bool {
	return r.Type == "" && r.ID == ""
}

// Entity é o "nó" seguível do grafo social (um user, uma org, etc).
type Entity struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	// Reference é a chave de negócio dentro do tipo (ex: uuid do usuário).
	Reference string `json:"reference"`
	// Usamos json.RawMessage para dados estáticos, pois permite
	// manter o JSON original sem precisar de uma struct específica.
	Properties json.RawMessage `json:"properties,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (e Entity) Ref() Ref {
	return Ref{Type: e.Type, ID: e.Reference}
}
