package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"followerspoc/src/domain/entities"
	"followerspoc/src/infra/postgres"
)

// EntityRepository dá acesso às entidades seguíveis. O engine só o usa
// para confirmar que um Ref existe antes de aplicar as regras; o resto
// (listas) sai do join feito pelo FollowerRepository.
type EntityRepository struct {
	client *postgres.ReadWriteClient
}

func NewEntityRepository(client *postgres.ReadWriteClient) *EntityRepository {
	return &EntityRepository{client: client}
}

// GetByRef busca a entidade pelo par (type, reference). Retorna nil
// quando não existe.
func (r *EntityRepository) GetByRef(ctx context.Context, ref entities.Ref) (*entities.Entity, error) {
	query := `
		SELECT id, type, reference, properties, created_at, updated_at
		FROM entities
		WHERE type = $1 AND reference = $2`

	var entity entities.Entity
	err := r.client.GetReadPool().QueryRow(ctx, query, ref.Type, ref.ID).
		Scan(&entity.ID, &entity.Type, &entity.Reference, &entity.Properties,
			&entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("EntityRepository.GetByRef failed: %w", err)
	}

	return &entity, nil
}

// Upsert cria ou atualiza a entidade, fazendo merge das properties.
func (r *EntityRepository) Upsert(ctx context.Context, ref entities.Ref, properties json.RawMessage) (*entities.Entity, error) {
	query := `
		INSERT INTO entities (type, reference, properties)
		VALUES ($1, $2, COALESCE($3, '{}'::jsonb))
		ON CONFLICT (type, reference) DO UPDATE SET
			properties = COALESCE(entities.properties, '{}'::jsonb) || COALESCE(excluded.properties, '{}'::jsonb),
			updated_at = NOW()
		RETURNING id, type, reference, properties, created_at, updated_at`

	var entity entities.Entity
	err := r.client.GetWritePool().QueryRow(ctx, query, ref.Type, ref.ID, properties).
		Scan(&entity.ID, &entity.Type, &entity.Reference, &entity.Properties,
			&entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("EntityRepository.Upsert failed: %w", err)
	}

	return &entity, nil
}
