package repositories

import (
	"context"
	"fmt"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
	"followerspoc/src/infra/postgres"
)

// FollowerRepository é o Relationship Store: CRUD tipado + predicados
// sobre a tabela followers. Nenhuma regra de negócio mora aqui - isso é
// papel do FollowerService.
type FollowerRepository struct {
	client *postgres.ReadWriteClient
}

func NewFollowerRepository(client *postgres.ReadWriteClient) *FollowerRepository {
	return &FollowerRepository{client: client}
}

const followerColumns = `id, sender_type, sender_id, recipient_type, recipient_id, status, created_at, updated_at`

// FindByPair busca a linha direcional exata (sender -> recipient).
// Retorna nil quando não existe.
func (r *FollowerRepository) FindByPair(ctx context.Context, sender, recipient entities.Ref) (*entities.Follower, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM followers
		WHERE sender_type = $1 AND sender_id = $2
		  AND recipient_type = $3 AND recipient_id = $4`, followerColumns)

	row := r.client.GetReadPool().QueryRow(ctx, query, sender.Type, sender.ID, recipient.Type, recipient.ID)

	var follower entities.Follower
	if err := scanFollower(row, &follower); err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("FollowerRepository.FindByPair failed: %w", err)
	}

	return &follower, nil
}

// Find lista as linhas que batem com o filtro, em ordem de inserção.
func (r *FollowerRepository) Find(ctx context.Context, filter domain.FollowerFilter) ([]entities.Follower, error) {
	where, args := buildFollowerWhere(filter)

	query := fmt.Sprintf(`
		SELECT %s
		FROM followers
		%s
		ORDER BY id`, followerColumns, where)

	rows, err := r.client.GetReadPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FollowerRepository.Find query failed: %w", err)
	}
	defer rows.Close()

	var followers []entities.Follower
	for rows.Next() {
		var follower entities.Follower
		if err := scanFollower(rows, &follower); err != nil {
			return nil, fmt.Errorf("FollowerRepository.Find scan failed: %w", err)
		}
		followers = append(followers, follower)
	}

	return followers, rows.Err()
}

func (r *FollowerRepository) Exists(ctx context.Context, filter domain.FollowerFilter) (bool, error) {
	where, args := buildFollowerWhere(filter)

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM followers %s)`, where)

	var exists bool
	if err := r.client.GetReadPool().QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("FollowerRepository.Exists query failed: %w", err)
	}

	return exists, nil
}

func (r *FollowerRepository) Count(ctx context.Context, filter domain.FollowerFilter) (int64, error) {
	where, args := buildFollowerWhere(filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM followers %s`, where)

	var count int64
	if err := r.client.GetReadPool().QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("FollowerRepository.Count query failed: %w", err)
	}

	return count, nil
}

// Create insere a linha do par. A constraint de unicidade no banco é o
// guarda final contra corridas: violações viram ErrRelationshipExists e
// o caller relê o par e reconcilia.
func (r *FollowerRepository) Create(ctx context.Context, sender, recipient entities.Ref, status entities.FollowStatus) (*entities.Follower, error) {
	query := fmt.Sprintf(`
		INSERT INTO followers (sender_type, sender_id, recipient_type, recipient_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, followerColumns)

	row := r.client.GetWritePool().QueryRow(ctx, query, sender.Type, sender.ID, recipient.Type, recipient.ID, status)

	var follower entities.Follower
	if err := scanFollower(row, &follower); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, domain.ErrRelationshipExists
		}
		return nil, fmt.Errorf("FollowerRepository.Create failed: %w", err)
	}

	return &follower, nil
}

// UpdateStatusByPair muda o status da linha do par in place. Zero linhas
// afetadas é um no-op válido, não um erro.
func (r *FollowerRepository) UpdateStatusByPair(ctx context.Context, sender, recipient entities.Ref, status entities.FollowStatus) (int64, error) {
	query := `
		UPDATE followers
		SET status = $5, updated_at = NOW()
		WHERE sender_type = $1 AND sender_id = $2
		  AND recipient_type = $3 AND recipient_id = $4`

	tag, err := r.client.GetWritePool().Exec(ctx, query, sender.Type, sender.ID, recipient.Type, recipient.ID, status)
	if err != nil {
		return 0, fmt.Errorf("FollowerRepository.UpdateStatusByPair failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteByPair é idempotente: apagar um par inexistente afeta zero
// linhas e não é erro.
func (r *FollowerRepository) DeleteByPair(ctx context.Context, sender, recipient entities.Ref) (int64, error) {
	query := `
		DELETE FROM followers
		WHERE sender_type = $1 AND sender_id = $2
		  AND recipient_type = $3 AND recipient_id = $4`

	tag, err := r.client.GetWritePool().Exec(ctx, query, sender.Type, sender.ID, recipient.Type, recipient.ID)
	if err != nil {
		return 0, fmt.Errorf("FollowerRepository.DeleteByPair failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListRelatedEntities resolve as entidades do lado oposto das relações
// da ref (não as linhas de relação). Exclui a própria ref do resultado
// e pagina; PerPage 0 devolve tudo numa página.
func (r *FollowerRepository) ListRelatedEntities(
	ctx context.Context,
	ref entities.Ref,
	side domain.RelationSide,
	status entities.FollowStatus,
	page domain.PageRequest,
) (*domain.EntityPage, error) {
	// Quando a ref é sender, o "outro lado" é o recipient e vice-versa.
	ownTypeCol, ownIDCol, otherTypeCol, otherIDCol := "sender_type", "sender_id", "recipient_type", "recipient_id"
	if side == domain.SideRecipient {
		ownTypeCol, ownIDCol, otherTypeCol, otherIDCol = "recipient_type", "recipient_id", "sender_type", "sender_id"
	}

	query := fmt.Sprintf(`
		SELECT
			e.id, e.type, e.reference, e.properties, e.created_at, e.updated_at,
			COUNT(*) OVER() AS total
		FROM followers f
		JOIN entities e
			ON e.type = f.%s AND e.reference = f.%s
		WHERE f.%s = $1 AND f.%s = $2 AND f.status = $3
		  AND NOT (e.type = $1 AND e.reference = $2)
		ORDER BY f.id`, otherTypeCol, otherIDCol, ownTypeCol, ownIDCol)

	args := []interface{}{ref.Type, ref.ID, status}
	if !page.Unpaged() {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, page.PerPage, page.Offset())
	}

	rows, err := r.client.GetReadPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FollowerRepository.ListRelatedEntities query failed: %w", err)
	}
	defer rows.Close()

	result := &domain.EntityPage{
		Items:   make([]entities.Entity, 0),
		Page:    page.Page,
		PerPage: page.PerPage,
	}

	for rows.Next() {
		var entity entities.Entity
		if err := rows.Scan(&entity.ID, &entity.Type, &entity.Reference, &entity.Properties,
			&entity.CreatedAt, &entity.UpdatedAt, &result.Total); err != nil {
			return nil, fmt.Errorf("FollowerRepository.ListRelatedEntities scan failed: %w", err)
		}
		result.Items = append(result.Items, entity)
	}

	return result, rows.Err()
}

type followerScanner interface {
	Scan(dest ...interface{}) error
}

func scanFollower(row followerScanner, f *entities.Follower) error {
	return row.Scan(&f.ID, &f.SenderType, &f.SenderID, &f.RecipientType, &f.RecipientID,
		&f.Status, &f.CreatedAt, &f.UpdatedAt)
}

// buildFollowerWhere monta a cláusula WHERE a partir do filtro tipado.
func buildFollowerWhere(filter domain.FollowerFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	appendCondition := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.Sender != nil {
		appendCondition("sender_type = $%d", filter.Sender.Type)
		appendCondition("sender_id = $%d", filter.Sender.ID)
	}
	if filter.Recipient != nil {
		appendCondition("recipient_type = $%d", filter.Recipient.Type)
		appendCondition("recipient_id = $%d", filter.Recipient.ID)
	}
	if filter.Status != nil {
		appendCondition("status = $%d", *filter.Status)
	}

	if len(conditions) == 0 {
		return "", nil
	}

	where := "WHERE " + conditions[0]
	for _, condition := range conditions[1:] {
		where += " AND " + condition
	}

	return where, args
}
