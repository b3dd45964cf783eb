package test_seeder

import (
	"context"

	"followerspoc/src/domain/entities"
)

func (ts TestSeeder) SelectEntitiesByReferences(ctx context.Context, references []string) ([]entities.Entity, error) {
	query := `SELECT id, type, reference, properties, created_at, updated_at
			  FROM entities WHERE reference = ANY($1)`

	rows, err := ts.pool.Query(ctx, query, references)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entitiesList []entities.Entity
	for rows.Next() {
		var entity entities.Entity
		err := rows.Scan(
			&entity.ID,
			&entity.Type,
			&entity.Reference,
			&entity.Properties,
			&entity.CreatedAt,
			&entity.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entitiesList = append(entitiesList, entity)
	}

	return entitiesList, rows.Err()
}

// SelectFollowersBySender retrieves all follow rows where the given
// entity is the sender side, ordered by id
func (ts TestSeeder) SelectFollowersBySender(ctx context.Context, sender entities.Ref) ([]entities.Follower, error) {
	query := `SELECT id, sender_type, sender_id, recipient_type, recipient_id, status, created_at, updated_at
			  FROM followers
			  WHERE sender_type = $1 AND sender_id = $2
			  ORDER BY id`

	return ts.selectFollowers(ctx, query, sender.Type, sender.ID)
}

// SelectFollowersByRecipient retrieves all follow rows where the given
// entity is the recipient side, ordered by id
func (ts TestSeeder) SelectFollowersByRecipient(ctx context.Context, recipient entities.Ref) ([]entities.Follower, error) {
	query := `SELECT id, sender_type, sender_id, recipient_type, recipient_id, status, created_at, updated_at
			  FROM followers
			  WHERE recipient_type = $1 AND recipient_id = $2
			  ORDER BY id`

	return ts.selectFollowers(ctx, query, recipient.Type, recipient.ID)
}

func (ts TestSeeder) selectFollowers(ctx context.Context, query string, args ...any) ([]entities.Follower, error) {
	rows, err := ts.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var followers []entities.Follower
	for rows.Next() {
		var follower entities.Follower
		err := rows.Scan(
			&follower.ID,
			&follower.SenderType,
			&follower.SenderID,
			&follower.RecipientType,
			&follower.RecipientID,
			&follower.Status,
			&follower.CreatedAt,
			&follower.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		followers = append(followers, follower)
	}

	return followers, rows.Err()
}
