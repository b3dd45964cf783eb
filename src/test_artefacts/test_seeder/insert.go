package test_seeder

import (
	"context"
	"fmt"
	"time"

	"followerspoc/src/domain/entities"
	"followerspoc/src/infra/postgres"
)

// nullableTime devolve nil para zero time, para que o COALESCE do
// insert caia no default do banco.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// InsertEntity inserts an entity into the database for testing
func (ts TestSeeder) InsertEntity(ctx context.Context, entity *entities.Entity) {
	query := `
		INSERT INTO entities (type, reference, properties, created_at, updated_at)
		VALUES ($1, $2, COALESCE($3, '{}'::jsonb), COALESCE($4, now()), COALESCE($5, now()))
		RETURNING id`

	var properties *string
	if len(entity.Properties) > 0 {
		s := string(entity.Properties)
		properties = &s
	}

	err := ts.pool.QueryRow(ctx, query,
		entity.Type,
		entity.Reference,
		postgres.NewNullString(properties),
		postgres.NewNullTime(nullableTime(entity.CreatedAt)),
		postgres.NewNullTime(nullableTime(entity.UpdatedAt)),
	).Scan(&entity.ID)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertEntity failed: %v", err))
	}
}

// InsertFollower inserts a follow relationship row for testing
func (ts TestSeeder) InsertFollower(ctx context.Context, follower *entities.Follower) {
	query := `
		INSERT INTO followers (sender_type, sender_id, recipient_type, recipient_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), COALESCE($7, now()))
		RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		follower.SenderType,
		follower.SenderID,
		follower.RecipientType,
		follower.RecipientID,
		int16(follower.Status),
		postgres.NewNullTime(nullableTime(follower.CreatedAt)),
		postgres.NewNullTime(nullableTime(follower.UpdatedAt)),
	).Scan(&follower.ID)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertFollower failed: %v", err))
	}
}
