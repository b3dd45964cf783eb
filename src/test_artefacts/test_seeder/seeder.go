package test_seeder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TestSeeder struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) TestSeeder {
	return TestSeeder{pool: pool}
}

// EnsureSchema cria as tabelas usadas nos testes de integração caso o
// banco alvo ainda não tenha sido migrado.
func (ts TestSeeder) EnsureSchema(ctx context.Context) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id BIGSERIAL PRIMARY KEY,
			type TEXT NOT NULL,
			reference TEXT NOT NULL,
			properties JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (type, reference)
		)`,
		`CREATE TABLE IF NOT EXISTS followers (
			id BIGSERIAL PRIMARY KEY,
			sender_type TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			recipient_type TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			status SMALLINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (sender_type, sender_id, recipient_type, recipient_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_followers_recipient
			ON followers (recipient_type, recipient_id, status)`,
	}

	for _, statement := range statements {
		if _, err := ts.pool.Exec(ctx, statement); err != nil {
			panic(fmt.Sprintf("Seeder.EnsureSchema failed: %v", err))
		}
	}
}

func (ts TestSeeder) TruncateTables(ctx context.Context) {
	tables := []string{
		"followers",
		"entities",
	}

	for _, table := range tables {
		_, err := ts.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		if err != nil {
			panic(fmt.Sprintf("Failed to truncate %s: %v", table, err))
		}
	}
}
