package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the three tables on startup if they do not exist.
// The unique constraint on usage and the CHECK on credits back the atomic
// primitives TryDebit and IncrementOrCreate rely on.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			credits DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (credits >= 0),
			is_premium BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS usage (
			account_id UUID NOT NULL REFERENCES accounts(id),
			feature TEXT NOT NULL,
			usage_date DATE NOT NULL,
			count INTEGER NOT NULL DEFAULT 1,
			UNIQUE (account_id, feature, usage_date)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL REFERENCES accounts(id),
			package TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			credits_granted INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
