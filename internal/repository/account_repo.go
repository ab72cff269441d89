package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aihubtotal/backend/internal/models"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, password_hash, credits, is_premium)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, a.ID, a.Email, a.PasswordHash, a.Credits, a.IsPremium).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, credits, is_premium, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Credits, &a.IsPremium, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, credits, is_premium, created_at, updated_at
		FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Credits, &a.IsPremium, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// TryDebit atomically deducts amount iff the current balance covers it.
// The condition lives in the UPDATE itself so two concurrent debits can
// never drive the balance negative; the loser simply matches zero rows.
func (r *AccountRepo) TryDebit(ctx context.Context, id uuid.UUID, amount float64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET credits = credits - $1, updated_at = now()
		WHERE id = $2 AND credits >= $1
	`, amount, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AddCreditsTx grants credits and marks the account premium inside the
// caller's transaction. Returns the new balance.
func (r *AccountRepo) AddCreditsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount float64) (newBalance float64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET credits = credits + $1, is_premium = TRUE, updated_at = now()
		WHERE id = $2
		RETURNING credits
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}
