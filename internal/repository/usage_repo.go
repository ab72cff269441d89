package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aihubtotal/backend/internal/models"
)

type UsageRepo struct {
	pool *pgxpool.Pool
}

func NewUsageRepo(pool *pgxpool.Pool) *UsageRepo {
	return &UsageRepo{pool: pool}
}

// GetCount returns the day's counter for (account, feature), 0 when no row exists.
func (r *UsageRepo) GetCount(ctx context.Context, accountID uuid.UUID, feature models.Feature, day time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count FROM usage
		WHERE account_id = $1 AND feature = $2 AND usage_date = $3
	`, accountID, string(feature), day).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementOrCreate upserts the day's counter. The unique constraint on
// (account_id, feature, usage_date) makes concurrent first-uses serialize:
// one insert wins, the other merges into count = count + 1.
func (r *UsageRepo) IncrementOrCreate(ctx context.Context, accountID uuid.UUID, feature models.Feature, day time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO usage (account_id, feature, usage_date, count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (account_id, feature, usage_date)
		DO UPDATE SET count = usage.count + 1
	`, accountID, string(feature), day)
	return err
}

// DeleteOlderThan removes counters dated strictly before cutoff. Used only by
// the retention sweeper; the metering engine never deletes rows.
func (r *UsageRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM usage WHERE usage_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
