package metering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aihubtotal/backend/internal/models"
)

// ErrAccountNotFound is returned by Admit/Charge when the identity layer
// handed over an id that does not exist.
var ErrAccountNotFound = errors.New("account not found")

// LimitReachedError denies admission because the free tier is exhausted and
// the account holds no credits. Limit is exposed so the boundary layer can
// show it to the user.
type LimitReachedError struct {
	Feature models.Feature
	Limit   int
}

func (e *LimitReachedError) Error() string {
	return fmt.Sprintf("daily %s limit reached (%d)", e.Feature, e.Limit)
}

// UnitCost is the flat per-use deduction applied to credit balances,
// identical for every feature.
const UnitCost = 1.0

// AccountStore is the minimal account access the engine needs.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	TryDebit(ctx context.Context, id uuid.UUID, amount float64) (bool, error)
}

// UsageStore is the minimal free-tier ledger access the engine needs.
type UsageStore interface {
	GetCount(ctx context.Context, accountID uuid.UUID, feature models.Feature, day time.Time) (int, error)
	IncrementOrCreate(ctx context.Context, accountID uuid.UUID, feature models.Feature, day time.Time) error
}

// Engine decides admission for metered features and records consumption.
// Admit and Charge are invoked as a pair around the external generation
// call: Admit before, Charge only after the call succeeded. The engine
// cannot enforce that sequencing; the request layer owns it.
type Engine struct {
	accounts AccountStore
	usage    UsageStore
	limits   map[models.Feature]int
	now      func() time.Time
}

// NewEngine builds an engine with the given per-feature free-tier limits.
func NewEngine(accounts AccountStore, usage UsageStore, limits map[models.Feature]int) *Engine {
	return &Engine{
		accounts: accounts,
		usage:    usage,
		limits:   limits,
		now:      time.Now,
	}
}

// Admit decides whether the account may use the feature right now. It is a
// pure read: no state is mutated no matter how often it is called.
// A positive credit balance always grants, regardless of today's usage.
func (e *Engine) Admit(ctx context.Context, accountID uuid.UUID, feature models.Feature) error {
	limit, ok := e.limits[feature]
	if !ok {
		return fmt.Errorf("unknown feature %q", feature)
	}
	acc, err := e.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	if acc.Credits > 0 {
		return nil
	}
	count, err := e.usage.GetCount(ctx, accountID, feature, e.today())
	if err != nil {
		return err
	}
	if count >= limit {
		return &LimitReachedError{Feature: feature, Limit: limit}
	}
	return nil
}

// Charge records one successful use. The balance is re-read here rather than
// trusted from Admit: requests in flight between the two calls may have
// drained it. If the balance is positive the charge is a single conditional
// debit of one unit; if that debit loses its race (balance hit zero in the
// meantime) or the balance was already zero, the charge falls through to the
// day's usage counter. Exactly one of the two mutations applies per call.
func (e *Engine) Charge(ctx context.Context, accountID uuid.UUID, feature models.Feature) error {
	acc, err := e.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	if acc.Credits > 0 {
		ok, err := e.accounts.TryDebit(ctx, accountID, UnitCost)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return e.usage.IncrementOrCreate(ctx, accountID, feature, e.today())
}

// Usage reports today's counter and the configured limit for a feature.
func (e *Engine) Usage(ctx context.Context, accountID uuid.UUID, feature models.Feature) (used, limit int, err error) {
	limit = e.limits[feature]
	used, err = e.usage.GetCount(ctx, accountID, feature, e.today())
	return used, limit, err
}

// today truncates the clock to a UTC calendar date, the metering timezone.
func (e *Engine) today() time.Time {
	t := e.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
