package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aihubtotal/backend/internal/models"
)

// ErrUnknownPackage is returned when the requested package id is not in the catalog.
var ErrUnknownPackage = errors.New("unknown credit package")

// AccountCreditor grants credits inside a transaction.
type AccountCreditor interface {
	AddCreditsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount float64) (float64, error)
}

// TransactionRecorder appends purchase audit rows inside a transaction.
type TransactionRecorder interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transaction) error
}

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service records credit purchases. The balance grant (which also flips
// is_premium) and the audit row are one transaction: neither survives
// without the other.
type Service struct {
	pool         TxBeginner
	accounts     AccountCreditor
	transactions TransactionRecorder
	catalog      []models.CreditPackage
}

func NewService(pool TxBeginner, accounts AccountCreditor, transactions TransactionRecorder, catalog []models.CreditPackage) *Service {
	return &Service{pool: pool, accounts: accounts, transactions: transactions, catalog: catalog}
}

// Packages returns the fixed catalog.
func (s *Service) Packages() []models.CreditPackage {
	out := make([]models.CreditPackage, len(s.catalog))
	copy(out, s.catalog)
	return out
}

func (s *Service) lookup(packageID string) (models.CreditPackage, bool) {
	for _, p := range s.catalog {
		if p.ID == packageID {
			return p, true
		}
	}
	return models.CreditPackage{}, false
}

// Purchase grants the package's credits to the account and appends the
// Transaction row. Returns the recorded transaction and the new balance.
func (s *Service) Purchase(ctx context.Context, accountID uuid.UUID, packageID string) (*models.Transaction, float64, error) {
	pkg, ok := s.lookup(packageID)
	if !ok {
		return nil, 0, ErrUnknownPackage
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	newBalance, err := s.accounts.AddCreditsTx(ctx, tx, accountID, float64(pkg.Credits))
	if err != nil {
		return nil, 0, err
	}
	txn := &models.Transaction{
		ID:             uuid.New(),
		AccountID:      accountID,
		Package:        pkg.ID,
		Amount:         pkg.Price,
		CreditsGranted: pkg.Credits,
	}
	if err := s.transactions.CreateTx(ctx, tx, txn); err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return txn, newBalance, nil
}
