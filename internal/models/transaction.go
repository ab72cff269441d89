package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction records one completed credit purchase. Append-only; no payment
// processing happens here, Amount is kept for audit.
type Transaction struct {
	ID             uuid.UUID `json:"id"`
	AccountID      uuid.UUID `json:"account_id"`
	Package        string    `json:"package"`
	Amount         float64   `json:"amount"`
	CreditsGranted int       `json:"credits_granted"`
	CreatedAt      time.Time `json:"created_at"`
}
