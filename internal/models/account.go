package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user. Credits is a real-valued balance because
// per-use deduction is a flat 1.0 unit but purchases may grant fractional
// promotional amounts; the accounts table enforces credits >= 0.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Credits      float64   `json:"credits"`
	IsPremium    bool      `json:"is_premium"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
