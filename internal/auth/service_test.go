package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aihubtotal/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mock account repository
// ---------------------------------------------------------------------------

type mockRepo struct {
	byEmail map[string]*models.Account
}

func newMockRepo() *mockRepo { return &mockRepo{byEmail: make(map[string]*models.Account)} }

func (m *mockRepo) Create(_ context.Context, a *models.Account) error {
	if _, exists := m.byEmail[a.Email]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"}
	}
	cp := *a
	m.byEmail[a.Email] = &cp
	return nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	a, ok := m.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRegister_NewAccountStartsEmpty(t *testing.T) {
	svc := NewService(newMockRepo(), "test-secret")

	acc, err := svc.Register(context.Background(), "  Someone@Gmail.com ", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acc.Email != "someone@gmail.com" {
		t.Errorf("email not normalized: %q", acc.Email)
	}
	if acc.Credits != 0 || acc.IsPremium {
		t.Errorf("new account should start with 0 credits, not premium: %+v", acc)
	}
	if acc.PasswordHash == "hunter22" || acc.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), "test-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "someone@example.com", "hunter22"); !errors.Is(err, ErrEmailNotAllowed) {
		t.Errorf("non-gmail address: got %v, want ErrEmailNotAllowed", err)
	}
	if _, err := svc.Register(ctx, "someone@gmail.com", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password: got %v, want ErrPasswordTooShort", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo(), "test-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "someone@gmail.com", "hunter22"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "someone@gmail.com", "other-password"); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("second register: got %v, want ErrDuplicateEmail", err)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	svc := NewService(newMockRepo(), "test-secret")
	ctx := context.Background()

	acc, err := svc.Register(ctx, "someone@gmail.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, logged, err := svc.Login(ctx, "someone@gmail.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != acc.ID {
		t.Error("login returned a different account")
	}

	id, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if id != acc.ID {
		t.Errorf("token subject: got %s, want %s", id, acc.ID)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := NewService(newMockRepo(), "test-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "someone@gmail.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "someone@gmail.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@gmail.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", err)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewService(newMockRepo(), "test-secret")
	other := NewService(newMockRepo(), "other-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "someone@gmail.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := svc.Login(ctx, "someone@gmail.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret must not validate")
	}
}
