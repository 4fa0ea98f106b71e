package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/talentvault/talentvault/internal/account"
	"github.com/talentvault/talentvault/internal/shared"
)

// AccountPort exposes the account lookups authentication needs.
type AccountPort interface {
	FindByEmail(ctx context.Context, email string) (account.Account, error)
}

// Service wraps authentication business rules.
type Service struct {
	accounts AccountPort
}

// NewService constructs a new Service.
func NewService(accounts AccountPort) *Service {
	return &Service{accounts: accounts}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (account.Account, error) {
	a, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return account.Account{}, shared.ErrInvalidCredentials
	}
	if !a.IsActive {
		return account.Account{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return account.Account{}, shared.ErrInvalidCredentials
	}
	return a, nil
}
