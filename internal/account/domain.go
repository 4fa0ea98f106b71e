package account

import (
	"errors"
	"time"

	"github.com/talentvault/talentvault/internal/capability"
)

// Account is an authenticated login bound to at most one person. The
// stored permission list is free-form in the database and validated
// against the capability catalog every time an actor is resolved.
type Account struct {
	ID                int64
	Email             string
	PasswordHash      string
	Role              capability.Role
	Permissions       []string
	IsSuperAdmin      bool
	SensitiveUnmasked bool
	LinkedPersonID    int64 // zero when unlinked
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("account: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("account: invalid input")
	// ErrDuplicate indicates an email collision.
	ErrDuplicate = errors.New("account: duplicate email")
)
