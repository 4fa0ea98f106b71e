package account

import "context"

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	GetAccount(ctx context.Context, id int64) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	CreateAccount(ctx context.Context, a Account) (int64, error)
	UpdateRoleAndPermissions(ctx context.Context, id int64, role string, permissions []string) error
	UpdatePermissions(ctx context.Context, id int64, permissions []string) error
	UpdateSensitiveUnmasked(ctx context.Context, id int64, unmasked bool) error
	UpdateLinkedPerson(ctx context.Context, id int64, personID int64) error
	DeleteAccount(ctx context.Context, id int64) error
}
