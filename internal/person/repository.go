package person

import "context"

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPerson(ctx context.Context, id int64) (Person, error)
	ListPersons(ctx context.Context, limit, offset int) ([]Person, int, error)
}

// TxRepository exposes transactional operations. Deleting a person removes
// its dimension rows and detaches linked accounts in the same transaction.
type TxRepository interface {
	CreatePerson(ctx context.Context, p Person) (int64, error)
	UpdatePerson(ctx context.Context, p Person) error
	DeletePerson(ctx context.Context, id int64) error
	DeleteDimensionRows(ctx context.Context, personID int64) error
	DetachAccounts(ctx context.Context, personID int64) error
}
