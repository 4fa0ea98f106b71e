package importer

import (
	"context"

	"github.com/talentvault/talentvault/internal/dimension"
	"github.com/talentvault/talentvault/internal/person"
)

// RepositoryPort describes repository operations used by Service. The
// whole batch runs inside a single transaction, so a fault mid-batch
// leaves prior state intact.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes transactional operations for one import batch.
type TxRepository interface {
	FindPersonIDByName(ctx context.Context, name string) (int64, error)
	CreatePerson(ctx context.Context, p person.Person) (int64, error)
	UpdatePersonFields(ctx context.Context, id int64, department, title, focus string) error
	ReplaceMonth(ctx context.Context, personID int64, month dimension.MonthKey, records []dimension.Record) error
}
