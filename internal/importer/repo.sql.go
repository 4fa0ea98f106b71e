package importer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentvault/talentvault/internal/dimension"
	"github.com/talentvault/talentvault/internal/person"
)

// Repository provides PostgreSQL backed persistence for import batches.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the whole batch in one repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// FindPersonIDByName matches one person by exact name.
func (t *txRepo) FindPersonIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM persons WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, person.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// CreatePerson inserts a person created from an import row.
func (t *txRepo) CreatePerson(ctx context.Context, p person.Person) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO persons (name, title, department, focus, bio, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, '', NOW(), NOW()) RETURNING id`,
		p.Name, p.Title, p.Department, p.Focus).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, person.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// UpdatePersonFields applies the row's identity fields to a matched person.
func (t *txRepo) UpdatePersonFields(ctx context.Context, id int64, department, title, focus string) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE persons SET department=$2, title=$3, focus=$4, updated_at=NOW() WHERE id=$1`,
		id, department, title, focus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return person.ErrNotFound
	}
	return nil
}

// ReplaceMonth swaps the person's month rows for the normalized set.
func (t *txRepo) ReplaceMonth(ctx context.Context, personID int64, month dimension.MonthKey, records []dimension.Record) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM dimension_records WHERE person_id = $1 AND month = $2`, personID, string(month)); err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := t.tx.Exec(ctx,
			`INSERT INTO dimension_records (person_id, category, month, detail) VALUES ($1, $2, $3, $4)`,
			rec.PersonID, string(rec.Category), string(rec.Month), rec.Detail); err != nil {
			return err
		}
	}
	return nil
}
