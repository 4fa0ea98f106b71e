package person

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
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

// WithTx wraps callback in repeatable-read transaction.
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

const personColumns = `id, name, title, department, focus, bio, COALESCE(birth_date, ''), COALESCE(phone, ''), created_at, updated_at`

// GetPerson returns one person by ID.
func (r *Repository) GetPerson(ctx context.Context, id int64) (Person, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1`, id)
	return scanPerson(row)
}

// ListPersons returns a page of persons plus the total count.
func (r *Repository) ListPersons(ctx context.Context, limit, offset int) ([]Person, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM persons`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+personColumns+` FROM persons ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var people []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, err
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return people, total, nil
}

// CreatePerson inserts a person row.
func (t *txRepo) CreatePerson(ctx context.Context, p Person) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO persons (name, title, department, focus, bio, birth_date, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NOW(), NOW()) RETURNING id`,
		p.Name, p.Title, p.Department, p.Focus, p.Bio, p.BirthDate, p.Phone).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// UpdatePerson rewrites a person row.
func (t *txRepo) UpdatePerson(ctx context.Context, p Person) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE persons SET name=$2, title=$3, department=$4, focus=$5, bio=$6, birth_date=NULLIF($7, ''), phone=NULLIF($8, ''), updated_at=NOW() WHERE id=$1`,
		p.ID, p.Name, p.Title, p.Department, p.Focus, p.Bio, p.BirthDate, p.Phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePerson removes the person row.
func (t *txRepo) DeletePerson(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDimensionRows drops the person's monthly profile rows.
func (t *txRepo) DeleteDimensionRows(ctx context.Context, personID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM dimension_records WHERE person_id = $1`, personID)
	return err
}

// DetachAccounts nulls linked_person_id on accounts referencing the person.
func (t *txRepo) DetachAccounts(ctx context.Context, personID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE accounts SET linked_person_id = NULL, updated_at = NOW() WHERE linked_person_id = $1`, personID)
	return err
}

func scanPerson(row pgx.Row) (Person, error) {
	var p Person
	err := row.Scan(&p.ID, &p.Name, &p.Title, &p.Department, &p.Focus, &p.Bio, &p.BirthDate, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Person{}, ErrNotFound
		}
		return Person{}, err
	}
	return p, nil
}
