package dimension

import (
	"context"

	"github.com/jackc/pgx/v5"
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

// ListRecords returns stored rows for the person across the given months.
func (r *Repository) ListRecords(ctx context.Context, personID int64, months []MonthKey) ([]Record, error) {
	keys := make([]string, len(months))
	for i, m := range months {
		keys[i] = string(m)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT person_id, category, month, detail FROM dimension_records WHERE person_id = $1 AND month = ANY($2) ORDER BY month, category`,
		personID, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		var category, month string
		if err := rows.Scan(&rec.PersonID, &category, &month, &rec.Detail); err != nil {
			return nil, err
		}
		rec.Category = Category(category)
		rec.Month = MonthKey(month)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteMonth removes every row for the person's month.
func (t *txRepo) DeleteMonth(ctx context.Context, personID int64, month MonthKey) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM dimension_records WHERE person_id = $1 AND month = $2`, personID, string(month))
	return err
}

// InsertRecord adds one normalized row.
func (t *txRepo) InsertRecord(ctx context.Context, rec Record) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO dimension_records (person_id, category, month, detail) VALUES ($1, $2, $3, $4)`,
		rec.PersonID, string(rec.Category), string(rec.Month), rec.Detail)
	return err
}
