package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentvault/talentvault/internal/capability"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, email, password_hash, role, permissions, is_super_admin, sensitive_unmasked, COALESCE(linked_person_id, 0), is_active, created_at, updated_at`

// GetAccount returns one account by ID.
func (r *Repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// FindByEmail returns one account by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// ListAccounts returns all accounts ordered by id.
func (r *Repository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount inserts an account row.
func (r *Repository) CreateAccount(ctx context.Context, a Account) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash, role, permissions, is_super_admin, sensitive_unmasked, linked_person_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), $8, NOW(), NOW()) RETURNING id`,
		a.Email, a.PasswordHash, string(a.Role), a.Permissions, a.IsSuperAdmin, a.SensitiveUnmasked, a.LinkedPersonID, a.IsActive).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// UpdateRoleAndPermissions rewrites role and permission set together.
func (r *Repository) UpdateRoleAndPermissions(ctx context.Context, id int64, role string, permissions []string) error {
	return r.exec(ctx, `UPDATE accounts SET role=$2, permissions=$3, updated_at=NOW() WHERE id=$1`, id, role, permissions)
}

// UpdatePermissions rewrites the permission set.
func (r *Repository) UpdatePermissions(ctx context.Context, id int64, permissions []string) error {
	return r.exec(ctx, `UPDATE accounts SET permissions=$2, updated_at=NOW() WHERE id=$1`, id, permissions)
}

// UpdateSensitiveUnmasked stores the viewing preference.
func (r *Repository) UpdateSensitiveUnmasked(ctx context.Context, id int64, unmasked bool) error {
	return r.exec(ctx, `UPDATE accounts SET sensitive_unmasked=$2, updated_at=NOW() WHERE id=$1`, id, unmasked)
}

// UpdateLinkedPerson rewrites the person link; zero unlinks.
func (r *Repository) UpdateLinkedPerson(ctx context.Context, id int64, personID int64) error {
	return r.exec(ctx, `UPDATE accounts SET linked_person_id=NULLIF($2, 0), updated_at=NOW() WHERE id=$1`, id, personID)
}

// DeleteAccount removes the account row.
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
}

func (r *Repository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var role string
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &role, &a.Permissions, &a.IsSuperAdmin, &a.SensitiveUnmasked, &a.LinkedPersonID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	a.Role = capability.Role(role)
	return a, nil
}
