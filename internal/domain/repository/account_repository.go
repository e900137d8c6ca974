package repository

import (
	"campus_auth/internal/common"
	"campus_auth/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// AccountRepository is the credential store. Every single-row call is atomic;
// Insert fails with common.ErrDuplicateEmail when the email already exists in
// the variant's collection.
type AccountRepository interface {
	FindByEmail(ctx context.Context, variant model.Variant, email string) (*model.Account, error)
	Insert(ctx context.Context, account *model.Account) (*model.Account, error)
	Update(ctx context.Context, variant model.Variant, email string, patch model.AccountPatch) error
	List(ctx context.Context, variant model.Variant) ([]*model.Account, error)
}

type pgAccountRepository struct {
	db *sql.DB
}

func NewPgAccountRepository(db *sql.DB) AccountRepository {
	return &pgAccountRepository{db: db}
}

// table describes where a variant lives and its one variant-specific column.
type table struct {
	name   string
	column string
}

var tables = map[model.Variant]table{
	model.VariantStudent: {name: "students", column: "is_representative"},
	model.VariantFaculty: {name: "faculty", column: "position"},
}

func tableFor(v model.Variant) (table, error) {
	t, ok := tables[v]
	if !ok {
		return table{}, fmt.Errorf("unknown account variant %q", v)
	}
	return t, nil
}

// variantField returns the scan destination / insert value for the
// variant-specific column.
func variantField(a *model.Account) interface{} {
	if a.Variant == model.VariantFaculty {
		return &a.Position
	}
	return &a.IsRepresentative
}

func variantValue(a *model.Account) interface{} {
	if a.Variant == model.VariantFaculty {
		return a.Position
	}
	return a.IsRepresentative
}

func (r *pgAccountRepository) FindByEmail(ctx context.Context, variant model.Variant, email string) (*model.Account, error) {
	t, err := tableFor(variant)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, email, user_name, handle, password_hash, %s, created_at, updated_at
	          FROM %s WHERE email = $1`, t.column, t.name)

	account := &model.Account{Variant: variant}
	err = r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.UserName, &account.Handle, &account.PasswordHash,
		variantField(account), &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAccountRepository.FindByEmail: %w", err)
	}
	return account, nil
}

func (r *pgAccountRepository) Insert(ctx context.Context, account *model.Account) (*model.Account, error) {
	t, err := tableFor(account.Variant)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, email, user_name, handle, password_hash, %s)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`, t.name, t.column)

	err = r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.UserName, account.Handle, account.PasswordHash, variantValue(account),
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return nil, fmt.Errorf("%s with email %q already exists: %w", account.Variant, account.Email, common.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("pgAccountRepository.Insert: %w", err)
	}
	return account, nil
}

func (r *pgAccountRepository) Update(ctx context.Context, variant model.Variant, email string, patch model.AccountPatch) error {
	t, err := tableFor(variant)
	if err != nil {
		return err
	}
	if patch.PasswordHash == nil {
		return nil
	}
	query := fmt.Sprintf(`UPDATE %s SET password_hash = $1, updated_at = now()
	          WHERE email = $2`, t.name)

	res, err := r.db.ExecContext(ctx, query, *patch.PasswordHash, email)
	if err != nil {
		return fmt.Errorf("pgAccountRepository.Update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgAccountRepository.Update: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgAccountRepository) List(ctx context.Context, variant model.Variant) ([]*model.Account, error) {
	t, err := tableFor(variant)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, email, user_name, handle, password_hash, %s, created_at, updated_at
	          FROM %s ORDER BY created_at, id`, t.column, t.name)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgAccountRepository.List: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		account := &model.Account{Variant: variant}
		if err := rows.Scan(
			&account.ID, &account.Email, &account.UserName, &account.Handle, &account.PasswordHash,
			variantField(account), &account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgAccountRepository.List scan: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAccountRepository.List rows: %w", err)
	}
	return accounts, nil
}
