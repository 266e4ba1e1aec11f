// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package account (Postgres) implements the profile storage layer.

It reads and writes the profile columns of users.account; identity,
moderation and session columns belong to the auth and admin packages.
*/
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayneaws/studenthub/internal/platform/database/schema"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Postgres implementation for profile management.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*auth.Account, error) {
	return repository.findOne(context, "find_by_id", schema.UserAccount.ID+" = $1", id)
}

// FindByUsername implements [Repository].
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*auth.Account, error) {
	return repository.findOne(context, "find_by_username", schema.UserAccount.Username+" = $1", username)
}

// UsernameTaken implements [Repository].
func (repository *PostgresRepository) UsernameTaken(context context.Context, username, excludeID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s::text <> $2)`,
		schema.UserAccount.Table, schema.UserAccount.Username, schema.UserAccount.ID)

	var taken bool
	if err := repository.pool.QueryRow(context, query, username, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("postgres_account_repo_username_taken_failed: %w", err)
	}
	return taken, nil
}

/*
UpdateProfile writes the editable profile columns of an account.

Parameters:
  - context: context.Context
  - account: *auth.Account

Returns:
  - error: auth.ErrDuplicateAccount on a username collision, dberr.ErrNotFound, or database errors
*/
func (repository *PostgresRepository) UpdateProfile(context context.Context, account *auth.Account) error {
	columns := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $2, %s = $3, %s = $4, %s = $5, %s = $6,
			%s = $7, %s = $8, %s = $9, %s = NOW()
		WHERE %s = $1`,
		columns.Table,
		columns.FullName, columns.Username, columns.Bio, columns.Major, columns.Grade,
		columns.ProgrammingLanguages, columns.WantsEmails, columns.ProfileSetupCompleted, columns.UpdatedAt,
		columns.ID,
	)

	languages := account.ProgrammingLanguages
	if languages == nil {
		languages = []string{}
	}

	tag, err := repository.pool.Exec(context, query,
		account.ID,
		account.FullName,
		account.Username,
		account.Bio,
		account.Major,
		account.Grade,
		languages,
		account.WantsEmails,
		account.ProfileSetupCompleted,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err, schema.UserAccountUsernameKey) {
			return auth.ErrDuplicateAccount.WithCause(err)
		}
		return fmt.Errorf("postgres_account_repo_update_profile_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// SetProfilePicture implements [Repository].
func (repository *PostgresRepository) SetProfilePicture(context context.Context, id, url string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.ProfilePicture, schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(context, query, id, url)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_set_picture_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// Recent implements [Repository].
func (repository *PostgresRepository) Recent(context context.Context, limit int) ([]*auth.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = 'active' ORDER BY %s DESC LIMIT $1`,
		auth.AccountSelect, schema.UserAccount.Table, schema.UserAccount.Status, schema.UserAccount.CreatedAt)

	return repository.findMany(context, "recent", query, limit)
}

// Search implements [Repository].
func (repository *PostgresRepository) Search(context context.Context, search string, limit int) ([]*auth.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = 'active' AND (%s ILIKE $1 OR %s ILIKE $1)
		ORDER BY %s ASC
		LIMIT $2`,
		auth.AccountSelect, schema.UserAccount.Table,
		schema.UserAccount.Status, schema.UserAccount.Username, schema.UserAccount.FullName,
		schema.UserAccount.Username,
	)

	return repository.findMany(context, "search", query, "%"+escapeLike(search)+"%", limit)
}

// # Helpers

func (repository *PostgresRepository) findOne(context context.Context, action, where string, argument any) (*auth.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, auth.AccountSelect, schema.UserAccount.Table, where)

	account, err := auth.ScanAccount(repository.pool.QueryRow(context, query, argument))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_account_repo_%s_failed: %w", action, err)
	}
	return account, nil
}

func (repository *PostgresRepository) findMany(context context.Context, action, query string, arguments ...any) ([]*auth.Account, error) {
	rows, err := repository.pool.Query(context, query, arguments...)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_%s_failed: %w", action, err)
	}
	defer rows.Close()

	accounts := make([]*auth.Account, 0)
	for rows.Next() {
		account, err := auth.ScanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_account_repo_%s_scan_failed: %w", action, err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_repo_%s_rows_failed: %w", action, err)
	}
	return accounts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(input string) string {
	return likeEscaper.Replace(input)
}
