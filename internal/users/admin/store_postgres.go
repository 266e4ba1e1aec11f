// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayneaws/studenthub/internal/platform/database/schema"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/users/auth"
	"github.com/wayneaws/studenthub/pkg/uuid"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Postgres implementation for moderation.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FindByID implements [Repository]. Malformed IDs are reported as not found.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*auth.Account, error) {
	if !uuid.Valid(id) {
		return nil, dberr.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, auth.AccountSelect, schema.UserAccount.Table, schema.UserAccount.ID)

	account, err := auth.ScanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "admin_find_account")
	}
	return account, nil
}

// FindByEmail implements [Repository]. email must already be lowercased.
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*auth.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, auth.AccountSelect, schema.UserAccount.Table, schema.UserAccount.Email)

	account, err := auth.ScanAccount(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "admin_find_account_by_email")
	}
	return account, nil
}

// Counts implements [Repository] with a single aggregate scan.
func (repository *PostgresRepository) Counts(context context.Context, since time.Time) (AccountCounts, error) {
	columns := schema.UserAccount
	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE %s = 'active'),
			COUNT(*) FILTER (WHERE %s = 'banned'),
			COUNT(*) FILTER (WHERE %s IN ('admin', 'superuser')),
			COUNT(*) FILTER (WHERE %s >= $1)
		FROM %s`,
		columns.Status, columns.Status, columns.Role, columns.CreatedAt, columns.Table,
	)

	var counts AccountCounts
	err := repository.pool.QueryRow(context, query, since).Scan(
		&counts.Total, &counts.Active, &counts.Banned, &counts.Admins, &counts.Recent,
	)
	if err != nil {
		return AccountCounts{}, dberr.Wrap(err, "admin_count_accounts")
	}
	return counts, nil
}

/*
List implements [Repository].

Description: Search matches username, full name or email case-insensitively.
The filter clause is shared by the page query and the count query.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*auth.Account: One page, newest first
  - int: Total matches
  - error: Database errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*auth.Account, int, error) {
	columns := schema.UserAccount
	conditions := []string{"TRUE"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		placeholder := "$" + strconv.Itoa(len(args))
		conditions = append(conditions, fmt.Sprintf(`(%s ILIKE %s OR %s ILIKE %s OR %s ILIKE %s)`,
			columns.Username, placeholder, columns.FullName, placeholder, columns.Email, placeholder))
	}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		conditions = append(conditions, fmt.Sprintf(`%s = $%d`, columns.Role, len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf(`%s = $%d`, columns.Status, len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, columns.Table, where)
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "admin_count_members")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		auth.AccountSelect, columns.Table, where, columns.CreatedAt, len(args)+1, len(args)+2)

	rows, err := repository.pool.Query(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "admin_list_members")
	}
	defer rows.Close()

	accounts := make([]*auth.Account, 0, limit)
	for rows.Next() {
		account, err := auth.ScanAccount(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "admin_scan_member")
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "admin_list_members_rows")
	}

	return accounts, total, nil
}

// SetRole implements [Repository].
func (repository *PostgresRepository) SetRole(context context.Context, id string, role sec.UserRole) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.Role, schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	return repository.execOne(context, "admin_set_role", query, id, string(role))
}

// Ban implements [Repository]. The moderator reference is cached by value.
func (repository *PostgresRepository) Ban(context context.Context, id string, actor auth.BanActor, reason string, at time.Time) error {
	columns := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = 'banned', %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1`,
		columns.Table,
		columns.Status, columns.BannedAt, columns.BannedByID, columns.BannedByUsername,
		columns.BannedByDisplayName, columns.BanReason, columns.UpdatedAt,
		columns.ID,
	)

	return repository.execOne(context, "admin_ban", query, id, at, actor.ID, actor.Username, actor.DisplayName, reason)
}

// Unban implements [Repository].
func (repository *PostgresRepository) Unban(context context.Context, id string) error {
	columns := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = 'active', %s = NULL, %s = NULL, %s = '', %s = '', %s = '', %s = NOW()
		WHERE %s = $1`,
		columns.Table,
		columns.Status, columns.BannedAt, columns.BannedByID, columns.BannedByUsername,
		columns.BannedByDisplayName, columns.BanReason, columns.UpdatedAt,
		columns.ID,
	)

	return repository.execOne(context, "admin_unban", query, id)
}

// Delete implements [Repository]. Refresh tokens go with the account via
// ON DELETE CASCADE.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserAccount.Table, schema.UserAccount.ID)
	return repository.execOne(context, "admin_delete", query, id)
}

func (repository *PostgresRepository) execOne(context context.Context, action, query string, arguments ...any) error {
	tag, err := repository.pool.Exec(context, query, arguments...)
	if err != nil {
		return dberr.Wrap(err, action)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(input string) string {
	return likeEscaper.Replace(input)
}
