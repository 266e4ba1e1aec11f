// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package auth (Postgres) implements the credential store on PostgreSQL.

# Schema Table Mapping
  - users.account: Identity, moderation state, revocation epoch, reset code.
  - users.refreshtoken: One row per live device session (hash only).

# Error Mapping

pgx.ErrNoRows becomes dberr.ErrNotFound and unique violations become
ErrDuplicateAccount, so storage details never leak past the repository.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayneaws/studenthub/internal/platform/database/schema"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/platform/postgres"
	"github.com/wayneaws/studenthub/internal/platform/sec"
)

// # Row Mapping

// AccountSelect is the column list matching [ScanAccount].
var AccountSelect = schema.UserAccount.SelectList()

// ScanAccount hydrates an [Account] from a row selected with [AccountSelect].
// It accepts both pgx.Row and pgx.Rows.
func ScanAccount(row pgx.Row) (*Account, error) {
	var (
		account      Account
		externalID   *string
		bannedByID   *string
		bannedByName string
		bannedByDisp string
		role         string
		status       string
	)

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.PasswordHash,
		&account.Provider,
		&externalID,
		&role,
		&status,
		&account.BannedAt,
		&bannedByID,
		&bannedByName,
		&bannedByDisp,
		&account.BanReason,
		&account.TokenVersion,
		&account.ResetCodeHash,
		&account.ResetCodeExpiresAt,
		&account.Bio,
		&account.Major,
		&account.Grade,
		&account.ProgrammingLanguages,
		&account.ProfilePicture,
		&account.WantsEmails,
		&account.ProfileSetupCompleted,
		&account.LastLogin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Role = sec.UserRole(role)
	account.Status = Status(status)
	if externalID != nil {
		account.ExternalID = *externalID
	}
	if bannedByID != nil {
		account.BannedBy = &BanActor{ID: *bannedByID, Username: bannedByName, DisplayName: bannedByDisp}
	}
	if account.ProgrammingLanguages == nil {
		account.ProgrammingLanguages = []string{}
	}

	return &account, nil
}

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// FindByID implements [UserRepository].
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*Account, error) {
	return repository.findOne(context, "find_by_id", schema.UserAccount.ID+" = $1", id)
}

// FindByEmail implements [UserRepository].
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	return repository.findOne(context, "find_by_email", "LOWER("+schema.UserAccount.Email+") = LOWER($1)", email)
}

// FindByUsername implements [UserRepository].
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	return repository.findOne(context, "find_by_username", schema.UserAccount.Username+" = $1", username)
}

// FindByExternalID implements [UserRepository].
func (repository *PostgresUserRepository) FindByExternalID(context context.Context, externalID string) (*Account, error) {
	return repository.findOne(context, "find_by_external_id", schema.UserAccount.ExternalID+" = $1", externalID)
}

/*
UsernameTaken reports whether another account already uses username.

Parameters:
  - context: context.Context
  - username: string
  - excludeID: string

Returns:
  - bool: true when taken
  - error: Database errors
*/
func (repository *PostgresUserRepository) UsernameTaken(context context.Context, username, excludeID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s::text <> $2)`,
		schema.UserAccount.Table, schema.UserAccount.Username, schema.UserAccount.ID)

	var taken bool
	if err := repository.pool.QueryRow(context, query, username, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("postgres_user_repo_username_taken_failed: %w", err)
	}
	return taken, nil
}

/*
Create persists a new account into the users.account table.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: ErrDuplicateAccount on email/username/external id collision
*/
func (repository *PostgresUserRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.FullName, schema.UserAccount.Password, schema.UserAccount.Provider,
		schema.UserAccount.ExternalID, schema.UserAccount.Role, schema.UserAccount.Status,
		schema.UserAccount.ProgrammingLanguages, schema.UserAccount.ProfilePicture,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	languages := account.ProgrammingLanguages
	if languages == nil {
		languages = []string{}
	}

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Username,
		account.Email,
		account.FullName,
		account.PasswordHash,
		account.Provider,
		account.ExternalID,
		string(account.Role),
		string(account.Status),
		languages,
		account.ProfilePicture,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err, "") {
			return ErrDuplicateAccount.WithCause(err)
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// UpdatePassword implements [UserRepository].
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, id, passwordHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = '', %s = NULL, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.Password, schema.UserAccount.ResetCodeHash,
		schema.UserAccount.ResetCodeExpiresAt, schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	return repository.execOne(context, "update_password", query, id, passwordHash)
}

// SetResetCode implements [UserRepository].
func (repository *PostgresUserRepository) SetResetCode(context context.Context, id, codeHash string, expiresAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.ResetCodeHash, schema.UserAccount.ResetCodeExpiresAt,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	return repository.execOne(context, "set_reset_code", query, id, codeHash, expiresAt)
}

// TouchLastLogin implements [UserRepository].
func (repository *PostgresUserRepository) TouchLastLogin(context context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.LastLoginAt, schema.UserAccount.ID)

	return repository.execOne(context, "touch_last_login", query, id, at)
}

// LinkExternalID implements [UserRepository].
func (repository *PostgresUserRepository) LinkExternalID(context context.Context, id, externalID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.ExternalID, schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	err := repository.execOne(context, "link_external_id", query, id, externalID)
	if dberr.IsUniqueViolation(err, schema.UserAccountExternalIDKey) {
		return ErrDuplicateAccount.WithCause(err)
	}
	return err
}

func (repository *PostgresUserRepository) findOne(context context.Context, action, where string, argument any) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, AccountSelect, schema.UserAccount.Table, where)

	account, err := ScanAccount(repository.pool.QueryRow(context, query, argument))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_%s_failed: %w", action, err)
	}
	return account, nil
}

func (repository *PostgresUserRepository) execOne(context context.Context, action, query string, arguments ...any) error {
	tag, err := repository.pool.Exec(context, query, arguments...)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_%s_failed: %w", action, err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] using pgx.
//
// Every mutation of an account's token set first locks the account row, so
// concurrent logins, rotations and revocations of one account serialize.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of the SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

/*
Register inserts a refresh token, superseding the device's previous one and
trimming the account to the newest limit tokens.

Parameters:
  - context: context.Context
  - token: *RefreshToken
  - limit: int

Returns:
  - error: dberr.ErrNotFound for an unknown account, or database errors
*/
func (repository *PostgresSessionRepository) Register(context context.Context, token *RefreshToken, limit int) error {
	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		if err := lockAccount(context, tx, token.AccountID); err != nil {
			return err
		}
		return registerTx(context, tx, token, limit)
	})
}

/*
Rotate consumes the presented token and registers its replacement in one
transaction.

Description: The DELETE ... RETURNING is the single conditional update: of
two concurrent rotations of the same token only one sees the row.

Parameters:
  - context: context.Context
  - presentedHash: string
  - deviceID: string
  - next: *RefreshToken
  - limit: int

Returns:
  - error: ErrInvalidRefreshToken or database errors
*/
func (repository *PostgresSessionRepository) Rotate(context context.Context, presentedHash, deviceID string, next *RefreshToken, limit int) error {
	table := schema.UserRefreshToken

	var accountID string
	lookup := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		table.AccountID, table.Table, table.TokenHash, table.DeviceID)

	if err := repository.pool.QueryRow(context, lookup, presentedHash, deviceID).Scan(&accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidRefreshToken
		}
		return fmt.Errorf("postgres_session_repo_rotate_lookup_failed: %w", err)
	}

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		if err := lockAccount(context, tx, accountID); err != nil {
			if errors.Is(err, dberr.ErrNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}

		consume := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3 RETURNING %s`,
			table.Table, table.TokenHash, table.DeviceID, table.AccountID, table.ExpiresAt)

		var expiresAt time.Time
		if err := tx.QueryRow(context, consume, presentedHash, deviceID, accountID).Scan(&expiresAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidRefreshToken
			}
			return fmt.Errorf("postgres_session_repo_rotate_consume_failed: %w", err)
		}

		presented := RefreshToken{ExpiresAt: expiresAt}
		if presented.Expired(next.CreatedAt) {
			return ErrInvalidRefreshToken
		}

		next.AccountID = accountID
		next.DeviceID = deviceID
		return registerTx(context, tx, next, limit)
	})
}

// Delete implements [SessionRepository].
func (repository *PostgresSessionRepository) Delete(context context.Context, accountID, tokenHash string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.UserRefreshToken.Table, schema.UserRefreshToken.AccountID, schema.UserRefreshToken.TokenHash)

	if _, err := repository.pool.Exec(context, query, accountID, tokenHash); err != nil {
		return fmt.Errorf("postgres_session_repo_delete_failed: %w", err)
	}
	return nil
}

// DeleteDevice implements [SessionRepository].
func (repository *PostgresSessionRepository) DeleteDevice(context context.Context, accountID, deviceID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.UserRefreshToken.Table, schema.UserRefreshToken.AccountID, schema.UserRefreshToken.DeviceID)

	if _, err := repository.pool.Exec(context, query, accountID, deviceID); err != nil {
		return fmt.Errorf("postgres_session_repo_delete_device_failed: %w", err)
	}
	return nil
}

/*
RevokeAll bumps the revocation epoch and clears every token of the account
in one transaction.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - int: The new epoch
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, accountID string) (int, error) {
	var epoch int

	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		bump := fmt.Sprintf(`UPDATE %s SET %s = %s + 1, %s = NOW() WHERE %s = $1 RETURNING %s`,
			schema.UserAccount.Table, schema.UserAccount.TokenVersion, schema.UserAccount.TokenVersion,
			schema.UserAccount.UpdatedAt, schema.UserAccount.ID, schema.UserAccount.TokenVersion)

		if err := tx.QueryRow(context, bump, accountID).Scan(&epoch); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return dberr.ErrNotFound
			}
			return fmt.Errorf("postgres_session_repo_bump_epoch_failed: %w", err)
		}

		purge := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
			schema.UserRefreshToken.Table, schema.UserRefreshToken.AccountID)

		if _, err := tx.Exec(context, purge, accountID); err != nil {
			return fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err)
		}
		return nil
	})

	return epoch, err
}

// List implements [SessionRepository].
func (repository *PostgresSessionRepository) List(context context.Context, accountID string, now time.Time) ([]RefreshToken, error) {
	table := schema.UserRefreshToken
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s > $2
		ORDER BY %s DESC`,
		table.TokenHash, table.AccountID, table.DeviceID, table.CreatedAt, table.ExpiresAt,
		table.Table, table.AccountID, table.ExpiresAt, table.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, accountID, now)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_failed: %w", err)
	}
	defer rows.Close()

	tokens := make([]RefreshToken, 0)
	for rows.Next() {
		var token RefreshToken
		if err := rows.Scan(&token.TokenHash, &token.AccountID, &token.DeviceID, &token.CreatedAt, &token.ExpiresAt); err != nil {
			return nil, fmt.Errorf("postgres_session_repo_list_scan_failed: %w", err)
		}
		tokens = append(tokens, token)
	}

	return tokens, rows.Err()
}

// DeleteExpired implements [SessionRepository].
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`,
		schema.UserRefreshToken.Table, schema.UserRefreshToken.ExpiresAt)

	tag, err := repository.pool.Exec(context, query, now)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// # Transaction Helpers

// lockAccount takes the row lock that serializes token-set mutations.
func lockAccount(context context.Context, tx pgx.Tx, accountID string) error {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.UserAccount.Table, schema.UserAccount.ID)

	var one int
	if err := tx.QueryRow(context, query, accountID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dberr.ErrNotFound
		}
		return fmt.Errorf("postgres_session_repo_lock_failed: %w", err)
	}
	return nil
}

// registerTx applies device supersession, the expiry sweep, the insert and
// the cap. The caller holds the account lock.
func registerTx(context context.Context, tx pgx.Tx, token *RefreshToken, limit int) error {
	table := schema.UserRefreshToken

	sweep := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND (%s = $2 OR %s <= $3)`,
		table.Table, table.AccountID, table.DeviceID, table.ExpiresAt)
	if _, err := tx.Exec(context, sweep, token.AccountID, token.DeviceID, token.CreatedAt); err != nil {
		return fmt.Errorf("postgres_session_repo_sweep_failed: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		table.Table, table.TokenHash, table.AccountID, table.DeviceID, table.CreatedAt, table.ExpiresAt)
	if _, err := tx.Exec(context, insert, token.TokenHash, token.AccountID, token.DeviceID, token.CreatedAt, token.ExpiresAt); err != nil {
		return fmt.Errorf("postgres_session_repo_insert_failed: %w", err)
	}

	trim := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s IN (
			SELECT %s FROM %s
			WHERE %s = $1
			ORDER BY %s DESC, %s DESC
			OFFSET $2
		)`,
		table.Table, table.TokenHash,
		table.TokenHash, table.Table, table.AccountID,
		table.CreatedAt, table.TokenHash,
	)
	if _, err := tx.Exec(context, trim, token.AccountID, limit); err != nil {
		return fmt.Errorf("postgres_session_repo_trim_failed: %w", err)
	}

	return nil
}
