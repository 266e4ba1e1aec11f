// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package newsletter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayneaws/studenthub/internal/platform/database/schema"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on newsletter.subscriber.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Postgres subscription store.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Subscribe implements [Repository] with a single upsert.

Description: The conflict branch only fires for inactive rows, so an active
subscriber yields no returned row. xmax = 0 identifies a fresh insert.
*/
func (repository *PostgresRepository) Subscribe(context context.Context, email string, at time.Time) (Outcome, error) {
	table := schema.NewsletterSubscriber
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s)
		VALUES ($1, TRUE, $2, NULL)
		ON CONFLICT (%[2]s) DO UPDATE
			SET %[3]s = TRUE, %[4]s = EXCLUDED.%[4]s, %[5]s = NULL
			WHERE %[1]s.%[3]s = FALSE
		RETURNING (xmax = 0)`,
		table.Table, table.Email, table.IsActive, table.SubscribedAt, table.UnsubscribedAt,
	)

	var inserted bool
	if err := repository.pool.QueryRow(context, query, email, at).Scan(&inserted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAlreadySubscribed
		}
		return 0, dberr.Wrap(err, "newsletter_subscribe")
	}

	if inserted {
		return OutcomeSubscribed, nil
	}
	return OutcomeReactivated, nil
}

// Unsubscribe implements [Repository].
func (repository *PostgresRepository) Unsubscribe(context context.Context, email string, at time.Time) error {
	table := schema.NewsletterSubscriber
	query := fmt.Sprintf(`UPDATE %s SET %s = FALSE, %s = $2 WHERE %s = $1`,
		table.Table, table.IsActive, table.UnsubscribedAt, table.Email)

	tag, err := repository.pool.Exec(context, query, email, at)
	if err != nil {
		return dberr.Wrap(err, "newsletter_unsubscribe")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// ListActive implements [Repository].
func (repository *PostgresRepository) ListActive(context context.Context) ([]Subscriber, error) {
	table := schema.NewsletterSubscriber
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s ORDER BY %s DESC`,
		table.Email, table.IsActive, table.SubscribedAt, table.UnsubscribedAt,
		table.Table, table.IsActive, table.SubscribedAt)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "newsletter_list_active")
	}

	subscribers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Subscriber, error) {
		var subscriber Subscriber
		err := row.Scan(&subscriber.Email, &subscriber.IsActive, &subscriber.SubscribedAt, &subscriber.UnsubscribedAt)
		return subscriber, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "newsletter_scan_subscriber")
	}
	return subscribers, nil
}

// CountActive implements [Repository].
func (repository *PostgresRepository) CountActive(context context.Context) (int, error) {
	table := schema.NewsletterSubscriber
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table.Table, table.IsActive)

	var count int
	if err := repository.pool.QueryRow(context, query).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "newsletter_count_active")
	}
	return count, nil
}
