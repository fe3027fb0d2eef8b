// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the PostgreSQL repositories behind the
// taxonomy, discussion, and ranking engines. Every store runs against a
// DBTX so the same query code serves both the pool and an open
// transaction; InTx hands the engines a transaction-bound copy.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"

	"alumnihub/internal/metrics"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgreSQL error codes the stores react to.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
)

// DefaultMaxRetries is used when a store is built with a non-positive
// retry budget.
const DefaultMaxRetries = 3

const retryBase = 20 * time.Millisecond

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// pgConstraint returns the constraint name of a PostgreSQL error, if any.
func pgConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// IsRetryable reports whether err is a serialization failure or deadlock
// that a fresh attempt of the same transaction may not hit.
func IsRetryable(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

// RunSerializable runs fn inside a SERIALIZABLE transaction and retries
// the whole unit of work, with jittered exponential backoff, when
// PostgreSQL aborts it with a serialization failure or deadlock. Any other
// error from fn rolls back and is returned as is.
func RunSerializable(ctx context.Context, db *sql.DB, maxRetries int, fn func(tx *sql.Tx) error) error {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	backoff := retry.WithMaxRetries(uint64(maxRetries),
		retry.WithJitterPercent(25, retry.NewExponential(retryBase)))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := runTx(ctx, db, fn)
		if err != nil && IsRetryable(err) {
			metrics.TxRetries.Inc()
			slog.Debug("serializable transaction conflict", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// uuidArray renders ids as a PostgreSQL array literal, to be bound as a
// single parameter and cast with ::uuid[].
func uuidArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
