package database

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/example/studybot/pkg/errs"
)

const (
	maxRetryAttempts = 3
	baseRetryDelay   = 50 * time.Millisecond
)

// wrapTransient classifies err, wrapping lock contention and timeouts
// as TransientStorageError so callers can retry. Other errors pass
// through unchanged.
func wrapTransient(op string, err error) error {
	if err == nil {
		return nil
	}
	if isRetryable(err) {
		return &errs.TransientStorageError{Op: op, Err: err}
	}
	return err
}

// isRetryable reports whether err is worth retrying: serialization
// failures and lock waits on postgres, busy/locked states on sqlite.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return true
		}
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// isUniqueViolation reports whether err is a unique constraint
// violation. Writers racing to claim the same key surface this; the
// caller decides whether the collision is retryable.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// WithRetry runs fn up to maxRetryAttempts times with exponential
// backoff, retrying only on transient storage failures. When the
// attempts are exhausted the last failure is surfaced as
// ServiceUnavailableError.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := baseRetryDelay
	for attempt := 0; attempt < maxRetryAttempts; attempt++ {
		if err = fn(); err == nil || !errs.IsTransient(err) {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return &errs.ServiceUnavailableError{Err: err}
}
