package errs

import (
	"errors"
	"fmt"
)

// NotFoundError indicates that a referenced entity does not exist.
// It is the caller's fault and is never retried.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// IntegrityError indicates malformed input or a reference mismatch,
// such as an option that does not belong to the submitted question.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "integrity violation: " + e.Reason
}

// QuotaExceededError indicates that a student has used up all allowed
// attempts for a quiz. A business rule violation, not a system fault.
type QuotaExceededError struct {
	StudentID int64
	QuizID    int64
	Allowed   int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("student %d exhausted %d allowed attempts for quiz %d", e.StudentID, e.Allowed, e.QuizID)
}

// InvalidQuizError indicates a quiz that cannot be scored, e.g. one
// whose questions carry zero total weight.
type InvalidQuizError struct {
	QuizID int64
	Reason string
}

func (e *InvalidQuizError) Error() string {
	return fmt.Sprintf("quiz %d cannot be scored: %s", e.QuizID, e.Reason)
}

// TransientStorageError wraps lock contention and storage timeouts.
// These are retried internally before being surfaced.
type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("transient storage failure during %s: %v", e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error { return e.Err }

// ServiceUnavailableError is surfaced after retries on a transient
// storage failure are exhausted.
type ServiceUnavailableError struct {
	Err error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("service unavailable: %v", e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a transient storage failure that
// may succeed on retry.
func IsTransient(err error) bool {
	var te *TransientStorageError
	return errors.As(err, &te)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
