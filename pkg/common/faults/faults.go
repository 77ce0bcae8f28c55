package faults

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ValidationError marks malformed input: a failed field validator, a bad
// identifier checksum, an unknown enum value. Recovered per record.
type ValidationError struct {
	Field  string
	reason error
}

func NewValidation(field string, reason error) ValidationError {
	return ValidationError{Field: field, reason: reason}
}

func Validationf(field, format string, args ...interface{}) ValidationError {
	return ValidationError{Field: field, reason: fmt.Errorf(format, args...)}
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.reason.Error()
	}
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// NotFoundError carries the identifier of the missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFound(entity, id string) NotFoundError {
	return NotFoundError{Entity: entity, ID: id}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// ConflictError covers cross-reference mismatches and uniqueness violations.
type ConflictError struct {
	reason error
}

func NewConflict(reason error) ConflictError {
	return ConflictError{reason: reason}
}

func Conflictf(format string, args ...interface{}) ConflictError {
	return ConflictError{reason: fmt.Errorf(format, args...)}
}

func (e ConflictError) Error() string {
	return e.reason.Error()
}

func (e ConflictError) Unwrap() error {
	return e.reason
}

func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// DeadlockError wraps transient database contention so callers can retry.
type DeadlockError struct {
	reason error
}

func (e DeadlockError) Error() string {
	return "transient database contention: " + e.reason.Error()
}

func (e DeadlockError) Unwrap() error {
	return e.reason
}

func IsDeadlock(err error) bool {
	var de DeadlockError
	return errors.As(err, &de)
}

const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
	sqlstateUniqueViolation      = "23505"
)

// ClassifyPG maps Postgres SQLSTATEs onto the taxonomy. Deadlocks and
// serialization failures become DeadlockError, unique violations become
// ConflictError, anything else passes through untouched.
func ClassifyPG(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlstateDeadlockDetected, sqlstateSerializationFailure:
		return DeadlockError{reason: err}
	case sqlstateUniqueViolation:
		return ConflictError{reason: fmt.Errorf("uniqueness violation on %s: %w", pgErr.ConstraintName, err)}
	default:
		return err
	}
}
