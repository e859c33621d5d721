package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Error kinds. Compilation and binding failures carry the kinds of their
// packages (sqlgen.ErrCompilation, binder.ErrBinding).
var (
	// ErrExecution is the kind of statement execution and materialization failures.
	ErrExecution = errors.New("statement execution failed")

	// ErrConnection is the kind of connection acquire and release failures.
	ErrConnection = errors.New("connection lifecycle failure")

	// ErrSessionClosed is returned by every operation on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

const (
	msgCreateConnection = "unable to create connection"
	msgCloseConnection  = "unable to close connection"
	msgRollback         = "Rollback operation by session error"
)

// AccessError is returned by every failed action.
type AccessError struct {
	Action   string
	Resource string
	SQL      string
	Kind     error
	Cause    error
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	return fmt.Sprintf("%s on %s: %v: %v", e.Action, e.Resource, e.Kind, e.Cause)
}

// Unwrap returns the underlying error.
func (e *AccessError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind of the error.
func (e *AccessError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func connectionError(msg string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrConnection, msg, cause)
}

// SQLState returns the SQLSTATE code of a PostgreSQL error raised by lib/pq
// or pgx, or "" when err carries none.
func SQLState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
