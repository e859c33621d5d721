// Package sqlcheck validates generated statements with the PostgreSQL parser
// before they are sent to the server.
package sqlcheck

import (
	"errors"
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// StatementType is the kind of a parsed statement
type StatementType int

const (
	// UnknownStatement is any statement not listed below.
	UnknownStatement StatementType = iota
	// SelectStatement is a SELECT.
	SelectStatement
	// InsertStatement is an INSERT.
	InsertStatement
	// UpdateStatement is an UPDATE.
	UpdateStatement
	// DeleteStatement is a DELETE.
	DeleteStatement
)

func (t StatementType) String() string {
	switch t {
	case SelectStatement:
		return "SELECT"
	case InsertStatement:
		return "INSERT"
	case UpdateStatement:
		return "UPDATE"
	case DeleteStatement:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// ErrInvalidStatement is returned for statements the parser rejects or that
// are not a single statement of the expected type.
var ErrInvalidStatement = errors.New("invalid statement")

// Type parses sql and returns the type of its single statement.
func Type(sql string) (StatementType, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return UnknownStatement, fmt.Errorf("%w: %v", ErrInvalidStatement, err)
	}
	if len(result.Stmts) != 1 {
		return UnknownStatement, fmt.Errorf("%w: expected one statement, found %d", ErrInvalidStatement, len(result.Stmts))
	}

	switch result.Stmts[0].Stmt.Node.(type) {
	case *pg_query.Node_SelectStmt:
		return SelectStatement, nil
	case *pg_query.Node_InsertStmt:
		return InsertStatement, nil
	case *pg_query.Node_UpdateStmt:
		return UpdateStatement, nil
	case *pg_query.Node_DeleteStmt:
		return DeleteStatement, nil
	default:
		return UnknownStatement, nil
	}
}

// Validate fails unless sql is exactly one statement of type want.
func Validate(sql string, want StatementType) error {
	got, err := Type(sql)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: expected %s, found %s", ErrInvalidStatement, want, got)
	}
	return nil
}
