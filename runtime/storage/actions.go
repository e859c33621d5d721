package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/javaito/PostgresStorageLayer/internal/sqlcheck"
	"github.com/javaito/PostgresStorageLayer/query/ast"
	"github.com/javaito/PostgresStorageLayer/query/binder"
	"github.com/javaito/PostgresStorageLayer/query/mapper"
	"github.com/javaito/PostgresStorageLayer/query/sqlgen"
)

const (
	actionSelect = "select"
	actionUpdate = "update"
	actionInsert = "insert"
)

// prepared is a compiled statement with its bound arguments.
type prepared struct {
	action   string
	resource string
	stmt     *sqlgen.Statement
	args     []any
}

// prepare compiles and binds a statement. Compilation failures are returned
// without touching the session state; binding failures are captured.
func (s *Session) prepare(
	action, resource string,
	kind sqlcheck.StatementType,
	compile func() (*sqlgen.Statement, error),
	bind func() ([]any, error),
) (*prepared, error) {
	if s.state == StateClosed {
		return nil, ErrSessionClosed
	}

	stmt, err := compile()
	if err != nil {
		return nil, s.fail(action, resource, "", sqlgen.ErrCompilation, err, false)
	}
	if s.layer.validate && s.layer.compiler.Words().NumberedPlaceholders {
		if err := sqlcheck.Validate(stmt.SQL, kind); err != nil {
			return nil, s.fail(action, resource, stmt.SQL, sqlgen.ErrCompilation, err, false)
		}
	}

	args, err := bind()
	if err == nil {
		err = binder.Check(stmt, args)
	}
	if err != nil {
		return nil, s.fail(action, resource, stmt.SQL, binder.ErrBinding, err, true)
	}

	s.stmtLog.Debug("executing statement", "action", action, "sql", stmt.SQL, "args", len(args))
	return &prepared{action: action, resource: resource, stmt: stmt, args: args}, nil
}

func (s *Session) fail(action, resource, query string, kind, cause error, capture bool) error {
	err := &AccessError{
		Action:   action,
		Resource: resource,
		SQL:      query,
		Kind:     kind,
		Cause:    cause,
	}
	if capture {
		s.OnError(err)
	}
	return err
}

// query runs a prepared SELECT and hands the cursor to materialize.
func (s *Session) query(ctx context.Context, p *prepared, materialize func(*sql.Rows) error) error {
	rows, err := s.tx.QueryContext(ctx, p.stmt.SQL, p.args...)
	if err == nil {
		err = materialize(rows)
		if closeErr := rows.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return s.fail(p.action, p.resource, p.stmt.SQL, ErrExecution, err, true)
	}
	return nil
}

// exec runs a prepared UPDATE or INSERT and returns the affected row count.
func (s *Session) exec(ctx context.Context, p *prepared) (int64, error) {
	res, err := s.tx.ExecContext(ctx, p.stmt.SQL, p.args...)
	var n int64
	if err == nil {
		n, err = res.RowsAffected()
	}
	if err != nil {
		return 0, s.fail(p.action, p.resource, p.stmt.SQL, ErrExecution, err, true)
	}
	return n, nil
}

func resourceOf(q *ast.Query) string {
	if q == nil {
		return ""
	}
	return q.Resource
}

// SelectAction reads a query's rows.
type SelectAction struct {
	s *Session
	q *ast.Query
}

// Select creates a select action for q.
func (s *Session) Select(q *ast.Query) *SelectAction {
	return &SelectAction{s: s, q: q}
}

func (a *SelectAction) prepare(params []any) (*prepared, error) {
	c := a.s.layer.compiler
	return a.s.prepare(actionSelect, resourceOf(a.q), sqlcheck.SelectStatement,
		func() (*sqlgen.Statement, error) { return c.Select(a.q, params...) },
		func() ([]any, error) {
			args, _, err := binder.Where(nil, 1, a.q.Predicate(), params...)
			return args, err
		})
}

func (a *SelectAction) attribution() mapper.Attribution {
	n := a.s.layer.compiler.Normalizer()
	return mapper.Attribution{Table: n.Resource(a.q.Resource), Normalizer: n}
}

// Execute runs the query and returns its rows as generic records. params
// resolve the query's ast.Param values.
func (a *SelectAction) Execute(ctx context.Context, params ...any) ([]*mapper.Record, error) {
	start := time.Now()
	var out []*mapper.Record
	p, err := a.prepare(params)
	if err == nil {
		err = a.s.query(ctx, p, func(rows *sql.Rows) error {
			var err error
			out, err = mapper.Records(rows, a.attribution())
			return err
		})
	}
	sampleStatement(actionSelect, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SelectInto runs q in s and materializes every row as a T.
func SelectInto[T any](ctx context.Context, s *Session, q *ast.Query, target *mapper.Target[T], params ...any) ([]*T, error) {
	start := time.Now()
	a := s.Select(q)
	var out []*T
	p, err := a.prepare(params)
	if err == nil {
		err = s.query(ctx, p, func(rows *sql.Rows) error {
			var err error
			out, err = mapper.Into(rows, a.attribution(), target)
			return err
		})
	}
	sampleStatement(actionSelect, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAction writes values to the rows matched by a query.
type UpdateAction struct {
	s        *Session
	q        *ast.Query
	values   *ast.Values
	resource string
}

// Update creates an update action. The query's predicate is mandatory.
func (s *Session) Update(q *ast.Query, values *ast.Values) *UpdateAction {
	return &UpdateAction{s: s, q: q, values: values}
}

// Resource updates name instead of the query's resource.
func (a *UpdateAction) Resource(name string) *UpdateAction {
	a.resource = name
	return a
}

func (a *UpdateAction) query() *ast.Query {
	if a.q == nil || a.resource == "" {
		return a.q
	}
	q := *a.q
	q.Resource = a.resource
	return &q
}

// Execute runs the update and returns the number of affected rows.
func (a *UpdateAction) Execute(ctx context.Context, params ...any) (int64, error) {
	start := time.Now()
	q := a.query()
	c := a.s.layer.compiler
	p, err := a.s.prepare(actionUpdate, resourceOf(q), sqlcheck.UpdateStatement,
		func() (*sqlgen.Statement, error) { return c.Update(q, a.values, params...) },
		func() ([]any, error) {
			args, next, err := binder.Values(nil, 1, a.values)
			if err != nil {
				return nil, err
			}
			args, _, err = binder.Where(args, next, q.Predicate(), params...)
			return args, err
		})
	var n int64
	if err == nil {
		n, err = a.s.exec(ctx, p)
	}
	sampleStatement(actionUpdate, time.Since(start), err)
	return n, err
}

// InsertAction writes one row.
type InsertAction struct {
	s        *Session
	resource string
	values   *ast.Values
}

// Insert creates an insert action of values into resource.
func (s *Session) Insert(resource string, values *ast.Values) *InsertAction {
	return &InsertAction{s: s, resource: resource, values: values}
}

// Execute runs the insert and returns the number of affected rows.
func (a *InsertAction) Execute(ctx context.Context) (int64, error) {
	start := time.Now()
	c := a.s.layer.compiler
	p, err := a.s.prepare(actionInsert, a.resource, sqlcheck.InsertStatement,
		func() (*sqlgen.Statement, error) { return c.Insert(a.resource, a.values) },
		func() ([]any, error) {
			args, _, err := binder.Values(nil, 1, a.values)
			return args, err
		})
	var n int64
	if err == nil {
		n, err = a.s.exec(ctx, p)
	}
	sampleStatement(actionInsert, time.Since(start), err)
	return n, err
}
