package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/javaito/PostgresStorageLayer/internal/debug"
)

// State is the lifecycle state of a Session.
type State int

const (
	// StateOpen is a session with no captured error.
	StateOpen State = iota
	// StateErrored is a session that captured an error and will roll back.
	StateErrored
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateErrored:
		return "errored"
	default:
		return "closed"
	}
}

// Step names one cleanup step performed by Close.
type Step string

const (
	// StepCommit commits a session without a captured error.
	StepCommit Step = "commit"
	// StepRollback rolls back a session with a captured error.
	StepRollback Step = "rollback"
	// StepRelease returns the connection to the pool.
	StepRelease Step = "release"
)

// StepResult is the outcome of one cleanup step.
type StepResult struct {
	Step Step
	Err  error
}

// CloseReport records what Close did.
type CloseReport struct {
	Session uuid.UUID
	// Cause is the captured error that forced the rollback, if any.
	Cause error
	Steps []StepResult
}

func (r *CloseReport) add(step Step, err error) {
	r.Steps = append(r.Steps, StepResult{Step: step, Err: err})
}

// Err returns the error of step, nil when the step succeeded or did not run.
func (r *CloseReport) Err(step Step) error {
	for _, s := range r.Steps {
		if s.Step == step {
			return s.Err
		}
	}
	return nil
}

// Ran reports whether step was attempted.
func (r *CloseReport) Ran(step Step) bool {
	for _, s := range r.Steps {
		if s.Step == step {
			return true
		}
	}
	return false
}

// Outcome is "rollback" when a captured error forced a rollback and
// "commit" otherwise.
func (r *CloseReport) Outcome() string {
	if r.Cause != nil {
		return string(StepRollback)
	}
	return string(StepCommit)
}

// Failed reports whether any step failed.
func (r *CloseReport) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// conns is the pool capability a session needs.
type conns interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
	Release(conn *sql.Conn) error
}

// Session owns one pooled connection and one transaction. Whether the
// transaction commits is decided at Close by the first captured error.
// A Session is not safe for concurrent use.
type Session struct {
	id    uuid.UUID
	layer *Layer
	pool  conns
	conn  *sql.Conn
	tx    *sql.Tx

	state  State
	err    error
	report *CloseReport

	log     *slog.Logger
	stmtLog *slog.Logger
}

func newSession(ctx context.Context, l *Layer, p conns) (*Session, error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, connectionError(msgCreateConnection, err)
	}
	// The transaction outlives ctx: only Close ends it.
	tx, err := conn.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, connectionError(msgCreateConnection, errors.Join(err, p.Release(conn)))
	}

	id := uuid.New()
	s := &Session{
		id:      id,
		layer:   l,
		pool:    p,
		conn:    conn,
		tx:      tx,
		log:     debug.For(l.layerTag).With("session", id.String()),
		stmtLog: debug.For(l.statementTag).With("session", id.String()),
	}
	s.log.Debug("session opened")
	return s, nil
}

// ID returns the session identifier carried by its log records.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Err returns the captured error.
func (s *Session) Err() error { return s.err }

// Report returns what Close did, nil before Close.
func (s *Session) Report() *CloseReport { return s.report }

// OnError captures err. Only the first error is kept; it makes Close roll
// back instead of commit.
func (s *Session) OnError(err error) {
	if err == nil || s.state == StateClosed || s.err != nil {
		return
	}
	s.err = err
	s.state = StateErrored
}

// Close ends the transaction and releases the connection. Without a
// captured error the transaction is committed, otherwise it is rolled back.
// Commit and rollback failures are logged and recorded in the report; only
// a release failure is returned.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return ErrSessionClosed
	}

	report := &CloseReport{Session: s.id, Cause: s.err}
	if s.err == nil {
		report.add(StepCommit, s.tx.Commit())
	} else {
		report.add(StepRollback, s.tx.Rollback())
		s.log.Warn(msgRollback, "error", s.err)
	}
	report.add(StepRelease, s.pool.Release(s.conn))

	s.state = StateClosed
	s.report = report
	sampleSession(report)

	for _, step := range report.Steps {
		switch {
		case step.Err == nil:
			continue
		case step.Step == StepRelease:
			s.log.Error(msgCloseConnection, "error", step.Err)
			return connectionError(msgCloseConnection, step.Err)
		default:
			s.log.Warn("session cleanup step failed", "step", step.Step, "error", step.Err)
		}
	}
	s.log.Debug("session closed", "outcome", report.Outcome())
	return nil
}
