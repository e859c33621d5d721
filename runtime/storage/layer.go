// Package storage runs compiled queries inside transactional sessions.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/javaito/PostgresStorageLayer/internal/config"
	"github.com/javaito/PostgresStorageLayer/internal/debug"
	"github.com/javaito/PostgresStorageLayer/query/normalize"
	"github.com/javaito/PostgresStorageLayer/query/sqlgen"
	"github.com/javaito/PostgresStorageLayer/runtime/pool"
)

const (
	defaultLayerTag     = "Postgres"
	defaultStatementTag = "pgDB"
)

// Layer is the entry point of the storage layer. It owns a connection pool
// that is constructed on first use and opens sessions on it.
type Layer struct {
	config   pool.Config
	compiler *sqlgen.Compiler
	open     func(pool.Config) (*pool.Pool, error)

	layerTag     string
	statementTag string
	validate     bool
	log          *slog.Logger

	mu sync.Mutex
	// pool is set once construction succeeded.
	pool atomic.Pointer[pool.Pool]
}

// Option configures a Layer.
type Option func(*Layer)

// WithLogTags sets the tag of lifecycle records and of statement records.
func WithLogTags(layer, statement string) Option {
	return func(l *Layer) {
		if layer != "" {
			l.layerTag = layer
		}
		if statement != "" {
			l.statementTag = statement
		}
	}
}

// WithStatementValidation parses every statement with the PostgreSQL parser
// before executing it. It only applies to dialects with numbered
// placeholders.
func WithStatementValidation(enabled bool) Option {
	return func(l *Layer) { l.validate = enabled }
}

// WithPoolFactory replaces the function that constructs the pool.
func WithPoolFactory(open func(pool.Config) (*pool.Pool, error)) Option {
	return func(l *Layer) { l.open = open }
}

// NewLayer creates a layer. No connection is made until the first Begin.
func NewLayer(cfg pool.Config, compiler *sqlgen.Compiler, opts ...Option) *Layer {
	if compiler == nil {
		compiler = sqlgen.NewCompiler(sqlgen.DialectFor(cfg.Driver), nil)
	}
	l := &Layer{
		config:       cfg,
		compiler:     compiler,
		open:         pool.New,
		layerTag:     defaultLayerTag,
		statementTag: defaultStatementTag,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = debug.For(l.layerTag)
	return l
}

// NewLayerFromConfig creates a layer from loaded properties: the dialect
// follows the driver, with the configured reserved word overrides.
func NewLayerFromConfig(cfg *config.Config, n normalize.Normalizer) (*Layer, error) {
	dialect, err := sqlgen.DialectFor(cfg.Pool.Driver).WithOverrides(cfg.Reserved)
	if err != nil {
		return nil, fmt.Errorf("invalid reserved words: %w", err)
	}
	if cfg.Debug {
		debug.Init(true)
	}
	return NewLayer(cfg.Pool, sqlgen.NewCompiler(dialect, n),
		WithLogTags(cfg.LayerTag, cfg.StatementTag),
		WithStatementValidation(cfg.ValidateStatements),
	), nil
}

// Compiler returns the statement compiler of the layer.
func (l *Layer) Compiler() *sqlgen.Compiler { return l.compiler }

// Pool returns the connection pool, constructing and warming it on the
// first call. Concurrent first callers wait for the construction; a failed
// construction is not kept and the next caller retries.
func (l *Layer) Pool(ctx context.Context) (*pool.Pool, error) {
	if p := l.pool.Load(); p != nil {
		return p, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if p := l.pool.Load(); p != nil {
		return p, nil
	}

	p, err := l.open(l.config)
	if err != nil {
		return nil, err
	}
	if err := p.Warm(ctx); err != nil {
		p.Close()
		return nil, err
	}
	l.log.Debug("connection pool created",
		"driver", l.config.Driver,
		"max_connections", l.config.MaxConnections,
		"initial_connections", l.config.InitialConnections)

	l.pool.Store(p)
	return p, nil
}

// Begin opens a session on a pooled connection with a new transaction.
func (l *Layer) Begin(ctx context.Context) (*Session, error) {
	p, err := l.Pool(ctx)
	if err != nil {
		l.log.Error(msgCreateConnection, "error", err)
		return nil, connectionError(msgCreateConnection, err)
	}
	return newSession(ctx, l, p)
}

// Close closes the pool if it was constructed.
func (l *Layer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.pool.Swap(nil)
	if p == nil {
		return nil
	}
	return p.Close()
}
