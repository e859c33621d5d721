// Package pool provides the database connection pool sessions acquire their
// connection from.
package pool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/javaito/PostgresStorageLayer/internal/debug"
)

// Pool manages database connections with lifecycle management.
type Pool struct {
	db     *sql.DB
	config Config

	mu              sync.RWMutex
	acquired        int64
	released        int64
	failedChecks    int64
	lastHealthCheck time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New opens a connection pool. No connection is established until Warm or
// Acquire is called.
func New(config Config) (*Pool, error) {
	driver := DriverName(config.Driver)
	if driver == "" {
		return nil, fmt.Errorf("unsupported driver: %s", config.Driver)
	}
	dsn, err := config.DataSourceName()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewFromDB(db, config), nil
}

// NewFromDB wraps an already opened database.
func NewFromDB(db *sql.DB, config Config) *Pool {
	db.SetMaxOpenConns(config.MaxConnections)
	db.SetMaxIdleConns(max(config.InitialConnections, config.MaxConnections))
	db.SetConnMaxLifetime(config.MaxLifetime)
	db.SetConnMaxIdleTime(config.IdleTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		db:     db,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}

	if config.HealthCheckInterval > 0 {
		p.wg.Add(1)
		go p.healthCheckLoop()
	}
	return p
}

// DB returns the underlying *sql.DB.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Config returns the configuration the pool was built with.
func (p *Pool) Config() Config {
	return p.config
}

// Warm opens InitialConnections connections (bounded by MaxConnections) and
// returns them to the pool, failing if any of them cannot be established.
func (p *Pool) Warm(ctx context.Context) error {
	n := p.config.InitialConnections
	if p.config.MaxConnections > 0 {
		n = min(n, p.config.MaxConnections)
	}
	if n < 1 {
		n = 1
	}

	conns := make([]*sql.Conn, 0, n)
	var err error
	for range n {
		var conn *sql.Conn
		conn, err = p.Acquire(ctx)
		if err != nil {
			break
		}
		conns = append(conns, conn)
	}
	for _, conn := range conns {
		err = errors.Join(err, p.Release(conn))
	}
	return err
}

// Acquire takes one connection out of the pool.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return conn, nil
}

// Release returns conn to the pool.
func (p *Pool) Release(conn *sql.Conn) error {
	if err := conn.Close(); err != nil {
		return err
	}
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
	return nil
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	dbStats := p.db.Stats()

	return PoolStats{
		MaxOpenConnections: p.config.MaxConnections,
		OpenConnections:    dbStats.OpenConnections,
		InUse:              dbStats.InUse,
		Idle:               dbStats.Idle,
		WaitCount:          dbStats.WaitCount,
		WaitDuration:       dbStats.WaitDuration,
		MaxIdleTimeClosed:  dbStats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  dbStats.MaxLifetimeClosed,
		Acquired:           p.acquired,
		Released:           p.released,
		FailedHealthChecks: p.failedChecks,
		LastHealthCheck:    p.lastHealthCheck,
	}
}

// PoolStats represents pool statistics.
type PoolStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
	MaxIdleTimeClosed  int64
	MaxLifetimeClosed  int64
	Acquired           int64
	Released           int64
	FailedHealthChecks int64
	LastHealthCheck    time.Time
}

// HealthCheck performs a health check on the connection pool.
func (p *Pool) HealthCheck(ctx context.Context) error {
	p.mu.Lock()
	p.lastHealthCheck = time.Now()
	p.mu.Unlock()

	if err := p.db.PingContext(ctx); err != nil {
		p.mu.Lock()
		p.failedChecks++
		p.mu.Unlock()
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

func (p *Pool) healthCheckLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
			if err := p.HealthCheck(ctx); err != nil {
				debug.Warn("pool health check failed", "error", err)
			}
			cancel()
		}
	}
}

// Close closes the pool and waits for background routines to finish.
func (p *Pool) Close() error {
	p.cancel()
	p.wg.Wait()
	return p.db.Close()
}
