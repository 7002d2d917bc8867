// Package database builds the sqlx handle the store layer runs on.  The
// driver is pgx (database/sql adapter) talking to Supabase Postgres with
// the service-role credential.
//
// Public entry points:
//
//	NewFactory(cfg)   validates configuration eagerly, connects lazily.
//	FromDB(db)        wraps an existing handle (tests, sqlmock).
//
// Handlers call Factory.Handle on every request.  A configuration problem
// surfaces as ErrConfig there, which the API layer turns into a 500 with a
// log hint instead of taking the whole process down.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/ispora/ispora-api/internal/config"
)

// DriverName is the sqlx driver name; sqlx maps it to $n bind variables.
const DriverName = "pgx"

// supavisorTxPort is the Supabase transaction-pooler port.  The pooler
// does not support prepared statements.
const supavisorTxPort = 6543

// defaultConnectTimeout bounds the shared first connect when
// database.query_timeout is unset.
const defaultConnectTimeout = 10 * time.Second

// ErrConfig marks missing or malformed database settings.
var ErrConfig = errors.New("database configuration error")

// Factory hands out one shared pool.
//
// The first connect runs once in a singleflight call, outside mu.  Every
// caller waits on its own context, so a blackholed database costs each
// request at most its own deadline instead of a queue of pings.
type Factory struct {
	cfg    config.Database
	pgxCfg *pgx.ConnConfig
	cfgErr error

	connect func(context.Context) (*sqlx.DB, error)
	dial    singleflight.Group

	mu sync.RWMutex
	db *sqlx.DB
}

// NewFactory parses and validates cfg immediately.  The returned Factory
// is always usable; Err reports the validation result.
func NewFactory(cfg config.Database) *Factory {
	f := &Factory{cfg: cfg}
	f.pgxCfg, f.cfgErr = parse(cfg)
	f.connect = f.open
	return f
}

// FromDB wraps an already-open handle.
func FromDB(db *sqlx.DB) *Factory {
	return &Factory{db: db}
}

// Err returns the configuration error found by NewFactory, if any.
func (f *Factory) Err() error { return f.cfgErr }

func parse(cfg config.Database) (*pgx.ConnConfig, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: database.dsn is not set", ErrConfig)
	}
	pc, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %v", ErrConfig, err)
	}
	if cfg.Password != "" {
		pc.Password = cfg.Password
	}
	if pc.Password == "" {
		return nil, fmt.Errorf("%w: no service credential in dsn or database.password", ErrConfig)
	}
	if pc.Port == supavisorTxPort {
		pc.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	return pc, nil
}

// Handle returns the shared pool, connecting on first use.  Concurrent
// first calls share one connect attempt; a failed attempt is not cached
// and the next call retries.  Handle returns a wrapped ctx.Err() once ctx is
// done, even while the shared attempt is still running.
func (f *Factory) Handle(ctx context.Context) (*sqlx.DB, error) {
	if db := f.current(); db != nil {
		return db, nil
	}
	if f.cfgErr != nil {
		return nil, f.cfgErr
	}

	ch := f.dial.DoChan("connect", func() (any, error) {
		if db := f.current(); db != nil {
			return db, nil
		}
		// Detached from the first caller: its cancellation must not
		// fail everyone else waiting on the same attempt.
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.connectTimeout())
		defer cancel()

		db, err := f.connect(cctx)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.db = db
		f.mu.Unlock()
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for database: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*sqlx.DB), nil
	}
}

func (f *Factory) current() *sqlx.DB {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.db
}

func (f *Factory) connectTimeout() time.Duration {
	if f.cfg.QueryTimeout > 0 {
		return f.cfg.QueryTimeout
	}
	return defaultConnectTimeout
}

// open builds the pgx-backed pool and proves it with one ping.
func (f *Factory) open(ctx context.Context) (*sqlx.DB, error) {
	db := sqlx.NewDb(stdlib.OpenDB(*f.pgxCfg), DriverName)
	db.SetMaxOpenConns(f.cfg.MaxOpenConns)
	db.SetMaxIdleConns(f.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(f.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Ping checks connectivity for /health.
func (f *Factory) Ping(ctx context.Context) error {
	db, err := f.Handle(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the pool if one was opened.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.db == nil {
		return nil
	}
	err := f.db.Close()
	f.db = nil
	return err
}
