package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DialectSQLite   = dialect.SQLite
	DialectPostgres = dialect.Postgres
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB wraps the ent sql driver for the ledger database. The embedded *sql.DB is the same handle
// the driver runs on.
type DB struct {
	*sql.DB
	Dialect string
	drv     *entsql.Driver
	pool    *pgxpool.Pool
}

func newDB(sqldb *sql.DB, d string, pool *pgxpool.Pool) *DB {
	return &DB{DB: sqldb, Dialect: d, drv: entsql.OpenDB(d, sqldb), pool: pool}
}

// Builder returns a query builder bound to the database dialect.
func (d *DB) Builder() *entsql.DialectBuilder {
	return entsql.Dialect(d.Dialect)
}

// DialectFor picks postgres for postgres:// and postgresql:// DSNs, sqlite for everything else.
func DialectFor(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to the ledger database. Postgres goes through a pgx pool wrapped as *sql.DB;
// anything else is treated as a SQLite path or URI.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("ledger dsn is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	name := DialectFor(cfg.DSN)
	logger.Info("connecting to database", "dialect", name)

	var db *DB
	switch name {
	case DialectPostgres:
		pool, err := openPool(ctx, cfg)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}
		db = newDB(stdlib.OpenDBFromPool(pool), name, pool)
	default:
		sqldb, err := sql.Open("sqlite", strings.TrimPrefix(cfg.DSN, "sqlite://"))
		if err != nil {
			logger.Error("failed to open database", "error", err)
			return nil, err
		}
		// one writer; also keeps in-memory databases alive across calls
		sqldb.SetMaxOpenConns(1)
		db = newDB(sqldb, name, nil)
	}

	if err := HealthCheck(ctx, db, cfg.DialTimeout, logger); err != nil {
		db.Close(logger)
		return nil, err
	}
	logger.Info("successfully connected to database", "dialect", name)
	return db, nil
}

func openPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "cards-extractor"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	return pgxpool.NewWithConfig(ctx, pc)
}

// Close closes the database connections gracefully
func (d *DB) Close(logger *slog.Logger) {
	if d == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := d.drv.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Debug("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		return fmt.Errorf("ping %s: %w", db.Dialect, err)
	}
	logger.Debug("database ping successful")
	return nil
}
