// Package database owns the PostgreSQL connection pool and the transaction
// discipline shared by every repository.
//
// A transaction opened with RunInTx travels in the context. Repositories call
// Querier(ctx) and transparently join it, so a service can group several
// repository calls into one atomic unit without the repositories knowing:
//
//	err := db.RunInTx(ctx, func(ctx context.Context) error {
//		if err := movements.Append(ctx, m); err != nil {
//			return err
//		}
//		return audit.Append(ctx, entry)
//	})
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/ghuser/larder/pkg/logger"
)

// Database wraps a *sql.DB opened with the pgx driver.
type Database struct {
	db  *sql.DB
	log logger.Logger
}

// Querier is the subset of *sql.DB and *sql.Tx the repositories use.
// It satisfies sqlscan.Querier.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// NewPool opens a connection pool for url and pings it with a 5s deadline.
func NewPool(ctx context.Context, url string, log logger.Logger) (*Database, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Database{db: db, log: log}, nil
}

// New wraps an already opened *sql.DB. Used by integration tests.
func New(db *sql.DB, log logger.Logger) *Database {
	return &Database{db: db, log: log}
}

// RunInTx runs fn inside a transaction carried by the context passed to fn.
// A call made while a transaction is already in ctx joins it instead of
// opening a second one. fn's error rolls back; a panic rolls back and re-panics.
func (d *Database) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := TxFromCtx(ctx); ok {
		return fn(ctx)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.log.ErrorContext(ctx, "transaction rollback failed", "error", rbErr)
			return fmt.Errorf("rollback failed: %w (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// WithTx is RunInTx for callers that need the raw *sql.Tx, such as the
// watermill transactional publisher.
func (d *Database) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return d.RunInTx(ctx, func(ctx context.Context) error {
		tx, _ := TxFromCtx(ctx)
		return fn(ctx, tx)
	})
}

// TxFromCtx returns the transaction opened by RunInTx, if any.
func TxFromCtx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// Querier returns the transaction in ctx, or the pool when there is none.
func (d *Database) Querier(ctx context.Context) Querier {
	if tx, ok := TxFromCtx(ctx); ok {
		return tx
	}
	return d.db
}

// DB returns the underlying pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Ping checks database connectivity.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// Close closes the pool.
func (d *Database) Close() error {
	return d.db.Close()
}
