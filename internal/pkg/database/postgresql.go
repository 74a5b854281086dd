package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConnectivity is returned when the store cannot be reached or no pooled
// connection became available within the acquire timeout.
var ErrConnectivity = errors.New("database is unreachable or connection pool is exhausted")

const uniqueViolation = "23505"

type Options struct {
	MaxConns       int32
	MinConns       int32
	AcquireTimeout time.Duration
}

type DB struct {
	*pgxpool.Pool
	acquireTimeout time.Duration
}

func NewPostgreSQLDB(dsn string, opts Options) (*DB, error) {
	config, err := pgxpool.ParseConfig(dsn)

	if err != nil {
		return nil, err
	}

	// Connection pool settings
	config.MaxConns = 25
	config.MinConns = 5
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 && opts.MinConns <= config.MaxConns {
		config.MinConns = opts.MinConns
	}

	acquireTimeout := opts.AcquireTimeout
	if acquireTimeout <= 0 {
		acquireTimeout = 5 * time.Second
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, ClassifyError(err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, ClassifyError(err)
	}

	return &DB{Pool: pool, acquireTimeout: acquireTimeout}, nil
}

// acquire takes a pooled connection, giving up with ErrConnectivity once the
// acquire timeout elapses.
func (db *DB) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	defer cancel()

	conn, err := db.Pool.Acquire(acquireCtx)
	if err != nil {
		return nil, ClassifyError(err)
	}
	return conn, nil
}

// BeginTx acquires a pooled connection and starts a transaction on it. The
// connection goes back to the pool when the transaction is committed or
// rolled back.
func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Release()
		return nil, ClassifyError(err)
	}

	return &pooledTx{Tx: tx, conn: conn}, nil
}

// Exec runs sql on a connection acquired under the acquire timeout.
func (db *DB) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, sql, arguments...)
	return tag, ClassifyError(err)
}

// Query runs sql on a connection acquired under the acquire timeout. The
// connection is released when the rows are closed or exhausted.
func (db *DB) Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, sql, arguments...)
	if err != nil {
		conn.Release()
		return nil, ClassifyError(err)
	}
	return &pooledRows{Rows: rows, conn: conn}, nil
}

// QueryRow runs sql on a connection acquired under the acquire timeout. An
// acquire failure surfaces from Scan.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	conn, err := db.acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return &pooledRow{row: conn.QueryRow(ctx, sql, args...), conn: conn}
}

type pooledRows struct {
	pgx.Rows
	conn *pgxpool.Conn
	once sync.Once
}

func (r *pooledRows) Next() bool {
	if r.Rows.Next() {
		return true
	}
	r.Close()
	return false
}

func (r *pooledRows) Close() {
	r.Rows.Close()
	r.once.Do(r.conn.Release)
}

type pooledRow struct {
	row  pgx.Row
	conn *pgxpool.Conn
}

func (r *pooledRow) Scan(dest ...any) error {
	defer r.conn.Release()
	return ClassifyError(r.row.Scan(dest...))
}

type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error {
	return r.err
}

type pooledTx struct {
	pgx.Tx
	conn *pgxpool.Conn
	once sync.Once
}

func (t *pooledTx) Commit(ctx context.Context) error {
	defer t.release()
	return t.Tx.Commit(ctx)
}

func (t *pooledTx) Rollback(ctx context.Context) error {
	defer t.release()
	return t.Tx.Rollback(ctx)
}

func (t *pooledTx) release() {
	t.once.Do(t.conn.Release)
}

// ClassifyError wraps dial failures and acquire timeouts with
// ErrConnectivity. Any other error is returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConnectivity) {
		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}

	return err
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
