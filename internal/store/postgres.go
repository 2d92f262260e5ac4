// Package store provides Postgres-backed persistence for reconciled
// transfers, using a pgxpool connection pool shared across concurrent
// ingestion workers rather than a single-writer, process-local database.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store wraps a pgxpool.Pool and owns the txs/lost_txs schema.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to dsn and runs migrations.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connecting to postgres: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: migrating: %w", err)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool exposes the underlying pgxpool.Pool for callers (the reconciler)
// that need to run statements directly.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS txs (
			kappa BYTEA PRIMARY KEY,
			from_tx_hash BYTEA NOT NULL,
			to_tx_hash BYTEA NULL,
			from_address BYTEA NOT NULL,
			to_address BYTEA NOT NULL,
			sent_value VARCHAR NOT NULL,
			received_value VARCHAR NULL,
			pending BOOL NOT NULL,
			from_chain_id INT NOT NULL,
			to_chain_id INT NOT NULL,
			sent_time BIGINT NOT NULL,
			received_time BIGINT NULL,
			sent_token BYTEA NOT NULL,
			received_token BYTEA NULL,
			swap_success BOOL NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_txs_pending ON txs(pending) WHERE pending`,
		`CREATE TABLE IF NOT EXISTS lost_txs (
			kappa BYTEA PRIMARY KEY,
			to_tx_hash BYTEA NOT NULL,
			to_address BYTEA NOT NULL,
			received_value VARCHAR NOT NULL,
			to_chain_id INT NOT NULL,
			received_time BIGINT NOT NULL,
			received_token BYTEA NOT NULL,
			swap_success BOOL NULL,
			fee VARCHAR NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505); a duplicate insert into lost_txs on replay is
// treated as success, not failure.
func IsUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if !asPgError(err, &pgErr) {
		return false
	}
	return pgErr.SQLState() == "23505"
}

func asPgError(err error, target *interface{ SQLState() string }) bool {
	for err != nil {
		if pgErr, ok := err.(interface{ SQLState() string }); ok {
			*target = pgErr
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// ErrNoRows is re-exported so callers don't need to import pgx directly.
var ErrNoRows = pgx.ErrNoRows
