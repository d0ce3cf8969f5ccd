package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the aggregate store contract consumed by the services: plain query
// access plus an all-or-nothing unit of work.
type Store interface {
	Querier

	// ExecTx runs fn inside a transaction. Every mutation fn issues through
	// its Querier commits together or not at all.
	ExecTx(ctx context.Context, fn func(Querier) error) error
}

// SQLStore implements Store over a pgx connection pool.
type SQLStore struct {
	*Queries
	pool *pgxpool.Pool
}

var _ Store = (*SQLStore)(nil)

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *SQLStore {
	return &SQLStore{
		Queries: New(pool),
		pool:    pool,
	}
}

// ExecTx runs fn inside a transaction, committing on success and rolling back
// on error. Cancellation is honored up to the commit boundary; the commit
// itself runs detached from the caller's context so a cancel that lands after
// the decision to commit cannot produce a partial unit of work.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(New(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
