// Package postgres implements the tenant, user and message repositories over
// a pgx connection pool. Every query is tenant-scoped where the interface
// demands it; there are no unscoped reads.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
)

const uniqueViolationCode = "23505"

type DB struct {
	Pool *pgxpool.Pool
}

func NewDB(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// Ping verifies connectivity at startup.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return apperrors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
