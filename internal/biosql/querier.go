package biosql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Rows is the subset of a result set the store reads. pgx.Rows satisfies
// it directly; *sql.Rows is adapted by sqlRows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Querier runs read-only statements against one backend.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Close()
}

// PoolQuerier runs statements on a pgx connection pool.
type PoolQuerier struct {
	Pool *pgxpool.Pool
}

func (q PoolQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return q.Pool.Query(ctx, query, args...)
}

func (q PoolQuerier) Close() { q.Pool.Close() }

// DBQuerier runs statements through database/sql.
type DBQuerier struct {
	DB *sql.DB
}

func (q DBQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

func (q DBQuerier) Close() { _ = q.DB.Close() }

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() { _ = r.Rows.Close() }
