package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// fetchQuery removes the oldest passwords of table %s. Table layout:
// id bigserial primary key, password text not null.
const fetchQuery = `DELETE FROM %[1]s WHERE id IN (
	SELECT id FROM %[1]s WHERE btrim(password) <> '' ORDER BY id LIMIT $1 FOR UPDATE SKIP LOCKED
) RETURNING id, password`

// Postgres store keeps passwords in a table.
type Postgres struct {
	pool  *pgxpool.Pool
	query string
}

// NewPostgres connects and pings the database.
func NewPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnLifetime = 3 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &Postgres{
		pool:  pool,
		query: fmt.Sprintf(fetchQuery, pgx.Identifier{table}.Sanitize()),
	}, nil
}

// FetchAndDelete removes count rows in one transaction, rolled back when the
// table holds fewer.
func (p *Postgres) FetchAndDelete(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, errBadCount
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, p.query, count)
	if err != nil {
		return nil, err
	}
	type item struct {
		id       int64
		password string
	}
	var items []item
	for rows.Next() {
		var it item
		if err = rows.Scan(&it.id, &it.password); err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, it)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(items) < count {
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientRows, count, len(items))
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].id < items[j].id })
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.password
	}
	return res, nil
}

// Close pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
