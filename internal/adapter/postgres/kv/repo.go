// Package kv implements the progress key-value store on PostgreSQL.
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/notas/internal/adapter/postgres"
)

// Repo provides key-value persistence backed by the kv table.
type Repo struct {
	pool *pgxpool.Pool
	tx   *postgres.TxManager
	now  func() time.Time
}

// New creates a new key-value repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, tx: postgres.NewTxManager(pool), now: time.Now}
}

// Get returns the value stored under key.
// Returns domain.ErrNotFound if the key is absent.
func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	query, args, err := postgres.Builder().
		Select("value").
		From("kv").
		Where("key = ?", key).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var value string
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&value); err != nil {
		return "", postgres.MapError(err, "kv", key)
	}
	return value, nil
}

// Set upserts value under key.
func (r *Repo) Set(ctx context.Context, key, value string) error {
	query, args, err := postgres.Builder().
		Insert("kv").
		Columns("key", "value", "updated_at").
		Values(key, value, r.now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "kv", key)
	}
	return nil
}

// List returns every entry whose key starts with prefix.
func (r *Repo) List(ctx context.Context, prefix string) (map[string]string, error) {
	query, args, err := postgres.Builder().
		Select("key", "value").
		From("kv").
		Where("starts_with(key, ?)", prefix).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "kv", prefix)
	}

	type entry struct {
		Key   string
		Value string
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[entry])
	if err != nil {
		return nil, postgres.MapError(err, "kv", prefix)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

// RunInTx executes fn within a transaction; Repo calls made with the context
// passed to fn join it.
func (r *Repo) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.tx.RunInTx(ctx, fn)
}
