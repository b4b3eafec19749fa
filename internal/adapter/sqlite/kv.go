package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repo provides key-value persistence backed by SQLite.
type Repo struct {
	db  *sqlx.DB
	now func() time.Time
}

// New creates a new key-value repository.
func New(db *sqlx.DB) *Repo {
	return &Repo{db: db, now: time.Now}
}

type kvRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Get returns the value stored under key.
// Returns domain.ErrNotFound if the key is absent.
func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	query, args, err := builder().
		Select("value").
		From("kv").
		Where("key = ?", key).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var value string
	if err := querierFromCtx(ctx, r.db).GetContext(ctx, &value, query, args...); err != nil {
		return "", mapError(err, key)
	}
	return value, nil
}

// Set upserts value under key.
func (r *Repo) Set(ctx context.Context, key, value string) error {
	query, args, err := builder().
		Insert("kv").
		Columns("key", "value", "updated_at").
		Values(key, value, r.now().UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := querierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return mapError(err, key)
	}
	return nil
}

// List returns every entry whose key starts with prefix.
func (r *Repo) List(ctx context.Context, prefix string) (map[string]string, error) {
	query, args, err := builder().
		Select("key", "value").
		From("kv").
		Where("substr(key, 1, ?) = ?", len(prefix), prefix).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []kvRow
	if err := querierFromCtx(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list kv %q: %w", prefix, err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// RunInTx executes fn within a transaction. Repo calls made with the context
// passed to fn join the transaction.
// On error from fn: rolls back and returns the error.
// On panic from fn: rolls back and re-panics.
func (r *Repo) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
