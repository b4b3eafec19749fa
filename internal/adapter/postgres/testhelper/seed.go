package testhelper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UniqueKey returns a kv key that no other test uses, so tests sharing the
// container never see each other's rows.
func UniqueKey(prefix string) string {
	return fmt.Sprintf("%s%s", prefix, uuid.NewString())
}

// SeedKV inserts the given entries directly, bypassing the repository.
func SeedKV(t *testing.T, pool *pgxpool.Pool, entries map[string]string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for key, value := range entries {
		if _, err := pool.Exec(ctx,
			`INSERT INTO kv (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
			key, value,
		); err != nil {
			t.Fatalf("testhelper: seed kv %q: %v", key, err)
		}
	}
}

// KVValue reads a value directly. ok is false when the key is absent.
func KVValue(t *testing.T, pool *pgxpool.Pool, key string) (value string, ok bool) {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM kv WHERE key = $1`, key,
	).Scan(&n)
	if err != nil {
		t.Fatalf("testhelper: count kv %q: %v", key, err)
	}
	if n == 0 {
		return "", false
	}

	if err := pool.QueryRow(context.Background(),
		`SELECT value FROM kv WHERE key = $1`, key,
	).Scan(&value); err != nil {
		t.Fatalf("testhelper: read kv %q: %v", key, err)
	}
	return value, true
}
