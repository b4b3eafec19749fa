package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/notas/internal/adapter/postgres/kv"
	"github.com/heartmarshall/notas/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/notas/internal/domain"
)

func TestRepo_GetMissing(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := kv.New(pool)

	_, err := repo.Get(context.Background(), testhelper.UniqueKey("missing_"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_SetUpserts(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := kv.New(pool)
	ctx := context.Background()
	key := testhelper.UniqueKey("index_")

	require.NoError(t, repo.Set(ctx, key, "2"))
	require.NoError(t, repo.Set(ctx, key, "3"))

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestRepo_List(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := kv.New(pool)
	ctx := context.Background()

	prefix := testhelper.UniqueKey("list_") + "_"
	testhelper.SeedKV(t, pool, map[string]string{
		prefix + "mastered": `["1"]`,
		prefix + "index_A1": "4",
	})
	// A percent sign in the prefix is literal.
	require.NoError(t, repo.Set(ctx, prefix[:len(prefix)-1]+"%x", "y"))

	got, err := repo.List(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		prefix + "mastered": `["1"]`,
		prefix + "index_A1": "4",
	}, got)
}

func TestRepo_RunInTx(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := kv.New(pool)
	ctx := context.Background()
	key := testhelper.UniqueKey("tx_")
	sentinel := errors.New("abort")

	err := repo.RunInTx(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Set(ctx, key, "1"))
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, ok := testhelper.KVValue(t, pool, key)
	assert.False(t, ok)

	require.NoError(t, repo.RunInTx(ctx, func(ctx context.Context) error {
		return repo.Set(ctx, key, "2")
	}))
	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}
