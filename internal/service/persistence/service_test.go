package persistence

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/notas/internal/adapter/memory"
	"github.com/heartmarshall/notas/internal/domain"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	kv := memory.New()
	return NewService(slog.Default(), kv), kv
}

func TestLoadMastered_Missing(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	got := svc.LoadMastered(context.Background())
	assert.Equal(t, 0, got.Len())
}

func TestMastered_RoundTripKeepsOrder(t *testing.T) {
	t.Parallel()
	svc, kv := newTestService(t)
	ctx := context.Background()

	set := domain.NewIDSet("3", "1", "abc")
	svc.SaveMastered(ctx, set)

	raw, err := kv.Get(ctx, KeyMastered)
	require.NoError(t, err)
	assert.Equal(t, `[3,1,"abc"]`, raw)

	got := svc.LoadMastered(ctx)
	assert.Equal(t, []domain.ItemID{"3", "1", "abc"}, got.IDs())
}

func TestSaveFavorites_EmptyEncodesList(t *testing.T) {
	t.Parallel()
	svc, kv := newTestService(t)
	ctx := context.Background()

	svc.SaveFavorites(ctx, domain.IDSet{})

	raw, err := kv.Get(ctx, KeyFavorites)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestLoadSet_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []domain.ItemID
	}{
		{"not json", "{oops", nil},
		{"object", `{"a":1}`, nil},
		{"null", "null", nil},
		{"mixed ids", `[1,"2",2,""]`, []domain.ItemID{"1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, kv := newTestService(t)
			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, KeyFavorites, tt.raw))

			got := svc.LoadFavorites(ctx)
			assert.Equal(t, tt.want, got.IDs())
		})
	}
}

func TestLoad_ReadFailureDefaults(t *testing.T) {
	t.Parallel()
	svc, kv := newTestService(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, KeyMastered, `["1"]`))
	require.NoError(t, kv.Set(ctx, CursorKey(domain.LevelB1), "4"))
	kv.FailReads(errors.New("disk on fire"))

	assert.Equal(t, 0, svc.LoadMastered(ctx).Len())
	assert.Equal(t, 0, svc.LoadCursor(ctx, domain.LevelB1))
}

func TestSave_WriteFailureSwallowed(t *testing.T) {
	t.Parallel()
	svc, kv := newTestService(t)
	ctx := context.Background()
	kv.FailWrites(errors.New("quota exceeded"))

	assert.NotPanics(t, func() {
		svc.SaveMastered(ctx, domain.NewIDSet("1"))
		svc.SaveCursor(ctx, domain.LevelA1, 2)
	})
	assert.Equal(t, 0, kv.Writes())
}

func TestCursor_RoundTrip(t *testing.T) {
	t.Parallel()
	svc, kv := newTestService(t)
	ctx := context.Background()

	svc.SaveCursor(ctx, domain.LevelC2, 5)

	raw, err := kv.Get(ctx, "notas_index_C2")
	require.NoError(t, err)
	assert.Equal(t, "5", raw)
	assert.Equal(t, 5, svc.LoadCursor(ctx, domain.LevelC2))
	assert.Equal(t, 0, svc.LoadCursor(ctx, domain.LevelA1))
}

func TestParseCursor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"0", 0, true},
		{"12", 12, true},
		{" 7", 7, true},
		{"+3", 3, true},
		{"3abc", 3, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseCursor(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCursor_Malformed(t *testing.T) {
	t.Parallel()
	svc, kv := newTestService(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, CursorKey(domain.LevelA2), "-4"))

	assert.Equal(t, 0, svc.LoadCursor(ctx, domain.LevelA2))
}
