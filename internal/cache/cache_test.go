package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/swatches/pkg/swatch"
)

// store is the surface both backends share.
type store interface {
	Get(ctx context.Context, saturation, lightness int) (swatch.Collection, error)
	Set(ctx context.Context, saturation, lightness int, c swatch.Collection) error
	Remove(ctx context.Context, saturation, lightness int) error
	Clear(ctx context.Context) (int, error)
	Close() error
}

func sampleCollection() swatch.Collection {
	return swatch.Collection{
		{Hue: 0, Name: "Red", Hex: "#FF0000", RGB: swatch.RGB{R: 255}},
		{Hue: 30, Name: "Orange", Hex: "#FF8000", RGB: swatch.RGB{R: 255, G: 128}},
		{Hue: 120, Name: "Green", Hex: "#00FF00", RGB: swatch.RGB{G: 255}},
	}
}

func backends(t *testing.T) map[string]store {
	t.Helper()

	file, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	mem, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	return map[string]store{
		"memory":        NewMemory(),
		"sqlite file":   file,
		"sqlite memory": mem,
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("miss is not found", func(t *testing.T) {
				_, err := s.Get(ctx, 100, 50)
				assert.True(t, swatch.IsNotFound(err))
			})

			t.Run("set then get round-trips", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, 100, 50, sampleCollection()))

				got, err := s.Get(ctx, 100, 50)
				require.NoError(t, err)
				assert.Equal(t, sampleCollection(), got)
			})

			t.Run("set replaces the whole entry", func(t *testing.T) {
				replacement := swatch.Collection{{Hue: 200, Name: "Azure", Hex: "#0088FF", RGB: swatch.RGB{G: 136, B: 255}}}
				require.NoError(t, s.Set(ctx, 100, 50, replacement))

				got, err := s.Get(ctx, 100, 50)
				require.NoError(t, err)
				assert.Equal(t, replacement, got)
			})

			t.Run("keys are independent", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, 0, 0, swatch.Collection{}))

				got, err := s.Get(ctx, 0, 0)
				require.NoError(t, err)
				assert.Empty(t, got)

				other, err := s.Get(ctx, 100, 50)
				require.NoError(t, err)
				assert.Len(t, other, 1)
			})

			t.Run("remove", func(t *testing.T) {
				require.NoError(t, s.Remove(ctx, 0, 0))
				_, err := s.Get(ctx, 0, 0)
				assert.True(t, swatch.IsNotFound(err))

				// Removing a missing entry is not an error.
				require.NoError(t, s.Remove(ctx, 0, 0))
			})

			t.Run("clear", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, 10, 10, sampleCollection()))

				n, err := s.Clear(ctx)
				require.NoError(t, err)
				assert.Equal(t, 2, n)

				_, err = s.Get(ctx, 100, 50)
				assert.True(t, swatch.IsNotFound(err))
			})
		})
	}
}

func TestMemory_CopiesCollections(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	c := sampleCollection()
	require.NoError(t, m.Set(ctx, 100, 50, c))
	c[0].Name = "Mutated"

	got, err := m.Get(ctx, 100, 50)
	require.NoError(t, err)
	assert.Equal(t, "Red", got[0].Name)

	got[1].Name = "Mutated"
	again, err := m.Get(ctx, 100, 50)
	require.NoError(t, err)
	assert.Equal(t, "Orange", again[1].Name)
}

func TestMemory_NilStoresEmpty(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, 1, 1, nil))
	got, err := m.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Set(ctx, 100, 50, sampleCollection()))
	require.NoError(t, db.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, 100, 50)
	require.NoError(t, err)
	assert.Equal(t, sampleCollection(), got)
}

func TestSQLite_ClosedDatabaseReturnsStorageError(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.Get(context.Background(), 100, 50)
	require.Error(t, err)
	assert.False(t, swatch.IsNotFound(err))

	var storageErr *swatch.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "get", storageErr.Op)
	assert.Equal(t, "swatches:100:50", storageErr.Key)

	err = db.Set(context.Background(), 100, 50, sampleCollection())
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "set", storageErr.Op)
}
