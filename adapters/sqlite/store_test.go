package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"rolstat/internal/storetest"
	"rolstat/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, pub ports.ChangePublisher) ports.KeyValueStore {
		store, err := NewStore(":memory:", pub)
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rol.db")
	ctx := context.Background()

	first, err := NewStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, first.SetItem(ctx, "rol_generated", "1"))
	require.NoError(t, first.Close())

	second, err := NewStore(path, nil)
	require.NoError(t, err)
	defer second.Close()

	v, found, err := second.GetItem(ctx, "rol_generated")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", v)
}

func TestFilePathFromDSN(t *testing.T) {
	tests := []struct {
		dsn    string
		path   string
		onDisk bool
	}{
		{":memory:", "", false},
		{"", "", false},
		{"data/rol.db", "data/rol.db", true},
		{"file:/tmp/rol.db?cache=shared", "/tmp/rol.db", true},
		{"file::memory:?cache=shared", "", false},
	}
	for _, tt := range tests {
		path, onDisk := filePathFromDSN(tt.dsn)
		assert.Equal(t, tt.onDisk, onDisk, tt.dsn)
		assert.Equal(t, tt.path, path, tt.dsn)
	}
}
