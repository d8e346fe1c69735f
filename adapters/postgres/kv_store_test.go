package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"rolstat/domain/core"
	"rolstat/internal/migration"
	"rolstat/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ events []ports.ChangeEvent }

func (r *recorder) Publish(ev ports.ChangeEvent) { r.events = append(r.events, ev) }

func TestDecodeNoticeSkipsOwnNode(t *testing.T) {
	store := NewKVStore(nil, nil, nil)
	value := `["1"]`

	own, _ := json.Marshal(changeNotice{Node: store.node.String(), Key: "rol_values", NewValue: &value, Origin: "tab"})
	_, ok := store.decodeNotice(string(own))
	assert.False(t, ok)

	foreign, _ := json.Marshal(changeNotice{Node: "other", Key: "rol_values", NewValue: &value, Origin: "tab"})
	ev, ok := store.decodeNotice(string(foreign))
	require.True(t, ok)
	assert.Equal(t, "rol_values", ev.Key)
	assert.Equal(t, core.Origin("tab"), ev.Origin)
	assert.Equal(t, value, *ev.NewValue)
	assert.False(t, ev.Removed())
}

func TestDecodeNoticeDefaults(t *testing.T) {
	store := NewKVStore(nil, nil, nil)

	ev, ok := store.decodeNotice(`{"node":"other","key":"rol_generated"}`)
	require.True(t, ok)
	assert.Equal(t, core.OriginExternal, ev.Origin)
	assert.True(t, ev.Removed())

	_, ok = store.decodeNotice(`not json`)
	assert.False(t, ok)
}

// TestKVStoreRoundTrip runs against a real database when TEST_DATABASE_URL is set
func TestKVStoreRoundTrip(t *testing.T) {
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	rec := &recorder{}
	store := NewKVStore(db, rec, nil)
	defer store.Close()

	key := "test_" + core.NewID().String()
	ctx = core.WithOrigin(ctx, "writer")

	require.NoError(t, store.SetItem(ctx, key, "a"))
	require.NoError(t, store.SetItem(ctx, key, "a"))
	v, found, err := store.GetItem(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a", v)

	require.NoError(t, store.RemoveItem(ctx, key))
	require.NoError(t, store.RemoveItem(ctx, key))
	_, found, err = store.GetItem(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.Len(t, rec.events, 2, "rewriting the same value and removing twice publish nothing")
	assert.Equal(t, core.Origin("writer"), rec.events[0].Origin)
	assert.True(t, rec.events[1].Removed())
}
