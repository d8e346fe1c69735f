// Package storetest holds the behaviour every ports.KeyValueStore must share
package storetest

import (
	"context"
	"testing"

	"rolstat/domain/core"
	"rolstat/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Recorder is a ChangePublisher that keeps every event
type Recorder struct {
	Events []ports.ChangeEvent
}

func (r *Recorder) Publish(ev ports.ChangeEvent) { r.Events = append(r.Events, ev) }

// Factory builds a fresh, empty store publishing to pub
type Factory func(t *testing.T, pub ports.ChangePublisher) ports.KeyValueStore

// Run exercises the KeyValueStore contract
func Run(t *testing.T, newStore Factory) {
	t.Run("missing key", func(t *testing.T) {
		store := newStore(t, nil)
		_, found, err := store.GetItem(context.Background(), "absent")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		store := newStore(t, nil)
		ctx := context.Background()
		require.NoError(t, store.SetItem(ctx, "k", "one"))
		require.NoError(t, store.SetItem(ctx, "k", "two"))

		v, found, err := store.GetItem(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "two", v)
	})

	t.Run("empty value is stored", func(t *testing.T) {
		store := newStore(t, nil)
		ctx := context.Background()
		require.NoError(t, store.SetItem(ctx, "k", ""))
		v, found, err := store.GetItem(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, v)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		store := newStore(t, nil)
		ctx := context.Background()
		require.NoError(t, store.SetItem(ctx, "k", "v"))
		require.NoError(t, store.RemoveItem(ctx, "k"))
		require.NoError(t, store.RemoveItem(ctx, "k"))
		require.NoError(t, store.RemoveItem(ctx, "never"))

		_, found, err := store.GetItem(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("events carry origin and values", func(t *testing.T) {
		rec := &Recorder{}
		store := newStore(t, rec)
		ctx := core.WithOrigin(context.Background(), "workbench")

		require.NoError(t, store.SetItem(ctx, "k", "a"))
		require.NoError(t, store.SetItem(ctx, "k", "a"))
		require.NoError(t, store.SetItem(ctx, "k", "b"))
		require.NoError(t, store.RemoveItem(ctx, "k"))
		require.NoError(t, store.RemoveItem(ctx, "k"))

		require.Len(t, rec.Events, 3)

		first := rec.Events[0]
		assert.Equal(t, "k", first.Key)
		assert.Equal(t, core.Origin("workbench"), first.Origin)
		assert.Nil(t, first.OldValue)
		require.NotNil(t, first.NewValue)
		assert.Equal(t, "a", *first.NewValue)

		second := rec.Events[1]
		require.NotNil(t, second.OldValue)
		assert.Equal(t, "a", *second.OldValue)
		assert.Equal(t, "b", *second.NewValue)

		third := rec.Events[2]
		assert.True(t, third.Removed())
		assert.Equal(t, "b", *third.OldValue)
	})

	t.Run("writes without origin are external", func(t *testing.T) {
		rec := &Recorder{}
		store := newStore(t, rec)
		require.NoError(t, store.SetItem(context.Background(), "k", "v"))
		require.Len(t, rec.Events, 1)
		assert.Equal(t, core.OriginExternal, rec.Events[0].Origin)
	})
}
