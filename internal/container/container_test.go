package container

import (
	"context"
	"testing"

	"rolstat/domain/rol"
	"rolstat/internal/config"
	"rolstat/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Store: config.StoreConfig{
			Backend:    backend,
			Dir:        dir,
			SQLitePath: dir + "/rol.db",
		},
		Grid:   config.GridConfig{Rows: 3, Cols: 3},
		Charts: config.ChartConfig{Width: 200, Height: 150},
	}
}

func TestWorkbenchChangesReachChartSurface(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			c, err := New(ctx, testConfig(t, backend), nil)
			require.NoError(t, err)
			t.Cleanup(func() { c.Shutdown(ctx) })

			require.NoError(t, c.Charts.Load(ctx))
			assert.Nil(t, c.Charts.View().Data)

			c.Workbench.SetRaw([]string{"b", "a", "b"})
			_, err = c.Workbench.Apply(ctx, rol.ModeAuto, false)
			require.NoError(t, err)

			view := c.Charts.View()
			require.NotNil(t, view.Data)
			assert.Equal(t, []string{"a", "b"}, view.Data.Labels)
			assert.Len(t, view.Charts, len(rol.ChartSpecs))

			require.NoError(t, c.Workbench.Clear(ctx))
			assert.Nil(t, c.Charts.View().Data)
		})
	}
}

func TestWatchReturnsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, err := New(ctx, testConfig(t, config.BackendMemory), nil)
	require.NoError(t, err)
	cancel()
	assert.NoError(t, c.Watch(ctx))
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), testConfig(t, "redis"), nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
