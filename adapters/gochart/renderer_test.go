package gochart

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"rolstat/domain/rol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(t *testing.T, list ...string) rol.ChartData {
	t.Helper()
	data, ok := rol.ProjectChart(list)
	require.True(t, ok)
	return data
}

func TestRenderAllCharts(t *testing.T) {
	r := NewRenderer(320, 240, nil)
	charts, err := r.Render(context.Background(), project(t, "1", "2", "2", "3"))
	require.NoError(t, err)
	require.Len(t, charts, len(rol.ChartSpecs))

	for i, c := range charts {
		assert.Equal(t, rol.ChartSpecs[i].Kind, c.Kind())
		assert.Equal(t, rol.ChartSpecs[i].Title, c.Title())

		var buf bytes.Buffer
		_, err := c.WriteTo(&buf)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(&buf)
		require.NoError(t, err, "%s chart is a PNG", c.Kind())
		assert.Equal(t, 320, cfg.Width)
		assert.Equal(t, 240, cfg.Height)
	}
}

func TestRenderSingleLabel(t *testing.T) {
	charts, err := NewRenderer(0, 0, nil).Render(context.Background(), project(t, "único"))
	require.NoError(t, err)
	assert.Len(t, charts, len(rol.ChartSpecs))
}

func TestRenderNothing(t *testing.T) {
	charts, err := NewRenderer(0, 0, nil).Render(context.Background(), rol.ChartData{})
	require.NoError(t, err)
	assert.Empty(t, charts)
}

func TestDestroyedChartCannotBeWritten(t *testing.T) {
	charts, err := NewRenderer(0, 0, nil).Render(context.Background(), project(t, "a", "b"))
	require.NoError(t, err)

	c := charts[0]
	c.Destroy()
	_, err = c.WriteTo(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRenderer(0, 0, nil).Render(ctx, project(t, "a"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBarWidth(t *testing.T) {
	assert.Equal(t, 60, barWidth(640, 1))
	assert.Equal(t, 8, barWidth(640, 100))
	assert.Equal(t, 32, barWidth(640, 10))
}
