package collector

import (
	"testing"

	"rolstat/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectTrimsAndSkipsEmpty(t *testing.T) {
	g := NewGrid(2, 2)
	require.NoError(t, g.Set(0, 1, " 3 "))
	require.NoError(t, g.Set(1, 0, "   "))
	require.NoError(t, g.Set(1, 1, "1"))

	assert.Equal(t, []string{"3", "1"}, g.Collect())
}

func TestCollectEmptyGrid(t *testing.T) {
	g := NewGrid(0, 0)
	assert.Equal(t, DefaultRows, g.Rows())
	assert.Equal(t, DefaultCols, g.Cols())
	assert.Empty(t, g.Collect())
}

func TestSetOutOfRange(t *testing.T) {
	g := NewGrid(2, 2)
	assert.ErrorIs(t, g.Set(2, 0, "x"), core.ErrCellRange)
	assert.ErrorIs(t, g.Set(0, -1, "x"), core.ErrCellRange)
}

func TestFillReportsOverflow(t *testing.T) {
	g := NewGrid(1, 2)
	require.NoError(t, g.Set(0, 1, "old"))

	assert.Equal(t, 1, g.Fill([]string{"a", "b", "c"}))
	assert.Equal(t, [][]string{{"a", "b"}}, g.Cells())

	assert.Equal(t, 0, g.Fill([]string{"z"}))
	assert.Equal(t, [][]string{{"z", ""}}, g.Cells(), "fill clears previous values")
}

func TestReset(t *testing.T) {
	g := NewGrid(1, 1)
	g.Fill([]string{"a"})
	g.Reset()
	assert.Empty(t, g.Collect())
}
