// Package collector holds the raw-data input grid ("dados brutos")
package collector

import (
	"strings"

	"rolstat/domain/core"
)

// Default grid dimensions: ten rows of four cells
const (
	DefaultRows = 10
	DefaultCols = 4
)

// Grid is a fixed rows x cols set of input cells. It is not safe for
// concurrent use; callers serialize access.
type Grid struct {
	rows, cols int
	cells      []string
}

// NewGrid creates an empty grid; non-positive dimensions fall back to the defaults
func NewGrid(rows, cols int) *Grid {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	return &Grid{rows: rows, cols: cols, cells: make([]string, rows*cols)}
}

func (g *Grid) Rows() int     { return g.rows }
func (g *Grid) Cols() int     { return g.cols }
func (g *Grid) Capacity() int { return len(g.cells) }

// Set writes one cell
func (g *Grid) Set(row, col int, value string) error {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return core.NewCellRangeError(row, col, g.rows, g.cols)
	}
	g.cells[row*g.cols+col] = value
	return nil
}

// Fill clears the grid and writes values row-major. It returns how many values
// did not fit.
func (g *Grid) Fill(values []string) (overflow int) {
	g.Reset()
	n := copy(g.cells, values)
	return len(values) - n
}

// Reset empties every cell
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = ""
	}
}

// Cells returns a copy of the grid contents by row
func (g *Grid) Cells() [][]string {
	out := make([][]string, g.rows)
	for r := range out {
		out[r] = append([]string(nil), g.cells[r*g.cols:(r+1)*g.cols]...)
	}
	return out
}

// Collect returns the trimmed, non-empty cell values in row-major order
func (g *Grid) Collect() []string {
	values := make([]string, 0, len(g.cells))
	for _, c := range g.cells {
		if v := strings.TrimSpace(c); v != "" {
			values = append(values, v)
		}
	}
	return values
}
