// Package app holds the services behind the two pages of the tool: the
// workbench where raw data is organized into a ROL, and the chart surface.
package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"rolstat/domain/core"
	"rolstat/domain/rol"
	"rolstat/internal"
	"rolstat/internal/collector"
	"rolstat/internal/errors"
	"rolstat/internal/storage"
)

// ApplyResult is what the workbench shows after organizing the raw data
type ApplyResult struct {
	Mode      rol.SortMode   `json:"mode"`
	Sorted    []string       `json:"sorted"`
	Grid      [][]string     `json:"grid"`
	Info      string         `json:"info"`
	Table     []rol.RowCells `json:"table"`
	Persisted bool           `json:"persisted"`
}

// FreqTableView is the manual frequency table as displayed
type FreqTableView struct {
	Name string         `json:"name"`
	Rows []rol.RowCells `json:"rows"`
}

// State is a snapshot of everything the workbench page displays
type State struct {
	Raw       [][]string    `json:"raw"`
	Grid      [][]string    `json:"grid"`
	Info      string        `json:"info"`
	FreqTable FreqTableView `json:"freq_table"`
}

// Workbench organizes raw values into a ROL, persists it and keeps the manual
// frequency table. Each operation runs to completion under one lock.
type Workbench struct {
	mu     sync.Mutex
	raw    *collector.Grid
	bridge *storage.Bridge
	log    *internal.Logger

	grid   [][]string
	info   string
	manual *rol.ManualTable
}

// NewWorkbench creates a workbench whose raw and ROL grids have the given
// dimensions.
func NewWorkbench(rows, cols int, bridge *storage.Bridge, logger *internal.Logger) *Workbench {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	raw := collector.NewGrid(rows, cols)
	return &Workbench{
		raw:    raw,
		bridge: bridge,
		log:    logger.Named("workbench"),
		grid:   rol.Layout(nil, raw.Rows(), raw.Cols()),
		info:   rol.EmptySummary,
		manual: rol.NewManualTable("", nil),
	}
}

// SetRaw replaces the raw grid with values, row-major. It returns how many
// values did not fit.
func (w *Workbench) SetRaw(values []string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	overflow := w.raw.Fill(values)
	if overflow > 0 {
		w.log.Warn("%d value(s) do not fit the %dx%d grid", overflow, w.raw.Rows(), w.raw.Cols())
	}
	return overflow
}

// SetRawCell writes one raw grid cell
func (w *Workbench) SetRawCell(row, col int, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.raw.Set(row, col, value); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}
	return nil
}

// Apply sorts the raw values, shows them and persists them. When numeric
// sorting fails the error is returned unless confirmFallback is set, in which
// case the values are sorted alphabetically. Nothing changes on error.
func (w *Workbench) Apply(ctx context.Context, mode rol.SortMode, confirmFallback bool) (*ApplyResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	values := w.raw.Collect()
	if len(values) == 0 {
		return nil, &errors.AppError{
			Code:    errors.CodeEmptyInput,
			Message: "Não há dados para organizar. Preencha a tabela de Dados Brutos.",
			Cause:   core.ErrEmptyInput,
		}
	}

	sorted, err := rol.Sort(values, mode)
	var nonNumeric *rol.NonNumericError
	switch {
	case stderrors.As(err, &nonNumeric) && confirmFallback:
		w.log.Info("sorting alphabetically: %v", nonNumeric)
		mode = rol.ModeAlpha
		if sorted, err = rol.Sort(values, mode); err != nil {
			return nil, errors.Wrap(err, "alphabetical fallback failed")
		}
	case nonNumeric != nil:
		return nil, &errors.AppError{
			Code:    errors.CodeNonNumeric,
			Message: "Alguns valores não são numéricos. Deseja ordenar alfabeticamente em vez disso?",
			Cause:   nonNumeric,
		}
	case stderrors.Is(err, core.ErrUnknownMode):
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	case err != nil:
		return nil, errors.Wrap(err, "sort failed")
	}

	w.grid = rol.Layout(sorted, w.raw.Rows(), w.raw.Cols())
	w.info = rol.Summary(sorted)

	persisted := true
	if err := w.bridge.Save(ctx, sorted); err != nil {
		w.log.Warn("ROL shown but not persisted: %v", err)
		persisted = false
	}
	w.manual = rol.NewManualTable(w.manual.Name, rol.DistinctLabels(sorted))

	return &ApplyResult{
		Mode:      mode,
		Sorted:    sorted,
		Grid:      cloneGrid(w.grid),
		Info:      w.info,
		Table:     rol.Build(sorted).Cells(),
		Persisted: persisted,
	}, nil
}

// Clear empties both grids, the information panel and the manual table, and
// removes the persisted ROL.
func (w *Workbench) Clear(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.raw.Reset()
	w.grid = rol.Layout(nil, w.raw.Rows(), w.raw.Cols())
	w.info = rol.EmptySummary
	w.manual = rol.NewManualTable(w.manual.Name, nil)
	return w.bridge.Clear(ctx)
}

// State returns what the page currently displays
func (w *Workbench) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Raw:       w.raw.Cells(),
		Grid:      cloneGrid(w.grid),
		Info:      w.info,
		FreqTable: w.freqTable(),
	}
}

// TableNames returns the labels for the manual frequency table: the distinct
// persisted ROL values unless that ROL is the built-in default list, then the
// distinct raw grid values, otherwise none.
func (w *Workbench) TableNames(ctx context.Context) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tableNames(ctx)
}

func (w *Workbench) tableNames(ctx context.Context) []string {
	if persisted := w.bridge.Load(ctx); len(persisted) > 0 && !rol.IsDefaultROL(persisted) {
		if names := rol.DistinctLabels(persisted); len(names) > 0 {
			return names
		}
	}
	return rol.DistinctLabels(w.raw.Collect())
}

// ReloadTable rebuilds the manual table from TableNames, dropping typed counts
func (w *Workbench) ReloadTable(ctx context.Context) FreqTableView {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.manual = rol.NewManualTable(w.manual.Name, w.tableNames(ctx))
	return w.freqTable()
}

// FreqTable returns the manual frequency table
func (w *Workbench) FreqTable() FreqTableView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.freqTable()
}

// SetTableName renames the manual table
func (w *Workbench) SetTableName(name string) FreqTableView {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.manual.Name = name
	return w.freqTable()
}

// SetTableCount records the FA typed for row i. Invalid input leaves the cell
// blank and is reported as INVALID_INPUT.
func (w *Workbench) SetTableCount(i int, raw string) (FreqTableView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.manual.SetCount(i, raw); err != nil {
		return w.freqTable(), errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("row %d: %w", i, err))
	}
	return w.freqTable(), nil
}

func (w *Workbench) freqTable() FreqTableView {
	return FreqTableView{Name: rol.DisplayName(w.manual.Name), Rows: w.manual.Cells()}
}

func cloneGrid(g [][]string) [][]string {
	out := make([][]string, len(g))
	for i, row := range g {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Persisted returns the stored ROL, empty when none was generated
func (w *Workbench) Persisted(ctx context.Context) []string {
	return w.bridge.Load(ctx)
}

// Dimensions returns the grid size
func (w *Workbench) Dimensions() (rows, cols int) {
	return w.raw.Rows(), w.raw.Cols()
}
