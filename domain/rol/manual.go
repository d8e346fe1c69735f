package rol

import (
	"fmt"
	"strconv"
	"strings"

	"rolstat/domain/core"
)

// DefaultTableName is shown when a frequency table has no name
const DefaultTableName = "Sem nome"

// DefaultTableNames is the built-in example list of education levels. A
// persisted ROL equal to it is not used to label the manual table.
var DefaultTableNames = []string{
	"Analfabetos",
	"Fundamental Incompleto",
	"Fundamental Completo",
	"Ensino Médio Incompleto",
	"Ensino Médio Completo",
	"Superior Incompleto",
	"Superior Completo",
}

// IsDefaultROL reports whether list is exactly DefaultTableNames, ignoring
// surrounding whitespace.
func IsDefaultROL(list []string) bool {
	if len(list) != len(DefaultTableNames) {
		return false
	}
	for i, v := range list {
		if strings.TrimSpace(v) != DefaultTableNames[i] {
			return false
		}
	}
	return true
}

// DisplayName trims name and substitutes DefaultTableName when empty
func DisplayName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return DefaultTableName
}

// ManualTable is a frequency table whose absolute frequencies are typed by
// the operator, one optional count per label.
type ManualTable struct {
	Name   string
	labels []string
	counts []*int
}

// NewManualTable creates a table with one empty FA cell per label
func NewManualTable(name string, labels []string) *ManualTable {
	return &ManualTable{
		Name:   name,
		labels: append([]string(nil), labels...),
		counts: make([]*int, len(labels)),
	}
}

// Labels returns the row labels
func (m *ManualTable) Labels() []string {
	return append([]string(nil), m.labels...)
}

// SetCount records the FA typed for row i. Blank input clears the cell. Input
// that is not a non-negative integer also clears the cell and is reported with
// core.ErrInvalidCount.
func (m *ManualTable) SetCount(i int, raw string) error {
	if i < 0 || i >= len(m.counts) {
		return fmt.Errorf("%w: row %d of %d", core.ErrCellRange, i, len(m.counts))
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		m.counts[i] = nil
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		m.counts[i] = nil
		return fmt.Errorf("%w: %q", core.ErrInvalidCount, raw)
	}
	m.counts[i] = &n
	return nil
}

// Count returns the FA of row i and whether one was entered
func (m *ManualTable) Count(i int) (int, bool) {
	if i < 0 || i >= len(m.counts) || m.counts[i] == nil {
		return 0, false
	}
	return *m.counts[i], true
}

// Table derives the distribution, treating missing counts as zero. Without any
// non-zero count the table is blank.
func (m *ManualTable) Table() Table {
	rows := make([]FrequencyRow, len(m.labels))
	for i, label := range m.labels {
		n, _ := m.Count(i)
		rows[i] = FrequencyRow{Label: label, FA: n}
	}
	return Derive(rows)
}

// Cells renders the table. FA shows what was entered; empty cells stay empty.
func (m *ManualTable) Cells() []RowCells {
	cells := m.Table().Cells()
	for i := range cells {
		if _, ok := m.Count(i); !ok {
			cells[i].FA = ""
		}
	}
	return cells
}
