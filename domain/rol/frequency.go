package rol

import (
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Frequencies counts each distinct trimmed label of list. Rows follow the order
// in which labels first appear; labels that trim to nothing are skipped.
func Frequencies(list []string) []FrequencyRow {
	index := make(map[string]int, len(list))
	rows := make([]FrequencyRow, 0, len(list))
	for _, v := range list {
		label := strings.TrimSpace(v)
		if label == "" {
			continue
		}
		if i, ok := index[label]; ok {
			rows[i].FA++
			continue
		}
		index[label] = len(rows)
		rows = append(rows, FrequencyRow{Label: label, FA: 1})
	}
	return rows
}

// Derive computes FAA, FR and FRA for rows in a single forward pass. FR is
// fa/total*100 and FRA is the running sum of FR. With a zero total the derived
// values stay zero and the table reports Blank.
func Derive(rows []FrequencyRow) Table {
	t := Table{Rows: make([]DerivedRow, len(rows))}
	if len(rows) == 0 {
		return t
	}

	fa := make(stats.Float64Data, len(rows))
	for i, r := range rows {
		fa[i] = float64(r.FA)
		t.Rows[i] = DerivedRow{Label: r.Label, FA: r.FA}
	}

	faa, err := stats.CumulativeSum(fa)
	if err != nil {
		return t
	}
	t.Total = int(faa[len(faa)-1])
	if t.Total == 0 {
		return t
	}

	total := float64(t.Total)
	fr := make(stats.Float64Data, len(rows))
	for i := range rows {
		fr[i] = fa[i] / total * 100
	}
	fra, err := stats.CumulativeSum(fr)
	if err != nil {
		return t
	}

	for i := range t.Rows {
		t.Rows[i].FAA = int(faa[i])
		t.Rows[i].FR = fr[i]
		t.Rows[i].FRA = fra[i]
	}
	return t
}

// Build is Derive(Frequencies(list))
func Build(list []string) Table {
	return Derive(Frequencies(list))
}

// Cells renders the table for display. Derived cells are empty when the table is
// blank.
func (t Table) Cells() []RowCells {
	cells := make([]RowCells, len(t.Rows))
	for i, r := range t.Rows {
		cells[i] = RowCells{Label: r.Label, FA: strconv.Itoa(r.FA)}
		if t.Blank() {
			continue
		}
		cells[i].FAA = strconv.Itoa(r.FAA)
		cells[i].FR = FormatPercent(r.FR)
		cells[i].FRA = FormatPercent(r.FRA)
	}
	return cells
}

// FormatPercent renders v with exactly two decimals and a trailing %, rounding
// halves away from zero.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(scalar.Round(v, 2), 'f', 2, 64) + "%"
}
