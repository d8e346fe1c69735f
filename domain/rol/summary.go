package rol

import (
	"strconv"
	"strings"
)

// EmptySummary is shown in the information panel before any ROL is generated
const EmptySummary = "Nenhuma informação gerada."

// Summary renders the information panel: one "label: n," line per distinct
// label, the last line ending in "." instead of ",".
func Summary(list []string) string {
	if len(list) == 0 {
		return EmptySummary
	}
	rows := Frequencies(list)
	if len(rows) == 0 {
		return EmptySummary
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.Label)
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(r.FA))
		if i == len(rows)-1 {
			b.WriteByte('.')
		} else {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// Layout places list into a rows x cols display grid in row-major order.
// Values beyond the grid capacity are not shown; unused cells are empty.
func Layout(list []string, rows, cols int) [][]string {
	if rows <= 0 || cols <= 0 {
		return [][]string{}
	}
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			if i := r*cols + c; i < len(list) {
				grid[r][c] = list[i]
			}
		}
	}
	return grid
}

// DistinctLabels returns the distinct trimmed, non-empty labels of list in
// first-seen order.
func DistinctLabels(list []string) []string {
	rows := Frequencies(list)
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}
	return labels
}
