package rol

import (
	"slices"
)

// ChartKind names one of the charts drawn from a ROL
type ChartKind string

const (
	ChartBarHorizontal ChartKind = "bar"
	ChartLine          ChartKind = "line"
	ChartColumn        ChartKind = "column"
	ChartPie           ChartKind = "pie"
)

// ChartSpec describes what a chart shows
type ChartSpec struct {
	Kind  ChartKind `json:"kind"`
	Title string    `json:"title"`
}

// ChartSpecs lists the charts in render order
var ChartSpecs = []ChartSpec{
	{Kind: ChartBarHorizontal, Title: "Frequência Absoluta (FA)"},
	{Kind: ChartLine, Title: "Frequência Absoluta Acumulada (FAA)"},
	{Kind: ChartColumn, Title: "Frequência Absoluta (FA) — Coluna"},
	{Kind: ChartPie, Title: "Frequência Relativa (%)"},
}

// ParseChartKind reports whether s names a known chart
func ParseChartKind(s string) (ChartKind, bool) {
	for _, spec := range ChartSpecs {
		if string(spec.Kind) == s {
			return spec.Kind, true
		}
	}
	return "", false
}

// ChartData holds the four parallel series charts are drawn from
type ChartData struct {
	Labels      []string  `json:"labels"`
	Counts      []int     `json:"counts"`
	Cumulative  []int     `json:"cumulative"`
	Percentages []float64 `json:"percentages"`
	Total       int       `json:"total"`
}

// ProjectChart recomputes the distribution of list and projects it into chart
// series. Labels are ordered numerically when both sides are numbers and by
// collation otherwise. ok is false when there is nothing to render.
func ProjectChart(list []string) (data ChartData, ok bool) {
	rows := Frequencies(list)
	if len(rows) == 0 {
		return ChartData{}, false
	}

	order := labelOrder(newCollator())
	slices.SortStableFunc(rows, func(a, b FrequencyRow) int { return order(a.Label, b.Label) })

	t := Derive(rows)
	data = ChartData{
		Labels:      make([]string, len(t.Rows)),
		Counts:      make([]int, len(t.Rows)),
		Cumulative:  make([]int, len(t.Rows)),
		Percentages: make([]float64, len(t.Rows)),
		Total:       t.Total,
	}
	for i, r := range t.Rows {
		data.Labels[i] = r.Label
		data.Counts[i] = r.FA
		data.Cumulative[i] = r.FAA
		data.Percentages[i] = r.FR
	}
	return data, true
}
