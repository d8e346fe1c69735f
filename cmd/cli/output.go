package main

import (
	"fmt"
	"io"
	"strings"

	"rolstat/adapters/excel"
	"rolstat/domain/rol"
	"rolstat/internal/storage"
	"rolstat/ports"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"})
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"})
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"})
	headerStyle  = lipgloss.NewStyle().Bold(true)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func gridTable(grid [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Rows(grid...).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		String()
}

func frequencyTable(rows []rol.RowCells) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Dados", "FA", "FAA", "FR", "FRA").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 0 {
				return cellStyle
			}
			return cellStyle.Align(lipgloss.Right)
		})
	for _, r := range rows {
		t.Row(r.Label, r.FA, r.FAA, r.FR, r.FRA)
	}
	return t.String()
}

func writeWorkbook(w io.Writer, name string, values []string) error {
	return excel.WriteTable(w, name, rol.Build(values).Cells(), values)
}

func describeChange(ev ports.ChangeEvent) string {
	stamp := dimStyle.Render(ev.At.Format("15:04:05"))
	switch {
	case ev.Removed():
		return fmt.Sprintf("%s %s removed", stamp, ev.Key)
	case ev.Key == storage.KeyValues:
		values, err := storage.DecodeList(*ev.NewValue)
		if err != nil {
			return fmt.Sprintf("%s %s %s", stamp, ev.Key, warnStyle.Render("unreadable: "+err.Error()))
		}
		return fmt.Sprintf("%s %s = [%s]", stamp, ev.Key, strings.Join(values, ", "))
	default:
		return fmt.Sprintf("%s %s = %q", stamp, ev.Key, *ev.NewValue)
	}
}
