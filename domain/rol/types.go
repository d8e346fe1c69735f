// Package rol holds the pure frequency-table engine: sort-mode resolution,
// absolute/relative frequency derivation and the chart projection of a ROL
// (the sorted list of raw observations).
package rol

import (
	"fmt"
	"strings"

	"rolstat/domain/core"
)

// SortMode selects how raw values are ordered
type SortMode string

const (
	ModeNumeric SortMode = "numeric"
	ModeAlpha   SortMode = "alpha"
	ModeAuto    SortMode = "auto"
)

// ParseSortMode parses a mode name; the empty string selects ModeAuto
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNumeric:
		return ModeNumeric, nil
	case ModeAlpha:
		return ModeAlpha, nil
	case ModeAuto, "":
		return ModeAuto, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownMode, s)
}

// FrequencyRow is one distinct label and its absolute frequency (FA)
type FrequencyRow struct {
	Label string `json:"label"`
	FA    int    `json:"fa"`
}

// DerivedRow extends a FrequencyRow with its cumulative and relative measures.
// FR and FRA are percentages.
type DerivedRow struct {
	Label string  `json:"label"`
	FA    int     `json:"fa"`
	FAA   int     `json:"faa"`
	FR    float64 `json:"fr"`
	FRA   float64 `json:"fra"`
}

// Table is a frequency distribution. When Total is zero every derived value is
// meaningless and is rendered blank.
type Table struct {
	Rows  []DerivedRow `json:"rows"`
	Total int          `json:"total"`
}

// Blank reports whether derived cells should be shown empty
func (t Table) Blank() bool { return t.Total == 0 }

// RowCells is the display form of a DerivedRow
type RowCells struct {
	Label string `json:"label"`
	FA    string `json:"fa"`
	FAA   string `json:"faa"`
	FR    string `json:"fr"`
	FRA   string `json:"fra"`
}

// NonNumericError is returned by Sort in numeric mode when some values cannot be
// read as numbers. It is recoverable: the caller may retry with ModeAlpha.
type NonNumericError struct {
	Values []string
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("%d value(s) are not numeric: %s", len(e.Values), strings.Join(e.Values, ", "))
}

func (e *NonNumericError) Unwrap() error { return core.ErrNonNumeric }
