package rol

import (
	"cmp"
	"fmt"
	"slices"

	"rolstat/domain/core"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newCollator returns a pt-BR collator comparing at base strength: case and
// accents do not distinguish strings. Collators are not safe for concurrent
// use, so each sort builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.BrazilianPortuguese, collate.IgnoreCase, collate.IgnoreDiacritics)
}

// Sort returns a sorted copy of values. Sorting is stable in every mode.
//
// In ModeNumeric every value must parse with ParseNumber, otherwise a
// *NonNumericError listing the offending values is returned and nothing is
// sorted. ModeAuto sorts numerically when every value parses and
// alphabetically otherwise.
func Sort(values []string, mode SortMode) ([]string, error) {
	sorted := slices.Clone(values)
	if len(sorted) == 0 {
		return []string{}, nil
	}

	switch mode {
	case ModeNumeric:
		return sortNumeric(sorted)
	case ModeAlpha:
		sortAlpha(sorted)
		return sorted, nil
	case ModeAuto:
		if AllNumeric(sorted) {
			return sortNumeric(sorted)
		}
		sortAlpha(sorted)
		return sorted, nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnknownMode, mode)
}

type numericKey struct {
	raw string
	n   float64
}

func sortNumeric(values []string) ([]string, error) {
	keys := make([]numericKey, len(values))
	var bad []string
	for i, v := range values {
		n, ok := ParseNumber(v)
		if !ok {
			bad = append(bad, v)
			continue
		}
		keys[i] = numericKey{raw: v, n: n}
	}
	if len(bad) > 0 {
		return nil, &NonNumericError{Values: bad}
	}

	slices.SortStableFunc(keys, func(a, b numericKey) int { return cmp.Compare(a.n, b.n) })
	for i, k := range keys {
		values[i] = k.raw
	}
	return values, nil
}

func sortAlpha(values []string) {
	c := newCollator()
	slices.SortStableFunc(values, c.CompareString)
}

// labelOrder compares two labels numerically when both are numbers and by
// collation otherwise.
func labelOrder(c *collate.Collator) func(a, b string) int {
	return func(a, b string) int {
		na, okA := ParseNumber(a)
		nb, okB := ParseNumber(b)
		if okA && okB {
			return cmp.Compare(na, nb)
		}
		return c.CompareString(a, b)
	}
}
