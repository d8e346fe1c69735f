package rol

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber reads a raw value as a number. The first comma is taken as the
// decimal separator, then the text must be a numeric literal in the sense of
// ECMAScript Number(): optional surrounding whitespace, decimal with optional
// sign and exponent, Infinity, or an unsigned 0x/0o/0b integer.
func ParseNumber(raw string) (float64, bool) {
	return numberLiteral(strings.Replace(raw, ",", ".", 1))
}

func numberLiteral(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return radixLiteral(s[2:], base)
		}
	}

	if !decimalLiteral.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range literals saturate to ±Inf or 0.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v, true
		}
		return 0, false
	}
	return v, true
}

func radixLiteral(digits string, base int) (float64, bool) {
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, false
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0, false
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f, true
}

// AllNumeric reports whether every value parses with ParseNumber. An empty list
// is not numeric.
func AllNumeric(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if _, ok := ParseNumber(v); !ok {
			return false
		}
	}
	return true
}
