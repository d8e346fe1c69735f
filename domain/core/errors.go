package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrEmptyInput   = errors.New("no raw values to organize")
	ErrNonNumeric   = errors.New("values are not numeric")
	ErrUnknownMode  = errors.New("unknown sort mode")
	ErrCellRange    = errors.New("cell outside grid")
	ErrInvalidCount = errors.New("invalid absolute frequency")

	// Storage errors
	ErrStorage          = errors.New("storage unavailable")
	ErrPayloadMalformed = errors.New("persisted payload is not a list")

	// Rendering
	ErrNothingToRender = errors.New("nothing to render")
	ErrChartNotFound   = errors.New("chart not rendered")
)

// NewCellRangeError reports a grid coordinate that does not exist
func NewCellRangeError(row, col, rows, cols int) error {
	return fmt.Errorf("%w: (%d,%d) in %dx%d grid", ErrCellRange, row, col, rows, cols)
}

// IsInputError reports errors caused by what the operator typed
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrNonNumeric) ||
		errors.Is(err, ErrUnknownMode) ||
		errors.Is(err, ErrCellRange) ||
		errors.Is(err, ErrInvalidCount)
}
