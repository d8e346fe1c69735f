package ports

import (
	"context"
	"io"

	"rolstat/domain/rol"
)

// Chart is one rendered chart instance
type Chart interface {
	Kind() rol.ChartKind
	Title() string
	// WriteTo writes the rendered image
	WriteTo(w io.Writer) (int64, error)
	// Destroy releases the chart; it must not be written afterwards
	Destroy()
}

// ChartRenderer draws one chart per entry of rol.ChartSpecs
type ChartRenderer interface {
	Render(ctx context.Context, data rol.ChartData) ([]Chart, error)
}
