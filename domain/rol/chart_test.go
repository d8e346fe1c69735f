package rol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectChartEmpty(t *testing.T) {
	_, ok := ProjectChart(nil)
	assert.False(t, ok)

	_, ok = ProjectChart([]string{"", "  "})
	assert.False(t, ok, "blank values are not rendered")
}

func TestProjectChartSeries(t *testing.T) {
	data, ok := ProjectChart([]string{"1", "2", "2", "3"})
	require.True(t, ok)

	assert.Equal(t, []string{"1", "2", "3"}, data.Labels)
	assert.Equal(t, []int{1, 2, 1}, data.Counts)
	assert.Equal(t, []int{1, 3, 4}, data.Cumulative)
	assert.Equal(t, []float64{25, 50, 25}, data.Percentages)
	assert.Equal(t, 4, data.Total)
}

func TestProjectChartOrdersLabels(t *testing.T) {
	// Labels not in ROL order are put back in numeric order.
	data, ok := ProjectChart([]string{"10", "9", "9"})
	require.True(t, ok)
	assert.Equal(t, []string{"9", "10"}, data.Labels)
	assert.Equal(t, []int{2, 3}, data.Cumulative)

	data, ok = ProjectChart([]string{"pera", "Banana", "abacaxi"})
	require.True(t, ok)
	assert.Equal(t, []string{"abacaxi", "Banana", "pera"}, data.Labels)
}

func TestParseChartKind(t *testing.T) {
	for _, spec := range ChartSpecs {
		kind, ok := ParseChartKind(string(spec.Kind))
		assert.True(t, ok)
		assert.Equal(t, spec.Kind, kind)
	}
	_, ok := ParseChartKind("radar")
	assert.False(t, ok)
}
