package postscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFontMetricsWidthFallsBackToDefault(t *testing.T) {
	fm := &FontMetrics{DefaultWidth: 600, Widths: map[rune]int{'a': 444}}
	assert.Equal(t, 444, fm.Width('a'))
	assert.Equal(t, 600, fm.Width('z'))
}

func TestFontMetricsKernZeroWhenAbsent(t *testing.T) {
	fm := &FontMetrics{}
	assert.Equal(t, 0, fm.Kern('A', 'V'))
}

func TestFontMetricsKernLooksUpPair(t *testing.T) {
	fm := timesMetrics()
	assert.Equal(t, -80, fm.Kern('A', 'V'))
}

func TestCourierMetricsUniformWidth(t *testing.T) {
	fm := courierMetrics()
	assert.Equal(t, 600, fm.Width('a'))
	assert.Equal(t, 600, fm.Width('W'))
}

func TestLoadFontKnownName(t *testing.T) {
	fm := LoadFont("Courier")
	assert.Equal(t, "Courier", fm.Name)
}

func TestLoadFontUnknownFallsBackToTimesRoman(t *testing.T) {
	fm := LoadFont("SomeUnknownFont")
	assert.Equal(t, "Times-Roman", fm.Name)
}
