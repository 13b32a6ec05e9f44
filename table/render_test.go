package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDriver struct {
	pageW, pageH int
	fontH        int
	drawn        []string
	pages        int
}

func (d *fakeDriver) PageSize() (int, int) { return d.pageW, d.pageH }
func (d *fakeDriver) FontHeight() int      { return d.fontH }
func (d *fakeDriver) TextWidth(text string, opt CellOpt) int {
	return len(text) * 6
}
func (d *fakeDriver) DrawText(x, y int, text string, opt CellOpt) {
	if text != "" {
		d.drawn = append(d.drawn, text)
	}
}
func (d *fakeDriver) DrawLine(style LineStyle, x1, y1, x2, y2 int) {}
func (d *fakeDriver) NewPage()                                    { d.pages++ }

func TestNaturalSizesComputesWidestCell(t *testing.T) {
	tbl := New(2, 2)
	require.NoError(t, tbl.SetCell(0, 0, "short", AlignLeft))
	require.NoError(t, tbl.SetCell(1, 0, "a much longer value", AlignLeft))

	drv := &fakeDriver{pageW: 500, pageH: 500, fontH: 12}
	colWidths, rowHeights := NaturalSizes(tbl, drv)

	assert.Equal(t, len("a much longer value")*6, colWidths[0])
	assert.Equal(t, 12, rowHeights[0])
	assert.Equal(t, 12, rowHeights[1])
}

func TestRenderDrawsTitleAndCells(t *testing.T) {
	tbl := New(2, 2)
	tbl.Title = "Results"
	require.NoError(t, tbl.SetCell(0, 0, "a", AlignLeft))
	require.NoError(t, tbl.SetCell(0, 1, "b", AlignLeft))
	require.NoError(t, tbl.SetCell(1, 0, "c", AlignLeft))
	require.NoError(t, tbl.SetCell(1, 1, "d", AlignLeft))

	drv := &fakeDriver{pageW: 1000, pageH: 1000, fontH: 12}
	require.NoError(t, Render(tbl, drv))

	assert.Contains(t, drv.drawn, "Results")
	assert.Contains(t, drv.drawn, "a")
	assert.Contains(t, drv.drawn, "b")
	assert.Contains(t, drv.drawn, "c")
	assert.Contains(t, drv.drawn, "d")
}

func TestRenderSkipsTitleWhenNoTitleSet(t *testing.T) {
	tbl := New(1, 1)
	tbl.Title = "Hidden"
	tbl.NoTitle = true
	require.NoError(t, tbl.SetCell(0, 0, "x", AlignLeft))

	drv := &fakeDriver{pageW: 1000, pageH: 1000, fontH: 12}
	require.NoError(t, Render(tbl, drv))

	assert.NotContains(t, drv.drawn, "Hidden")
}

func TestRenderDrawsJoinedCellOnce(t *testing.T) {
	tbl := New(3, 3)
	require.NoError(t, tbl.JoinCells(0, 0, Span{Rows: 2, Cols: 2}, "merged", AlignLeft))

	drv := &fakeDriver{pageW: 1000, pageH: 1000, fontH: 12}
	require.NoError(t, Render(tbl, drv))

	count := 0
	for _, s := range drv.drawn {
		if s == "merged" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
