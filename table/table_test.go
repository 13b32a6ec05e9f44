package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableAllCellsEmpty(t *testing.T) {
	tbl := New(3, 2)
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			_, _, ok := tbl.CellAt(r, c)
			assert.False(t, ok)
		}
	}
}

func TestSetCellAndCellAt(t *testing.T) {
	tbl := New(3, 2)
	require.NoError(t, tbl.SetCell(0, 1, "hello", AlignCenter))

	cell, opt, ok := tbl.CellAt(0, 1)
	require.True(t, ok)
	assert.Equal(t, "hello", cell.Text)
	assert.Equal(t, AlignCenter, opt)
}

func TestSetCellOutOfBoundsErrors(t *testing.T) {
	tbl := New(2, 2)
	assert.Error(t, tbl.SetCell(5, 5, "x", AlignLeft))
}

func TestSetOffsetShiftsCoordinates(t *testing.T) {
	tbl := New(3, 3)
	tbl.SetOffset(1, 1)
	require.NoError(t, tbl.SetCell(0, 0, "shifted", AlignLeft))

	cell, _, ok := tbl.CellAt(1, 1)
	require.True(t, ok)
	assert.Equal(t, "shifted", cell.Text)
}

func TestJoinCellsMarksCoveredPositionsEmpty(t *testing.T) {
	tbl := New(4, 4)
	require.NoError(t, tbl.JoinCells(0, 0, Span{Rows: 2, Cols: 2}, "joined", AlignLeft))

	origin, opt, ok := tbl.CellAt(0, 0)
	require.True(t, ok)
	assert.Equal(t, "joined", origin.Text)
	assert.True(t, opt&Joined != 0)

	_, _, ok = tbl.CellAt(0, 1)
	assert.False(t, ok)
	_, _, ok = tbl.CellAt(1, 0)
	assert.False(t, ok)
	_, _, ok = tbl.CellAt(1, 1)
	assert.False(t, ok)
}

func TestJoinCellsOutOfBoundsErrors(t *testing.T) {
	tbl := New(2, 2)
	assert.Error(t, tbl.JoinCells(1, 1, Span{Rows: 2, Cols: 2}, "x", AlignLeft))
}

func TestHLineAndVLine(t *testing.T) {
	tbl := New(3, 3)
	require.NoError(t, tbl.HLine(LineSingle, 0, 2, 1))
	require.NoError(t, tbl.VLine(LineDouble, 0, 2, 1))

	up, down, left, right := tbl.Intersection(1, 1)
	assert.Equal(t, LineDouble, up)
	assert.Equal(t, LineDouble, down)
	assert.Equal(t, LineSingle, left)
	assert.Equal(t, LineSingle, right)
}

func TestHLineOutOfBoundsErrors(t *testing.T) {
	tbl := New(2, 2)
	assert.Error(t, tbl.HLine(LineSingle, 0, 5, 0))
}

func TestBoxDrawsFrameAndInterior(t *testing.T) {
	tbl := New(3, 3)
	require.NoError(t, tbl.Box(LineSingle, LineSingle, LineThick, LineThick, 0, 0, 2, 2))

	up, down, left, right := tbl.Intersection(1, 1)
	assert.Equal(t, LineThick, up)
	assert.Equal(t, LineThick, down)
	assert.Equal(t, LineThick, left)
	assert.Equal(t, LineThick, right)
}

func TestLineStyleSpacingMask(t *testing.T) {
	s := LineSingle | LineSpacing
	assert.Equal(t, LineSingle, s.base())
	assert.True(t, s.hasSpacing())
	assert.False(t, LineSingle.hasSpacing())
}

func TestSpanJoined(t *testing.T) {
	assert.False(t, Span{Rows: 1, Cols: 1}.joined())
	assert.True(t, Span{Rows: 2, Cols: 1}.joined())
	assert.True(t, Span{Rows: 1, Cols: 2}.joined())
}
