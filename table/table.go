// Package table implements the tabular output model used to typeset
// procedure results: a 2D grid of cells and rules with joined-cell
// support, header bands, pagination cumulation, and a driver-agnostic
// rendering walk. Grounded on original_source src/tab.c.
package table

import "fmt"

// CellOpt is a bitset of per-cell rendering options (tab.c's "opt"
// byte stored in ct[]).
type CellOpt uint8

const (
	AlignLeft CellOpt = 0
	AlignCenter CellOpt = 1 << iota
	AlignRight
	FontFixed
	Emphasis
	Empty // cell has no content; part of the allocation stride, not a gap
	Joined
)

// LineStyle names a rule's appearance (tab.c's TAL_* constants). Spacing
// is a combinable flag, not a style of its own, matching the original's
// "(style & ~TAL_SPACING)" masking.
type LineStyle int

const (
	LineNone LineStyle = iota
	LineSingle
	LineDouble
	LineThick
	lineStyleCount
)

const LineSpacing LineStyle = LineStyle(1) << 8

func (s LineStyle) base() LineStyle    { return s &^ LineSpacing }
func (s LineStyle) hasSpacing() bool   { return s&LineSpacing != 0 }

// ColStyle selects how a wide table breaks across page columns.
type ColStyle int

const (
	ColNone ColStyle = iota
	ColDown
	ColAcross
)

// Cell holds one grid position's content. A joined cell's top-left
// position carries Span; positions it covers carry Empty in CT and are
// skipped at render time (tab.c: "joined cells draw exactly once, at
// their top-left corner").
type Cell struct {
	Text string
	Span Span // zero value means "not joined"
}

// Span describes a joined cell's extent, in cells, starting from its
// top-left position.
type Span struct {
	Rows, Cols int
}

func (s Span) joined() bool { return s.Rows > 1 || s.Cols > 1 }

// View is the table's current row/column offset register, set by
// Offset and consulted by every coordinate-taking method — an explicit
// field rather than a package-level mutable global, resolving the
// col_ofs/row_ofs ambiguity noted in DESIGN.md.
type View struct {
	RowOffset, ColOffset int
}

// Table is a typeset table: a cc[nc×cf]/ct[nc×cf] cell grid, rule
// arrays rh/rv, header band counts, and layout flags. Grounded on
// original_source tab.c's "struct tab_table".
type Table struct {
	NR, NC int // logical row/column count
	CF     int // column allocation stride; CF >= NC

	cc []Cell
	ct []CellOpt

	rh []LineStyle // horizontal rules: NC * (NR+1)
	rv []LineStyle // vertical rules: (NC+1) * NR

	Left, Right, Top, Bottom int // header band sizes, in rows/cols
	Title                    string
	NoTitle, NoSpacing       bool
	ColStyle                 ColStyle
	ColGroup                 int

	Offset View
}

// New creates an nc×nr table with all cells empty and no rules.
func New(nc, nr int) *Table {
	t := &Table{NR: nr, NC: nc, CF: nc}
	t.cc = make([]Cell, nr*nc)
	t.ct = make([]CellOpt, nr*nc)
	for i := range t.ct {
		t.ct[i] = Empty
	}
	t.rh = make([]LineStyle, nc*(nr+1))
	t.rv = make([]LineStyle, (nc+1)*nr)
	return t
}

// SetOffset installs the row/column offset used by subsequent
// coordinate-taking calls (tab_offset).
func (t *Table) SetOffset(row, col int) { t.Offset = View{RowOffset: row, ColOffset: col} }

func (t *Table) index(row, col int) int { return row*t.CF + col }

// SetCell stores text at (row, col), relative to the current Offset.
func (t *Table) SetCell(row, col int, text string, opt CellOpt) error {
	r, c := row+t.Offset.RowOffset, col+t.Offset.ColOffset
	if r < 0 || r >= t.NR || c < 0 || c >= t.NC {
		return fmt.Errorf("table: cell (%d,%d) out of bounds (%dx%d)", row, col, t.NC, t.NR)
	}
	i := t.index(r, c)
	t.cc[i] = Cell{Text: text}
	t.ct[i] = opt &^ Empty
	return nil
}

// JoinCells stores text spanning rows [row, row+span.Rows) and columns
// [col, col+span.Cols), marking the covered non-origin positions Empty
// so the renderer skips them (tab.c's TAB_JOIN handling).
func (t *Table) JoinCells(row, col int, span Span, text string, opt CellOpt) error {
	r0, c0 := row+t.Offset.RowOffset, col+t.Offset.ColOffset
	if span.Rows < 1 {
		span.Rows = 1
	}
	if span.Cols < 1 {
		span.Cols = 1
	}
	if r0 < 0 || c0 < 0 || r0+span.Rows > t.NR || c0+span.Cols > t.NC {
		return fmt.Errorf("table: join at (%d,%d)+%v out of bounds (%dx%d)", row, col, span, t.NC, t.NR)
	}
	origin := t.index(r0, c0)
	t.cc[origin] = Cell{Text: text, Span: span}
	t.ct[origin] = (opt | Joined) &^ Empty
	for r := r0; r < r0+span.Rows; r++ {
		for c := c0; c < c0+span.Cols; c++ {
			if r == r0 && c == c0 {
				continue
			}
			t.ct[t.index(r, c)] = Empty
		}
	}
	return nil
}

// CellAt returns the cell and options at (row, col), or ok=false if the
// position is covered by a joined cell but is not its origin.
func (t *Table) CellAt(row, col int) (Cell, CellOpt, bool) {
	i := t.index(row, col)
	opt := t.ct[i]
	if opt&Empty != 0 && !t.cc[i].Span.joined() {
		return Cell{}, opt, false
	}
	return t.cc[i], opt, true
}

// HLine draws a horizontal rule of style at row y, columns [x1, x2].
func (t *Table) HLine(style LineStyle, x1, x2, y int) error {
	x1, x2, y = x1+t.Offset.ColOffset, x2+t.Offset.ColOffset, y+t.Offset.RowOffset
	if x1 < 0 || x2 >= t.NC || y < 0 || y > t.NR {
		return fmt.Errorf("table: hline out of bounds")
	}
	for x := x1; x <= x2; x++ {
		t.rh[y*t.NC+x] = style
	}
	return nil
}

// VLine draws a vertical rule of style at column x, rows [y1, y2].
func (t *Table) VLine(style LineStyle, y1, y2, x int) error {
	x, y1, y2 = x+t.Offset.ColOffset, y1+t.Offset.RowOffset, y2+t.Offset.RowOffset
	if x < 0 || x > t.NC || y1 < 0 || y2 >= t.NR {
		return fmt.Errorf("table: vline out of bounds")
	}
	for y := y1; y <= y2; y++ {
		t.rv[y*(t.NC+1)+x] = style
	}
	return nil
}

// Box draws a rectangular frame f_h/f_v plus interior rules i_h/i_v
// (tab_box): the outer edges use f_h/f_v, every interior gridline uses
// i_h/i_v.
func (t *Table) Box(fh, fv, ih, iv LineStyle, x1, y1, x2, y2 int) error {
	if err := t.HLine(fh, x1, x2, y1); err != nil {
		return err
	}
	if err := t.HLine(fh, x1, x2, y2+1); err != nil {
		return err
	}
	if err := t.VLine(fv, y1, y2, x1); err != nil {
		return err
	}
	if err := t.VLine(fv, y1, y2, x2+1); err != nil {
		return err
	}
	for y := y1 + 1; y <= y2; y++ {
		if err := t.HLine(ih, x1, x2, y); err != nil {
			return err
		}
	}
	for x := x1 + 1; x <= x2; x++ {
		if err := t.VLine(iv, y1, y2, x); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) hruleAt(row, x int) LineStyle {
	if row < 0 || row > t.NR || x < 0 || x >= t.NC {
		return LineNone
	}
	return t.rh[row*t.NC+x]
}

func (t *Table) vruleAt(y, col int) LineStyle {
	if y < 0 || y >= t.NR || col < 0 || col > t.NC {
		return LineNone
	}
	return t.rv[y*(t.NC+1)+col]
}

// Intersection picks a composite rule primitive for the four rule
// segments meeting at a grid corner, as the renderer does at every
// interior point (tab.c's corner-drawing logic in tabi_render).
func (t *Table) Intersection(row, col int) (up, down, left, right LineStyle) {
	up = t.vruleAt(row-1, col)
	down = t.vruleAt(row, col)
	left = t.hruleAt(row, col-1)
	right = t.hruleAt(row, col)
	return
}
