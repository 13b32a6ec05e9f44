package table

// Driver is the minimal device surface a renderer paints onto: report
// page size and font height, measure text, draw text runs and rule
// segments, and start a new page. Concrete output backends (e.g. pspp/postscript) implement
// this. Grounded on original_source tab.c's som_table_class dispatch to
// a device-specific "driver".
type Driver interface {
	PageSize() (width, height int)
	FontHeight() int
	TextWidth(text string, opt CellOpt) int
	DrawText(x, y int, text string, opt CellOpt)
	DrawLine(style LineStyle, x1, y1, x2, y2 int)
	NewPage()
}

// NaturalSizes computes each column's natural width (the widest
// unwrapped cell, clipped to the page width) and each row's natural height (one font height, since
// word-wrapped height depends on the column width chosen by the
// driver's own layout pass).
func NaturalSizes(t *Table, drv Driver) (colWidths, rowHeights []int) {
	pageW, _ := drv.PageSize()
	colWidths = make([]int, t.NC)
	rowHeights = make([]int, t.NR)
	fh := drv.FontHeight()
	for r := 0; r < t.NR; r++ {
		rowHeights[r] = fh
		for c := 0; c < t.NC; c++ {
			cell, opt, ok := t.CellAt(r, c)
			if !ok {
				continue
			}
			w := drv.TextWidth(cell.Text, opt)
			if w > pageW {
				w = pageW
			}
			if w > colWidths[c] {
				colWidths[c] = w
			}
		}
	}
	return colWidths, rowHeights
}

// Render paginates t across drv: the title (unless NoTitle), then for
// each page strip, rows drawn in three bands — top headers, a
// Cumulate-sliced body strip, bottom headers — each split column-wise
// into Cumulate-sized strips across all columns. The Left and Right
// header counts are not consulted: no columns are repeated as left or
// right headers on each strip. Joined cells draw once, at the strip containing their top-left
// corner; strips covering the rest of the span skip them (tab.c's
// "draw exactly once" rule).
func Render(t *Table, drv Driver) error {
	colWidths, rowHeights := NaturalSizes(t, drv)
	pageW, pageH := drv.PageSize()
	drawn := make(map[int]bool)

	titleHeight := 0
	if !t.NoTitle && t.Title != "" {
		drv.DrawText(0, 0, t.Title, AlignLeft)
		titleHeight = drv.FontHeight()
	}

	bodyStart, bodyEnd := t.Top, t.NR-t.Bottom
	if bodyEnd < bodyStart {
		bodyEnd = bodyStart
	}

	renderRowBand := func(rows []int, y int) {
		col := 0
		for col < t.NC {
			endCol, _ := Cumulate(colWidths, 0, col, pageW)
			for _, r := range rows {
				for c := col; c <= endCol && c < t.NC; c++ {
					renderCell(t, drv, r, c, drawn)
				}
			}
			col = endCol + 1
		}
	}

	row := bodyStart
	y := titleHeight
	first := true
	for row <= bodyEnd || first {
		first = false
		endRow, consumed := Cumulate(rowHeights[min(row, t.NR-1):max(bodyEnd, row)], y, 0, pageH)
		endRow += row

		headerRows := func(n, from int) []int {
			rows := make([]int, n)
			for i := range rows {
				rows[i] = from + i
			}
			return rows
		}
		renderRowBand(headerRows(t.Top, 0), y)
		bodyRows := make([]int, 0, endRow-row+1)
		for r := row; r <= endRow && r < bodyEnd; r++ {
			bodyRows = append(bodyRows, r)
		}
		renderRowBand(bodyRows, y)
		renderRowBand(headerRows(t.Bottom, t.NR-t.Bottom), y)

		row = endRow + 1
		if row < bodyEnd {
			drv.NewPage()
			y = 0
		}
		_ = consumed
		if bodyEnd <= bodyStart {
			break
		}
	}
	return nil
}

func renderCell(t *Table, drv Driver, r, c int, drawn map[int]bool) {
	if r < 0 || r >= t.NR || c < 0 || c >= t.NC {
		return
	}
	cell, opt, ok := t.CellAt(r, c)
	if !ok {
		return
	}
	key := r*t.CF + c
	if drawn[key] {
		return
	}
	drawn[key] = true
	drv.DrawText(c, r, cell.Text, opt)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
