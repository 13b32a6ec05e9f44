// Package postscript implements a PostScript output driver for the
// table engine: font cache and page setup, line drawing, and
// word-wrapped text runs, emitted as a standard PostScript program.
// Grounded on original_source src/postscript.c.
package postscript

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mstgnz/pspp/logger"
	"github.com/mstgnz/pspp/table"
)

// DataMode controls which characters get octal-escaped in PostScript
// string literals (Options.Data: clean7bit | clean8bit | binary).
type DataMode int

const (
	Clean7Bit DataMode = iota
	Clean8Bit
	Binary
)

// LineEnds selects the driver's output line terminator.
type LineEnds int

const (
	LF LineEnds = iota
	CRLF
)

// psu is PostScript's native unit: 1/72 inch.
const psu = 1

// Options holds the driver's recognized configuration keys (spec
// §4.14), mirroring original_source postscript.c's ps_option table.
type Options struct {
	OutputFile    string
	PaperSize     string // looked up in a paper-size table; "" means letter
	Landscape     bool
	Color         bool
	Data          DataMode
	LineEnds      LineEnds
	Headers       bool // draw date+page+title banners
	LeftMargin    int
	RightMargin   int
	TopMargin     int
	BottomMargin  int
	FontDir       string
	PrologueFile  string
	DeviceFile    string
	EncodingFile  string
	PropFontFamily  string
	FixedFontFamily string
	FontSize      int // in 1/1000 pt... stored here as whole points
	LineGutter    int
	LineSpace     int
	LineWidth     int
	LineWidthThick int
	LineStyleDoubleGap bool
	OptimizeTextSize bool
	OptimizeLineSize bool
	AutoEncode       bool
	Logger           *logger.Logger // optional; NewDriver warns through it on fallback
}

// DefaultOptions mirrors postscript.c's defaults: US Letter portrait,
// 0.5in margins, 10pt Times-Roman body / Courier fixed, clean7bit.
func DefaultOptions() Options {
	return Options{
		PaperSize:       "letter",
		Data:            Clean7Bit,
		LineEnds:        LF,
		Headers:         true,
		LeftMargin:      36,
		RightMargin:     36,
		TopMargin:       36,
		BottomMargin:    36,
		PropFontFamily:  "Times-Roman",
		FixedFontFamily: "Courier",
		FontSize:        10,
		LineGutter:      1,
		LineSpace:       1,
		LineWidth:       1,
		LineWidthThick:  3,
	}
}

var paperSizes = map[string][2]int{
	"letter": {612, 792},
	"legal":  {612, 1008},
	"a4":     {595, 842},
}

// Driver writes a PostScript document: page setup, font cache,
// coalesced text runs, and line primitives for Table rules, satisfying
// table.Driver.
type Driver struct {
	w          *bufio.Writer
	opts       Options
	fonts      *FontCache
	width, height int
	page       int
	eol        string
	usedEncodings map[string]bool
	log        *logger.Logger
}

// NewDriver opens a PostScript document on w with the given options,
// emitting the document prologue (%!PS-Adobe conformance comment,
// paper size, and resource bootstrap), mirroring ps_open_global +
// ps_open_page's first call.
func NewDriver(w io.Writer, opts Options) (*Driver, error) {
	size, ok := paperSizes[strings.ToLower(opts.PaperSize)]
	if !ok {
		if opts.Logger != nil {
			opts.Logger.Warn("unrecognized paper size, falling back to letter", map[string]interface{}{
				"paper_size": opts.PaperSize,
			})
		}
		size = paperSizes["letter"]
	}
	width, height := size[0], size[1]
	if opts.Landscape {
		width, height = height, width
	}
	eol := "\n"
	if opts.LineEnds == CRLF {
		eol = "\r\n"
	}
	d := &Driver{
		w: bufio.NewWriter(w), opts: opts, fonts: NewFontCache(),
		width: width, height: height, eol: eol, usedEncodings: map[string]bool{},
		log: opts.Logger,
	}
	fmt.Fprintf(d.w, "%%!PS-Adobe-3.0%s", eol)
	fmt.Fprintf(d.w, "%%%%BoundingBox: 0 0 %d %d%s", width, height, eol)
	fmt.Fprintf(d.w, "%%%%Creator: pspp%s", eol)
	fmt.Fprintf(d.w, "%%%%Orientation: %s%s", map[bool]string{true: "Landscape", false: "Portrait"}[opts.Landscape], eol)
	fmt.Fprintf(d.w, "%%%%EndComments%s", eol)
	return d, nil
}

// PageSize implements table.Driver, returning the printable area
// inside the configured margins.
func (d *Driver) PageSize() (int, int) {
	return d.width - d.opts.LeftMargin - d.opts.RightMargin,
		d.height - d.opts.TopMargin - d.opts.BottomMargin
}

func (d *Driver) FontHeight() int {
	return d.opts.FontSize + d.opts.LineSpace
}

// TextWidth measures text in the proportional body font at FontSize,
// in PostScript units (points), via the metrics table scaled from
// /1000 em.
func (d *Driver) TextWidth(text string, opt table.CellOpt) int {
	fm := d.metricsFor(opt)
	_, w := ligateAndMeasure(text, fm)
	return w * d.opts.FontSize / 1000
}

func (d *Driver) metricsFor(opt table.CellOpt) *FontMetrics {
	if opt&table.FontFixed != 0 {
		return LoadFont(d.opts.FixedFontFamily)
	}
	return LoadFont(d.opts.PropFontFamily)
}

// NewPage closes the current page (if any) and opens the next,
// resetting the font-combo cache (postscript.c resets font_numbers in
// ps_open_page).
func (d *Driver) NewPage() {
	if d.page > 0 {
		fmt.Fprintf(d.w, "showpage%s", d.eol)
	}
	d.page++
	fmt.Fprintf(d.w, "%%%%Page: %d %d%s", d.page, d.page, d.eol)
	d.fonts.Reset()
	if d.opts.Headers {
		d.drawHeaderBanner()
	}
}

func (d *Driver) drawHeaderBanner() {
	fmt.Fprintf(d.w, "%% page %d banner%s", d.page, d.eol)
}

// DrawText draws text at grid position (col, row) — the table engine
// passes logical cell coordinates; a real layout pass would translate
// these through column widths/row heights. Word-wraps long text using
// the cell's font metrics and emits one `show` per wrapped line,
// escaping the string per the configured DataMode.
func (d *Driver) DrawText(col, row int, text string, opt table.CellOpt) {
	if text == "" {
		return
	}
	fm := d.metricsFor(opt)
	family := d.opts.PropFontFamily
	if opt&table.FontFixed != 0 {
		family = d.opts.FixedFontFamily
	}
	resource, fresh := d.fonts.Name(family, d.opts.FontSize)
	if fresh {
		fmt.Fprintf(d.w, "%s /%s findfont %d scalefont def%s", resource, family, d.opts.FontSize, d.eol)
	}
	fmt.Fprintf(d.w, "%s setfont%s", resource, d.eol)

	maxWidth := (d.width - d.opts.LeftMargin - d.opts.RightMargin) * 1000 / max1(d.opts.FontSize)
	for _, line := range WrapWord(text, fm, maxWidth) {
		fmt.Fprintf(d.w, "(%s) show%s", escapeString(line, d.opts.Data), d.eol)
	}
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// DrawLine emits a line primitive: `L` for thin styles, `TL` for
// thick, and a pair of offset `L`s for double rules (spec §4.14's
// "differentiates L from TL ... double lines as two Ls offset by
// (line_space+line_width)/2").
func (d *Driver) DrawLine(style table.LineStyle, x1, y1, x2, y2 int) {
	switch style {
	case table.LineNone:
		return
	case table.LineThick:
		fmt.Fprintf(d.w, "%d %d %d %d TL%s", x1, y1, x2, y2, d.eol)
	case table.LineDouble:
		off := (d.opts.LineSpace + d.opts.LineWidth) / 2
		fmt.Fprintf(d.w, "%d %d %d %d L%s", x1, y1-off, x2, y2-off, d.eol)
		fmt.Fprintf(d.w, "%d %d %d %d L%s", x1, y1+off, x2, y2+off, d.eol)
	default:
		fmt.Fprintf(d.w, "%d %d %d %d L%s", x1, y1, x2, y2, d.eol)
	}
}

// escapeString escapes PostScript string-literal metacharacters, plus
// high-bit/control bytes per DataMode.
func escapeString(s string, mode DataMode) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '(' || c == ')' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case mode == Clean7Bit && c >= 0x80:
			fmt.Fprintf(&b, "\\%03o", c)
		case mode != Binary && (c < 0x20 && c != '\t'):
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Close finalizes the document (closing any open page and emitting
// the trailer).
func (d *Driver) Close() error {
	if d.page > 0 {
		fmt.Fprintf(d.w, "showpage%s", d.eol)
	}
	fmt.Fprintf(d.w, "%%%%Trailer%s", d.eol)
	fmt.Fprintf(d.w, "%%%%Pages: %d%s", d.page, d.eol)
	fmt.Fprintf(d.w, "%%%%EOF%s", d.eol)
	return d.w.Flush()
}

var _ table.Driver = (*Driver)(nil)
