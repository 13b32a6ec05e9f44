package postscript

// FontMetrics gives one Groff/AFM font's glyph widths (in 1/1000 em,
// AFM convention), kern pairs, and ligature set. Grounded on
// original_source src/postscript.c's struct font_desc (loaded from
// Groff .pfa/AFM-style font description files in the original; this
// package instead carries a compact built-in table since the real
// Groff resource files aren't present in the pack — see SPEC_FULL §3).
type FontMetrics struct {
	Name       string
	Widths     map[rune]int // per-glyph width, /1000 em
	DefaultWidth int
	Kerns      map[[2]rune]int // additional kerning adjustment, /1000 em
	Ligatures  map[string]rune // "fi" -> ligature glyph, etc.
}

// Width returns a's advance width, falling back to DefaultWidth for
// glyphs absent from the table (an unknown-but-plausible-width glyph,
// matching the original's behavior of using the font's "missing
// character" metric).
func (f *FontMetrics) Width(r rune) int {
	if w, ok := f.Widths[r]; ok {
		return w
	}
	return f.DefaultWidth
}

// Kern returns the additional spacing between a and b, 0 if the pair
// has no kerning entry.
func (f *FontMetrics) Kern(a, b rune) int {
	if f.Kerns == nil {
		return 0
	}
	return f.Kerns[[2]rune{a, b}]
}

// ligatureSeqs lists the multi-character sequences PostScript fonts
// commonly collapse to a single glyph, longest first so "ffi"/"ffl"
// match before "ff".
var ligatureSeqs = []string{"ffi", "ffl", "fi", "fl", "ff"}

// courierMetrics approximates Courier: every glyph is 600/1000 em.
func courierMetrics() *FontMetrics {
	return &FontMetrics{Name: "Courier", DefaultWidth: 600, Widths: map[rune]int{}}
}

// timesMetrics is a compact stand-in for Times-Roman's proportional
// AFM widths, covering ASCII letters/digits/punctuation at their
// well-known values; anything else falls back to DefaultWidth.
func timesMetrics() *FontMetrics {
	w := map[rune]int{' ': 250, '!': 333, '"': 408, '#': 500, '$': 500, '%': 833,
		'&': 778, '\'': 180, '(': 333, ')': 333, '*': 500, '+': 564, ',': 250,
		'-': 333, '.': 250, '/': 278, '0': 500, '1': 500, '2': 500, '3': 500,
		'4': 500, '5': 500, '6': 500, '7': 500, '8': 500, '9': 500, ':': 278,
		';': 278, '<': 564, '=': 564, '>': 564, '?': 444, '@': 921,
	}
	for r := 'A'; r <= 'Z'; r++ {
		w[r] = 722
	}
	for r := 'a'; r <= 'z'; r++ {
		w[r] = 444
	}
	return &FontMetrics{
		Name:         "Times-Roman",
		DefaultWidth: 500,
		Widths:       w,
		Kerns: map[[2]rune]int{
			{'A', 'V'}: -80, {'V', 'A'}: -80, {'T', 'o'}: -60, {'P', 'o'}: -50,
		},
		Ligatures: map[string]rune{"fi": 0xFB01, "fl": 0xFB02, "ff": 0xFB00, "ffi": 0xFB03, "ffl": 0xFB04},
	}
}

// builtinFonts is the metrics table LoadFont serves every font from,
// keyed by Groff font name.
var builtinFonts = map[string]*FontMetrics{
	"Courier":      courierMetrics(),
	"Times-Roman":  timesMetrics(),
}

// LoadFont returns the metrics for a Groff font name from the compact
// built-in table; a name not in the table gets the Times-Roman metrics.
// No font-dir resource path is read (SPEC_FULL §3's documented
// deviation).
func LoadFont(name string) *FontMetrics {
	if fm, ok := builtinFonts[name]; ok {
		return fm
	}
	return builtinFonts["Times-Roman"]
}
