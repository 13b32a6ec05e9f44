package postscript

import (
	"fmt"
	"strings"
)

// fontCombo is a (font, size) pair mapped to a PostScript resource
// name "/Fn" — reset at the start of every page, matching the
// original's per-page font-combo table (postscript.c's "font_numbers"
// reset in ps_open_page).
type fontCombo struct {
	name string
	size int
}

// FontCache assigns and remembers /Fn PostScript names for each
// (font, size) combination used on the current page, so repeated runs
// with the same font/size share one `setfont` invocation upstream.
type FontCache struct {
	combos map[fontCombo]string
	next   int
}

func NewFontCache() *FontCache { return &FontCache{combos: map[fontCombo]string{}} }

// Reset clears every combo, to be called once per page (ps_open_page).
func (c *FontCache) Reset() {
	c.combos = map[fontCombo]string{}
	c.next = 0
}

// Name returns the /Fn resource name for (font, size), assigning the
// next free slot and reporting fresh=true the first time it's seen on
// this page (the caller must then emit a findfont/scalefont/def
// preamble before using it).
func (c *FontCache) Name(font string, size int) (resource string, fresh bool) {
	key := fontCombo{font, size}
	if r, ok := c.combos[key]; ok {
		return r, false
	}
	r := fmt.Sprintf("/F%x", c.next)
	c.next++
	c.combos[key] = r
	return r, true
}

// Run is one coalesced span of text drawn in a single font/size —
// text draws merge adjacent characters sharing a font/size so only one
// `setfont` per change is emitted, per spec §4.14.
type Run struct {
	Font string
	Size int
	Text string
}

// CoalesceRuns merges adjacent same-(font,size) spans from runs, as
// ps_text_set_font / the original's run-coalescing draw path does.
func CoalesceRuns(runs []Run) []Run {
	if len(runs) == 0 {
		return nil
	}
	out := []Run{runs[0]}
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if last.Font == r.Font && last.Size == r.Size {
			last.Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// WrapWord wraps text to fit within maxWidth (in the same /1000 em
// units as FontMetrics, scaled by the caller to the point size),
// substituting ligatures (ff, fi, fl, ffi, ffl) and applying kerning
// before measuring, and breaking only at whitespace (spec §4.14's word
// wrap description; grounded on original_source postscript.c's
// text-drawing loop, which measures glyph-by-glyph with the same
// ligature/kern table before emitting `show`).
func WrapWord(text string, fm *FontMetrics, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var cur strings.Builder
	curWidth := 0
	spaceWidth := fm.Width(' ')

	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
	}

	for _, w := range words {
		glyphs, width := ligateAndMeasure(w, fm)
		sep := 0
		if cur.Len() > 0 {
			sep = spaceWidth
		}
		if cur.Len() > 0 && curWidth+sep+width > maxWidth {
			flush()
			sep = 0
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(glyphs)
		curWidth += sep + width
	}
	flush()
	return lines
}

// ligateAndMeasure collapses known ligature sequences in w and
// measures the resulting glyph run including kerning adjustments,
// returning the substituted text and its total width.
func ligateAndMeasure(w string, fm *FontMetrics) (string, int) {
	runes := []rune(w)
	var out []rune
	width := 0
	var prev rune
	havePrev := false
	for i := 0; i < len(runes); {
		matched := false
		for _, seq := range ligatureSeqs {
			sl := []rune(seq)
			if i+len(sl) <= len(runes) && string(runes[i:i+len(sl)]) == seq {
				if lig, ok := fm.Ligatures[seq]; ok {
					out = append(out, lig)
					width += fm.Width(lig)
					if havePrev {
						width += fm.Kern(prev, lig)
					}
					prev, havePrev = lig, true
					i += len(sl)
					matched = true
					break
				}
			}
		}
		if matched {
			continue
		}
		r := runes[i]
		out = append(out, r)
		width += fm.Width(r)
		if havePrev {
			width += fm.Kern(prev, r)
		}
		prev, havePrev = r, true
		i++
	}
	return string(out), width
}
