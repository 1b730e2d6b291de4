// Package font holds the fixed-width bitmap fonts used on the panel.
// Glyphs are authored as rows of '#' (on) and '.' (off); every glyph in a
// font has the same cell size so the caller can advance a simple cursor.
package font

import (
	"fmt"

	"github.com/lumenboard/lumenboard/internal/canvas"
)

// Pixel is one lit dot of a glyph, offset from the glyph's top-left origin.
type Pixel struct {
	DX    int
	DY    int
	Color canvas.RGB
}

type Font struct {
	Name    string
	Width   int
	Height  int
	Spacing int // gap between glyph cells

	glyphs map[rune][]string
}

// Advance is the x-cursor step per character, found or not.
func (f *Font) Advance() int { return f.Width + f.Spacing }

// RenderChar returns the lit pixels for ch in the given color. The second
// return is false when the font has no glyph for ch; the caller decides
// whether that warrants a diagnostic.
func (f *Font) RenderChar(ch rune, col canvas.RGB) ([]Pixel, bool) {
	rows, ok := f.glyphs[ch]
	if !ok {
		return nil, false
	}
	var pixels []Pixel
	for r, row := range rows {
		for c := 0; c < len(row); c++ {
			if row[c] == '#' {
				pixels = append(pixels, Pixel{DX: c, DY: r, Color: col})
			}
		}
	}
	return pixels, true
}

var registry = map[string]*Font{}

func register(f *Font) {
	for ch, rows := range f.glyphs {
		if len(rows) != f.Height {
			panic(fmt.Sprintf("font %s: glyph %q has %d rows, want %d", f.Name, ch, len(rows), f.Height))
		}
		for _, row := range rows {
			if len(row) != f.Width {
				panic(fmt.Sprintf("font %s: glyph %q row %q is not %d wide", f.Name, ch, row, f.Width))
			}
		}
	}
	registry[f.Name] = f
}

// Get returns the named font, or the default 5x7 font when name is
// unknown or empty. The second return reports whether name matched.
func Get(name string) (*Font, bool) {
	if f, ok := registry[name]; ok {
		return f, true
	}
	return registry[DefaultName], false
}

// Names lists the registered font names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

const DefaultName = "5x7"
