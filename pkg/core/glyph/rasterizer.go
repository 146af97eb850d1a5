package glyph

import (
	"math"
	"unicode/utf8"

	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// Rasterizer produces the coverage mask of a word at a given font size and
// rotation. Implementations report failures (missing font, unsupported
// characters) as GLYPH_RENDER errors; the placement engine drops the word
// and continues.
type Rasterizer interface {
	Rasterize(text string, size, rotation float64) (*Mask, error)
}

// RasterizerFunc adapts a function to the [Rasterizer] interface.
type RasterizerFunc func(text string, size, rotation float64) (*Mask, error)

// Rasterize calls f.
func (f RasterizerFunc) Rasterize(text string, size, rotation float64) (*Mask, error) {
	return f(text, size, rotation)
}

// BoxRasterizer renders every word as a solid box whose width is
// proportional to its rune count. It needs no font data, is exact under
// rotation by multiples of 90, and is used for previews and tests.
type BoxRasterizer struct {
	// Aspect is the width of one character relative to the font size.
	// Default 0.6.
	Aspect float64

	// LineHeight is the box height relative to the font size. Default 1.
	LineHeight float64
}

// Rasterize implements [Rasterizer].
func (b BoxRasterizer) Rasterize(text string, size, rotation float64) (*Mask, error) {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return nil, errs.New(errs.ErrCodeGlyphRender, "cannot rasterize empty text")
	}
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, errs.New(errs.ErrCodeGlyphRender, "invalid font size %v for %q", size, text)
	}
	aspect, lh := b.Aspect, b.LineHeight
	if aspect <= 0 {
		aspect = 0.6
	}
	if lh <= 0 {
		lh = 1
	}
	w := max(1, int(math.Ceil(float64(n)*size*aspect)))
	h := max(1, int(math.Ceil(size*lh)))
	return Rotate(Filled(w, h), rotation), nil
}
