package fonts

import (
	"image"
	"math"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/wordcloud/pkg/core/glyph"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// Rasterizer turns words into glyph masks using a [Font]. Any pixel with
// non-zero coverage counts as ink, so an image drawn from
// [Rasterizer.RasterizeAlpha] never bleeds outside the mask.
type Rasterizer struct {
	font *Font
}

// NewRasterizer returns a rasterizer for f.
func NewRasterizer(f *Font) *Rasterizer {
	return &Rasterizer{font: f}
}

// Font returns the underlying font.
func (r *Rasterizer) Font() *Font { return r.font }

// Rasterize implements glyph.Rasterizer.
func (r *Rasterizer) Rasterize(text string, size, rotation float64) (*glyph.Mask, error) {
	img, err := r.RasterizeAlpha(text, size, rotation)
	if err != nil {
		return nil, err
	}
	return glyph.FromAlpha(img, 1), nil
}

// RasterizeAlpha draws the word with anti-aliasing, cropped to its ink and
// rotated clockwise by rotation degrees.
func (r *Rasterizer) RasterizeAlpha(text string, size, rotation float64) (*image.Alpha, error) {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, errs.New(errs.ErrCodeGlyphRender, "invalid font size %v for %q", size, text)
	}
	f := r.font
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range text {
		if unicode.IsSpace(c) {
			continue
		}
		if !f.has(c) {
			return nil, errs.New(errs.ErrCodeGlyphRender, "font %s has no glyph for %q in %q", f.name, c, text)
		}
	}
	face, err := f.face(size)
	if err != nil {
		return nil, err
	}

	ink, _ := font.BoundString(face, text)
	minX, minY := ink.Min.X.Floor(), ink.Min.Y.Floor()
	maxX, maxY := ink.Max.X.Ceil(), ink.Max.Y.Ceil()
	if maxX <= minX || maxY <= minY || strings.TrimSpace(text) == "" {
		return nil, errs.New(errs.ErrCodeGlyphRender, "%q has no visible glyphs", text)
	}

	img := image.NewAlpha(image.Rect(0, 0, maxX-minX, maxY-minY))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(-minX, -minY),
	}
	d.DrawString(text)
	return glyph.RotateAlpha(img, rotation), nil
}

// Bounds returns the unrotated ink box of text relative to its baseline
// origin. Sinks that position text by baseline use it to centre a word on
// its placed box.
func (r *Rasterizer) Bounds(text string, size float64) image.Rectangle {
	f := r.font
	f.mu.Lock()
	defer f.mu.Unlock()

	face, err := f.face(size)
	if err != nil {
		return image.Rectangle{}
	}
	ink, _ := font.BoundString(face, text)
	return image.Rect(ink.Min.X.Floor(), ink.Min.Y.Floor(), ink.Max.X.Ceil(), ink.Max.Y.Ceil())
}
