package sink

import (
	"bytes"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/matzehuels/wordcloud/pkg/core/glyph"
	"github.com/matzehuels/wordcloud/pkg/core/layout"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// AlphaRasterizer draws anti-aliased words. [fonts.Rasterizer] implements
// it; rasterizers that do not are drawn from their coverage masks.
type AlphaRasterizer interface {
	RasterizeAlpha(text string, size, rotation float64) (*image.Alpha, error)
}

// RenderPNG draws res with rast and encodes it as PNG.
func RenderPNG(res *layout.Result, rast glyph.Rasterizer, opts ...Option) ([]byte, error) {
	img, err := RenderImage(res, rast, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// RenderImage draws res onto a new RGBA image. Each word is drawn centred
// on its placed box; at scale 1 the drawn pixels are exactly the pixels the
// layout reserved.
func RenderImage(res *layout.Result, rast glyph.Rasterizer, opts ...Option) (*image.RGBA, error) {
	o := newOptions(opts...)
	w := int(math.Ceil(float64(res.Width) * o.scale))
	h := int(math.Ceil(float64(res.Height) * o.scale))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(o.background), image.Point{}, draw.Src)

	colors := Colors(res, o.colorFn)
	for i, p := range res.Placed {
		alpha, err := wordAlpha(rast, p.Text, p.Size*o.scale, p.Rotation)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeGlyphRender, err, "render %q", p.Text)
		}
		ab := alpha.Bounds()
		cx := (float64(p.X) + float64(p.Width)/2) * o.scale
		cy := (float64(p.Y) + float64(p.Height)/2) * o.scale
		at := image.Pt(int(math.Round(cx-float64(ab.Dx())/2)), int(math.Round(cy-float64(ab.Dy())/2)))
		draw.DrawMask(img, ab.Sub(ab.Min).Add(at), image.NewUniform(colors[i]), image.Point{}, alpha, ab.Min, draw.Over)
	}
	return img, nil
}

func wordAlpha(rast glyph.Rasterizer, text string, size, rotation float64) (*image.Alpha, error) {
	if a, ok := rast.(AlphaRasterizer); ok {
		return a.RasterizeAlpha(text, size, rotation)
	}
	m, err := rast.Rasterize(text, size, rotation)
	if err != nil {
		return nil, err
	}
	img := image.NewAlpha(m.Bounds())
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.At(x, y) {
				img.Pix[y*img.Stride+x] = 0xff
			}
		}
	}
	return img, nil
}
