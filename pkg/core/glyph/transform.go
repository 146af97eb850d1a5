package glyph

import (
	"image"
	"math"
)

// Rotation angles are in degrees, clockwise on screen (y grows downward),
// the same convention as SVG's rotate() transform. Rotating a box always
// yields the smallest axis-aligned box containing the rotated content.

// Rotate returns m rotated by deg degrees. Multiples of 90 are exact;
// other angles use nearest-neighbour sampling around the box centre.
func Rotate(m *Mask, deg float64) *Mask {
	w, h, src := rotation(m.width, m.height, deg)
	out := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if sx, sy, ok := src(x, y); ok && m.bits[sy*m.width+sx] {
				out.Set(x, y, true)
			}
		}
	}
	return out
}

// RotateAlpha rotates an alpha image with the same geometry as [Rotate], so
// a mask derived from the result lines up pixel for pixel with the image.
func RotateAlpha(img *image.Alpha, deg float64) *image.Alpha {
	b := img.Bounds()
	w, h, src := rotation(b.Dx(), b.Dy(), deg)
	out := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if sx, sy, ok := src(x, y); ok {
				out.SetAlpha(x, y, img.AlphaAt(b.Min.X+sx, b.Min.Y+sy))
			}
		}
	}
	return out
}

// RotatedSize returns the box size of a w x h box rotated by deg.
func RotatedSize(w, h int, deg float64) (int, int) {
	rw, rh, _ := rotation(w, h, deg)
	return rw, rh
}

// Dilate grows the ink of m by r pixels in every direction (square
// structuring element). The result is (2r) pixels wider and taller, with the
// original content offset by (r, r).
func Dilate(m *Mask, r int) *Mask {
	if r <= 0 {
		return m
	}
	out := NewMask(m.width+2*r, m.height+2*r)
	if m.ink == 0 {
		return out
	}
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			if m.AnyIn(image.Rect(x-2*r, y-2*r, x+1, y+1)) {
				out.Set(x, y, true)
			}
		}
	}
	return out
}

// rotation computes the rotated box size and an inverse mapping from a
// destination pixel to its source pixel.
func rotation(w, h int, deg float64) (int, int, func(x, y int) (int, int, bool)) {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}

	switch deg {
	case 0:
		return w, h, func(x, y int) (int, int, bool) { return x, y, true }
	case 90:
		// dst(x, y) <- src(y, h-1-x)
		return h, w, func(x, y int) (int, int, bool) { return y, h - 1 - x, true }
	case 180:
		return w, h, func(x, y int) (int, int, bool) { return w - 1 - x, h - 1 - y, true }
	case 270:
		return h, w, func(x, y int) (int, int, bool) { return w - 1 - y, x, true }
	}

	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	fw, fh := float64(w), float64(h)
	nw := int(math.Ceil(math.Abs(fw*cos) + math.Abs(fh*sin)))
	nh := int(math.Ceil(math.Abs(fw*sin) + math.Abs(fh*cos)))
	scx, scy := fw/2, fh/2
	dcx, dcy := float64(nw)/2, float64(nh)/2

	return nw, nh, func(x, y int) (int, int, bool) {
		// Inverse of a clockwise rotation in y-down space.
		dx, dy := float64(x)+0.5-dcx, float64(y)+0.5-dcy
		sx := dx*cos + dy*sin + scx
		sy := -dx*sin + dy*cos + scy
		ix, iy := int(math.Floor(sx)), int(math.Floor(sy))
		if ix < 0 || iy < 0 || ix >= w || iy >= h {
			return 0, 0, false
		}
		return ix, iy, true
	}
}
