// Package glyph defines the per-word coverage bitmap consumed by the
// placement engine.
//
// A [Mask] is an axis-aligned box of pixels, each either inked or empty.
// Masks are produced by a rasterizer (see [Rasterizer]) for one word at one
// size and rotation. The engine treats a Mask as opaque apart from its box
// and per-pixel coverage.
//
// Masks keep a lazily built summed-area table so that "is there any ink in
// this sub-rectangle" is answered in constant time. The occupancy grid uses
// this to skip empty regions of a glyph while descending its pyramid.
package glyph

import "image"

// Mask is a boolean coverage bitmap. The zero value is an empty 0x0 mask.
type Mask struct {
	width, height int
	bits          []bool
	sat           []int32 // (width+1)*(height+1), built on demand
	ink           int
}

// NewMask allocates an empty mask of the given size.
func NewMask(width, height int) *Mask {
	width, height = max(width, 0), max(height, 0)
	return &Mask{
		width:  width,
		height: height,
		bits:   make([]bool, width*height),
	}
}

// Filled returns a mask with every pixel inked.
func Filled(width, height int) *Mask {
	m := NewMask(width, height)
	for i := range m.bits {
		m.bits[i] = true
	}
	m.ink = len(m.bits)
	return m
}

// FromAlpha builds a mask from an alpha image; pixels with alpha at or
// above threshold count as ink. A zero threshold is treated as 1.
func FromAlpha(img *image.Alpha, threshold uint8) *Mask {
	threshold = max(threshold, 1)
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if img.AlphaAt(b.Min.X+x, b.Min.Y+y).A >= threshold {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// Width returns the box width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the box height in pixels.
func (m *Mask) Height() int { return m.height }

// Bounds returns the box as an image.Rectangle anchored at the origin.
func (m *Mask) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

// Empty reports whether the mask has no ink at all.
func (m *Mask) Empty() bool { return m.ink == 0 }

// Ink returns the number of inked pixels.
func (m *Mask) Ink() int { return m.ink }

// At reports whether pixel (x, y) is inked. Out-of-box pixels are empty.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Set marks pixel (x, y). It panics if the pixel lies outside the box.
func (m *Mask) Set(x, y int, v bool) {
	i := y*m.width + x
	if m.bits[i] == v {
		return
	}
	m.bits[i] = v
	if v {
		m.ink++
	} else {
		m.ink--
	}
	m.sat = nil
}

// AnyIn reports whether any pixel inside r (clipped to the box) is inked.
func (m *Mask) AnyIn(r image.Rectangle) bool {
	return m.CountIn(r) > 0
}

// CountIn returns the number of inked pixels inside r, clipped to the box.
func (m *Mask) CountIn(r image.Rectangle) int {
	r = r.Intersect(m.Bounds())
	if r.Empty() || m.ink == 0 {
		return 0
	}
	if m.sat == nil {
		m.buildSAT()
	}
	w := m.width + 1
	sum := m.sat[r.Max.Y*w+r.Max.X] - m.sat[r.Min.Y*w+r.Max.X] -
		m.sat[r.Max.Y*w+r.Min.X] + m.sat[r.Min.Y*w+r.Min.X]
	return int(sum)
}

// Trim returns the mask cropped to its inked bounding box together with
// the offset of the crop inside the original. An empty mask trims to 0x0.
func (m *Mask) Trim() (*Mask, image.Point) {
	minX, minY, maxX, maxY := m.width, m.height, -1, -1
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.bits[y*m.width+x] {
				minX, minY = min(minX, x), min(minY, y)
				maxX, maxY = max(maxX, x), max(maxY, y)
			}
		}
	}
	if maxX < 0 {
		return NewMask(0, 0), image.Point{}
	}
	out := NewMask(maxX-minX+1, maxY-minY+1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if m.bits[y*m.width+x] {
				out.Set(x-minX, y-minY, true)
			}
		}
	}
	return out, image.Pt(minX, minY)
}

func (m *Mask) buildSAT() {
	w := m.width + 1
	sat := make([]int32, w*(m.height+1))
	for y := 0; y < m.height; y++ {
		var row int32
		for x := 0; x < m.width; x++ {
			if m.bits[y*m.width+x] {
				row++
			}
			sat[(y+1)*w+x+1] = sat[y*w+x+1] + row
		}
	}
	m.sat = sat
}
