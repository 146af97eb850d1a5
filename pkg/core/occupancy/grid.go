// Package occupancy tracks which canvas pixels are already covered during a
// layout run.
//
// A [Grid] is a pyramid of boolean layers. Layer 0 is the canvas at full
// resolution; every layer above halves both dimensions, and each of its
// cells summarizes a 2x2 block of the layer below in two ways:
//
//   - any: at least one underlying pixel is occupied
//   - all: every underlying canvas pixel is occupied
//
// [Grid.Collides] walks the pyramid top-down. A cell with no occupancy is
// skipped without looking further, a fully occupied cell that overlaps ink
// is an immediate hit, and only mixed cells are refined. Glyph ink is
// looked up through the glyph mask's summed-area table, so empty parts of a
// glyph prune the walk as well. [Grid.CollidesNaive] is the per-pixel
// reference; both always agree.
//
// Cells are only ever set, never cleared.
package occupancy

import (
	"image"

	"github.com/matzehuels/wordcloud/pkg/core/glyph"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// layer is one pyramid level. At level 0 any and all share storage.
type layer struct {
	w, h int
	any  []bool
	all  []bool
}

// Grid is the multi-resolution occupancy bitmap for one layout run. It is
// not safe for concurrent use.
type Grid struct {
	width, height int
	levels        []layer
	occupied      int
}

// New creates a grid for a width x height canvas. If mask is non-nil its
// blocked pixels start out occupied; a mask whose size differs from the
// canvas is rejected with INVALID_MASK_DIMENSIONS.
func New(width, height int, mask *Mask) (*Grid, error) {
	if err := errs.ValidateCanvas(width, height); err != nil {
		return nil, err
	}
	if mask != nil {
		if err := mask.Validate(width, height); err != nil {
			return nil, err
		}
	}

	g := &Grid{width: width, height: height}
	base := make([]bool, width*height)
	g.levels = append(g.levels, layer{w: width, h: height, any: base, all: base})
	for w, h := width, height; w > 1 || h > 1; {
		w, h = (w+1)/2, (h+1)/2
		g.levels = append(g.levels, layer{
			w: w, h: h,
			any: make([]bool, w*h),
			all: make([]bool, w*h),
		})
	}

	if mask != nil {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if mask.Blocked(x, y) {
					base[y*width+x] = true
					g.occupied++
				}
			}
		}
		g.propagate(image.Rect(0, 0, width, height))
	}
	return g, nil
}

// Width returns the canvas width.
func (g *Grid) Width() int { return g.width }

// Height returns the canvas height.
func (g *Grid) Height() int { return g.height }

// Layers returns the number of pyramid levels including the full-resolution
// base.
func (g *Grid) Layers() int { return len(g.levels) }

// Occupied reports whether canvas pixel (x, y) is covered. Pixels outside
// the canvas are always occupied.
func (g *Grid) Occupied(x, y int) bool {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return true
	}
	return g.levels[0].any[y*g.width+x]
}

// Coverage returns the fraction of canvas pixels that are occupied.
func (g *Grid) Coverage() float64 {
	return float64(g.occupied) / float64(g.width*g.height)
}

// FreeCentroid returns the mean position of all free pixels. ok is false
// when the canvas is completely occupied.
func (g *Grid) FreeCentroid() (p image.Point, ok bool) {
	var sx, sy, n int
	base := g.levels[0].any
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if !base[y*g.width+x] {
				sx += x
				sy += y
				n++
			}
		}
	}
	if n == 0 {
		return image.Point{}, false
	}
	return image.Pt(sx/n, sy/n), true
}

// Collides reports whether glyph m, with its top-left corner at (x, y),
// has ink on an occupied pixel or outside the canvas.
func (g *Grid) Collides(m *glyph.Mask, x, y int) bool {
	if m.Empty() {
		return false
	}
	at := image.Pt(x, y)
	box := m.Bounds().Add(at)
	canvas := image.Rect(0, 0, g.width, g.height)
	inside := box.Intersect(canvas)
	if m.CountIn(inside.Sub(at)) != m.Ink() {
		return true
	}
	top := len(g.levels) - 1
	return g.descend(m, at, inside, top, 0, 0)
}

// descend checks cell (cx, cy) of level lv against the glyph ink that falls
// into region (canvas coordinates, already clipped to the canvas).
func (g *Grid) descend(m *glyph.Mask, at image.Point, region image.Rectangle, lv, cx, cy int) bool {
	cell := image.Rect(cx<<lv, cy<<lv, (cx+1)<<lv, (cy+1)<<lv).Intersect(region)
	if cell.Empty() {
		return false
	}
	l := &g.levels[lv]
	i := cy*l.w + cx
	if !l.any[i] {
		return false
	}
	if !m.AnyIn(cell.Sub(at)) {
		return false
	}
	if l.all[i] || lv == 0 {
		return true
	}
	c := lv - 1
	return g.descend(m, at, cell, c, 2*cx, 2*cy) ||
		g.descend(m, at, cell, c, 2*cx+1, 2*cy) ||
		g.descend(m, at, cell, c, 2*cx, 2*cy+1) ||
		g.descend(m, at, cell, c, 2*cx+1, 2*cy+1)
}

// CollidesNaive is the per-pixel reference for [Grid.Collides].
func (g *Grid) CollidesNaive(m *glyph.Mask, x, y int) bool {
	for py := 0; py < m.Height(); py++ {
		for px := 0; px < m.Width(); px++ {
			if m.At(px, py) && g.Occupied(x+px, y+py) {
				return true
			}
		}
	}
	return false
}

// Commit marks every ink pixel of m, placed at (x, y), as occupied. Ink
// outside the canvas is ignored.
func (g *Grid) Commit(m *glyph.Mask, x, y int) {
	box := m.Bounds().Add(image.Pt(x, y)).Intersect(image.Rect(0, 0, g.width, g.height))
	if box.Empty() {
		return
	}
	base := g.levels[0].any
	for cy := box.Min.Y; cy < box.Max.Y; cy++ {
		for cx := box.Min.X; cx < box.Max.X; cx++ {
			i := cy*g.width + cx
			if !base[i] && m.At(cx-x, cy-y) {
				base[i] = true
				g.occupied++
			}
		}
	}
	g.propagate(box)
}

// propagate recomputes the upper levels over the cells covering r (level 0
// coordinates).
func (g *Grid) propagate(r image.Rectangle) {
	minX, minY := r.Min.X, r.Min.Y
	maxX, maxY := r.Max.X-1, r.Max.Y-1
	for lv := 1; lv < len(g.levels); lv++ {
		minX, minY, maxX, maxY = minX/2, minY/2, maxX/2, maxY/2
		below, l := &g.levels[lv-1], &g.levels[lv]
		for cy := minY; cy <= maxY; cy++ {
			for cx := minX; cx <= maxX; cx++ {
				anyOcc, allOcc := false, true
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						bx, by := 2*cx+dx, 2*cy+dy
						if bx >= below.w || by >= below.h {
							continue // off-canvas: free for any, occupied for all
						}
						j := by*below.w + bx
						anyOcc = anyOcc || below.any[j]
						allOcc = allOcc && below.all[j]
					}
				}
				i := cy*l.w + cx
				l.any[i], l.all[i] = anyOcc, allOcc
			}
		}
	}
}
