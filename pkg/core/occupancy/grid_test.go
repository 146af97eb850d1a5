package occupancy

import (
	"image"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/wordcloud/pkg/core/glyph"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

func randomGlyph(rng *rand.Rand, maxW, maxH int) *glyph.Mask {
	m := glyph.NewMask(1+rng.IntN(maxW), 1+rng.IntN(maxH))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if rng.IntN(3) == 0 {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		mask          *Mask
		code          errs.Code
		layers        int
	}{
		{"single pixel", 1, 1, nil, "", 1},
		{"odd sizes", 100, 60, nil, "", 8},
		{"matching mask", 10, 10, NewMask(10, 10, MaskForbid), "", 5},
		{"mask too wide", 10, 10, NewMask(11, 10, MaskForbid), errs.ErrCodeInvalidMaskDimensions, 0},
		{"short bits", 4, 4, &Mask{Width: 4, Height: 4, Bits: make([]bool, 3)}, errs.ErrCodeInvalidMaskDimensions, 0},
		{"zero canvas", 0, 5, nil, errs.ErrCodeInvalidCanvas, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.width, tt.height, tt.mask)
			if tt.code != "" {
				if !errs.Is(err, tt.code) {
					t.Fatalf("New() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if g.Layers() != tt.layers {
				t.Errorf("Layers() = %d, want %d", g.Layers(), tt.layers)
			}
		})
	}
}

func TestCollidesAgreesWithNaive(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7^0xdeadbeef))
	for _, size := range []image.Point{{1, 1}, {17, 9}, {64, 64}, {101, 37}} {
		g, err := New(size.X, size.Y, nil)
		if err != nil {
			t.Fatal(err)
		}
		for round := 0; round < 300; round++ {
			m := randomGlyph(rng, 12, 8)
			x := rng.IntN(size.X+16) - 8
			y := rng.IntN(size.Y+16) - 8

			fast, naive := g.Collides(m, x, y), g.CollidesNaive(m, x, y)
			if fast != naive {
				t.Fatalf("%v round %d at (%d,%d): Collides=%v CollidesNaive=%v", size, round, x, y, fast, naive)
			}
			if !fast && rng.IntN(2) == 0 {
				g.Commit(m, x, y)
			}
		}
	}
}

func randomMask(rng *rand.Rand, w, h int, mode MaskMode) *Mask {
	m := NewMask(w, h, mode)
	// Blobs rather than noise, so the coarse layers see both full and
	// empty cells.
	for range 1 + w*h/200 {
		cx, cy, r := rng.IntN(w), rng.IntN(h), 1+rng.IntN(6)
		for y := max(cy-r, 0); y < min(cy+r, h); y++ {
			for x := max(cx-r, 0); x < min(cx+r, w); x++ {
				m.Set(x, y, true)
			}
		}
	}
	for i := range m.Bits {
		if rng.IntN(40) == 0 {
			m.Bits[i] = !m.Bits[i]
		}
	}
	return m
}

func TestCollidesAgreesWithNaiveMasked(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11^0xdeadbeef))
	for _, mode := range []MaskMode{MaskForbid, MaskAllow} {
		for _, size := range []image.Point{{17, 9}, {64, 64}, {101, 37}} {
			g, err := New(size.X, size.Y, randomMask(rng, size.X, size.Y, mode))
			if err != nil {
				t.Fatal(err)
			}
			free := 0
			for round := 0; round < 400; round++ {
				m := randomGlyph(rng, 10, 6)
				x := rng.IntN(size.X+12) - 6
				y := rng.IntN(size.Y+12) - 6

				fast, naive := g.Collides(m, x, y), g.CollidesNaive(m, x, y)
				if fast != naive {
					t.Fatalf("%s %v round %d at (%d,%d): Collides=%v CollidesNaive=%v", mode, size, round, x, y, fast, naive)
				}
				if !fast {
					free++
					if rng.IntN(2) == 0 {
						g.Commit(m, x, y)
					}
				}
			}
			t.Logf("%s %v: %d free placements", mode, size, free)
		}
	}
}

func TestCommitThenCollides(t *testing.T) {
	g, _ := New(50, 50, nil)
	m := glyph.NewMask(5, 5)
	m.Set(2, 2, true)

	if g.Collides(m, 10, 10) {
		t.Fatal("empty grid should not collide")
	}
	g.Commit(m, 10, 10)
	if !g.Collides(m, 10, 10) {
		t.Error("query after commit of the same glyph must collide")
	}
	if !g.Occupied(12, 12) || g.Occupied(10, 10) {
		t.Error("commit marked the wrong pixels")
	}
	// Shifted so the only inked pixel lands on a free cell.
	if g.Collides(m, 11, 10) {
		t.Error("shifted glyph should be free")
	}
}

func TestCollidesIsIdempotent(t *testing.T) {
	g, _ := New(32, 32, nil)
	g.Commit(glyph.Filled(8, 8), 4, 4)
	m := glyph.Filled(6, 3)
	for _, p := range []image.Point{{0, 0}, {10, 10}, {12, 2}, {30, 30}} {
		first := g.Collides(m, p.X, p.Y)
		if second := g.Collides(m, p.X, p.Y); first != second {
			t.Errorf("at %v: first=%v second=%v", p, first, second)
		}
	}
}

func TestOutOfCanvasInkCollides(t *testing.T) {
	g, _ := New(10, 10, nil)
	m := glyph.NewMask(4, 4)
	m.Set(0, 0, true)
	if !g.Collides(m, -1, 0) {
		t.Error("ink left of the canvas must collide")
	}
	// The box hangs off the canvas but its only ink pixel is inside.
	if g.Collides(m, 9, 9) {
		t.Error("empty overhang should not collide")
	}
	if g.Collides(glyph.NewMask(3, 3), -10, -10) {
		t.Error("glyph without ink never collides")
	}
}

func TestMaskSeeding(t *testing.T) {
	forbid := NewMask(8, 8, MaskForbid)
	allow := NewMask(8, 8, MaskAllow)
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			forbid.Set(x, y, true)
			allow.Set(x, y, true)
		}
	}

	gf, err := New(8, 8, forbid)
	if err != nil {
		t.Fatal(err)
	}
	ga, err := New(8, 8, allow)
	if err != nil {
		t.Fatal(err)
	}

	dot := glyph.Filled(1, 1)
	if !gf.Collides(dot, 1, 1) || gf.Collides(dot, 6, 1) {
		t.Error("forbid mask: left half should be blocked, right half free")
	}
	if ga.Collides(dot, 1, 1) || !ga.Collides(dot, 6, 1) {
		t.Error("allow mask: left half should be free, right half blocked")
	}
	if got := gf.Coverage(); got != 0.5 {
		t.Errorf("Coverage() = %v, want 0.5", got)
	}
}

func TestFreeCentroid(t *testing.T) {
	mask := NewMask(10, 4, MaskAllow)
	for y := 0; y < 4; y++ {
		mask.Set(8, y, true)
	}
	g, _ := New(10, 4, mask)
	p, ok := g.FreeCentroid()
	if !ok || p != image.Pt(8, 1) {
		t.Errorf("FreeCentroid() = %v, %v; want (8,1), true", p, ok)
	}

	g.Commit(glyph.Filled(1, 4), 8, 0)
	if _, ok := g.FreeCentroid(); ok {
		t.Error("full grid should have no free centroid")
	}
}

func TestParseMaskMode(t *testing.T) {
	for in, want := range map[string]MaskMode{"": MaskForbid, "forbid": MaskForbid, "allow": MaskAllow} {
		got, err := ParseMaskMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMaskMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMaskMode("maybe"); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("ParseMaskMode(maybe) error = %v", err)
	}
}
