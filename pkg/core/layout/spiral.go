package layout

import (
	"image"
	"math"
)

// spiral yields integer points along an Archimedean spiral r = a·θ/2π
// around a centre, with consecutive duplicates removed.
type spiral struct {
	cx, cy  float64
	spacing float64
	step    float64
	maxR    float64
	theta   float64
	last    image.Point
	started bool
}

func newSpiral(center image.Point, spacing, step, maxR float64) *spiral {
	return &spiral{
		cx:      float64(center.X),
		cy:      float64(center.Y),
		spacing: spacing,
		step:    step,
		maxR:    maxR,
	}
}

func (s *spiral) radius() float64 { return s.spacing * s.theta / (2 * math.Pi) }

// next returns the next candidate, or false once the radius bound is passed.
func (s *spiral) next() (image.Point, bool) {
	if !s.started {
		s.started = true
		s.last = image.Pt(int(s.cx), int(s.cy))
		return s.last, true
	}
	for {
		// Advance by one arc step. Inside radius 1 the angular step is
		// held at step radians.
		s.theta += s.step / max(s.radius(), 1)
		r := s.radius()
		if r > s.maxR {
			return image.Point{}, false
		}
		sin, cos := math.Sincos(s.theta)
		p := image.Pt(int(math.Round(s.cx+r*cos)), int(math.Round(s.cy+r*sin)))
		if p != s.last {
			s.last = p
			return p, true
		}
	}
}

// farthestCorner returns the distance from p to the farthest corner of a
// width x height canvas.
func farthestCorner(p image.Point, width, height int) float64 {
	dx := max(p.X, width-p.X)
	dy := max(p.Y, height-p.Y)
	return math.Hypot(float64(dx), float64(dy))
}
