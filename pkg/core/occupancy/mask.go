package occupancy

import (
	"fmt"

	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// MaskMode selects how the bits of a [Mask] are interpreted.
type MaskMode int

const (
	// MaskForbid treats true bits as blocked pixels.
	MaskForbid MaskMode = iota
	// MaskAllow treats true bits as the only pixels words may cover.
	MaskAllow
)

func (m MaskMode) String() string {
	switch m {
	case MaskForbid:
		return "forbid"
	case MaskAllow:
		return "allow"
	default:
		return fmt.Sprintf("MaskMode(%d)", int(m))
	}
}

// ParseMaskMode parses "forbid" or "allow".
func ParseMaskMode(s string) (MaskMode, error) {
	switch s {
	case "forbid", "":
		return MaskForbid, nil
	case "allow":
		return MaskAllow, nil
	}
	return 0, errs.New(errs.ErrCodeInvalidConfig, "unknown mask mode %q (want forbid or allow)", s)
}

// Mask is a canvas-sized boolean constraint grid. It seeds the occupied set
// of a [Grid] and is never modified by it.
type Mask struct {
	Width  int
	Height int
	Mode   MaskMode
	Bits   []bool // row-major, len Width*Height
}

// NewMask allocates a mask with every bit false.
func NewMask(width, height int, mode MaskMode) *Mask {
	width, height = max(width, 0), max(height, 0)
	return &Mask{Width: width, Height: height, Mode: mode, Bits: make([]bool, width*height)}
}

// Set assigns bit (x, y).
func (m *Mask) Set(x, y int, v bool) { m.Bits[y*m.Width+x] = v }

// At returns bit (x, y), or false outside the mask.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Blocked reports whether pixel (x, y) is unavailable for placement under
// the mask's mode.
func (m *Mask) Blocked(x, y int) bool {
	if m.Mode == MaskAllow {
		return !m.At(x, y)
	}
	return m.At(x, y)
}

// Validate checks that the mask matches a width x height canvas.
func (m *Mask) Validate(width, height int) error {
	if m.Width != width || m.Height != height {
		return errs.New(errs.ErrCodeInvalidMaskDimensions,
			"mask is %dx%d but canvas is %dx%d", m.Width, m.Height, width, height)
	}
	if len(m.Bits) != m.Width*m.Height {
		return errs.New(errs.ErrCodeInvalidMaskDimensions,
			"mask has %d bits, want %d", len(m.Bits), m.Width*m.Height)
	}
	return nil
}
