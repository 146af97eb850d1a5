package layout

import (
	"encoding/json"
	"fmt"
	"image"
	"io"

	"github.com/matzehuels/wordcloud/pkg/core/freq"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// Reason explains why a word is missing from the placed list.
type Reason string

const (
	// ReasonTooSmall: the mapped size fell below the minimum size.
	ReasonTooSmall Reason = "too_small"
	// ReasonNoSpace: the spiral search found no free position.
	ReasonNoSpace Reason = "no_space"
	// ReasonRenderFailed: the rasterizer could not produce a glyph.
	ReasonRenderFailed Reason = "render_failed"
)

// SizedWord is a ranked word with its font size and rotation in degrees.
type SizedWord struct {
	freq.Word
	Size     float64 `json:"size"`
	Rotation float64 `json:"rotation"`
}

// PlacedWord is a word committed to the canvas. X and Y are the top-left
// corner of its glyph box; Width and Height are the box size after
// rotation.
type PlacedWord struct {
	SizedWord
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Bounds returns the glyph box on the canvas.
func (p PlacedWord) Bounds() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// DroppedWord is a word that was not placed, with exactly one reason.
type DroppedWord struct {
	freq.Word
	Size   float64 `json:"size"`
	Reason Reason  `json:"reason"`
	Detail string  `json:"detail,omitempty"`
}

// Result is the outcome of a layout run. Placed is in placement order,
// which is descending size order. Placed and Dropped together hold every
// word of the input table exactly once.
type Result struct {
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Seed     uint64        `json:"seed"`
	Placed   []PlacedWord  `json:"placed"`
	Dropped  []DroppedWord `json:"dropped"`
	Coverage float64       `json:"coverage"`
}

// Stats summarizes a result.
type Stats struct {
	Placed      int
	Dropped     int
	TooSmall    int
	NoSpace     int
	RenderFail  int
	Coverage    float64
	LargestSize float64
}

// Stats counts placed and dropped words by reason.
func (r *Result) Stats() Stats {
	s := Stats{Placed: len(r.Placed), Dropped: len(r.Dropped), Coverage: r.Coverage}
	if len(r.Placed) > 0 {
		s.LargestSize = r.Placed[0].Size
	}
	for _, d := range r.Dropped {
		switch d.Reason {
		case ReasonTooSmall:
			s.TooSmall++
		case ReasonNoSpace:
			s.NoSpace++
		case ReasonRenderFailed:
			s.RenderFail++
		}
	}
	return s
}

// Find returns the placed word with the given text.
func (r *Result) Find(text string) (PlacedWord, bool) {
	for _, p := range r.Placed {
		if p.Text == text {
			return p, true
		}
	}
	return PlacedWord{}, false
}

// WriteJSON encodes the result as indented JSON. Identical results always
// encode to identical bytes.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ReadJSON decodes a result written by [Result.WriteJSON].
func ReadJSON(rd io.Reader) (*Result, error) {
	var r Result
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode layout")
	}
	if err := errs.ValidateCanvas(r.Width, r.Height); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return &r, nil
}
