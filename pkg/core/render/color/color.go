// Package color provides the colour functions used by sinks to paint
// placed words.
//
// A [Func] receives a placed word and a random source owned by the sink.
// The sink seeds that source from the layout seed and calls the function
// once per word in placement order, so colours are as reproducible as the
// layout itself.
package color

import (
	stdcolor "image/color"
	"math/rand/v2"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"

	"github.com/matzehuels/wordcloud/pkg/core/layout"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// Func picks the fill colour of a placed word.
type Func func(w layout.PlacedWord, rng *rand.Rand) stdcolor.RGBA

// Scheme names accepted by [FromName].
const (
	SchemeRandom = "random"
	SchemeGray   = "gray"
)

// DefaultBackground is the canvas colour when none is configured.
var DefaultBackground = stdcolor.RGBA{A: 255}

// Random picks a fully saturated colour with a uniformly random hue.
func Random() Func {
	return func(_ layout.PlacedWord, rng *rand.Rand) stdcolor.RGBA {
		return fromColorful(colorful.Hsl(rng.Float64()*360, 1, 0.5))
	}
}

// Gray picks a random gray with lightness between 40% and 100%.
func Gray() Func {
	return func(_ layout.PlacedWord, rng *rand.Rand) stdcolor.RGBA {
		return fromColorful(colorful.Hsl(0, 0, 0.4+rng.Float64()*0.6))
	}
}

// Solid paints every word with c.
func Solid(c stdcolor.RGBA) Func {
	return func(layout.PlacedWord, *rand.Rand) stdcolor.RGBA { return c }
}

// Palette cycles through CSS colours by word rank.
func Palette(colors ...string) (Func, error) {
	if len(colors) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidColor, "palette needs at least one colour")
	}
	parsed := make([]stdcolor.RGBA, len(colors))
	for i, s := range colors {
		c, err := Parse(s)
		if err != nil {
			return nil, err
		}
		parsed[i] = c
	}
	return func(w layout.PlacedWord, _ *rand.Rand) stdcolor.RGBA {
		return parsed[w.Rank%len(parsed)]
	}, nil
}

// Gradient blends from one CSS colour to another in Lab space, by font
// size relative to maxSize.
func Gradient(from, to string, maxSize float64) (Func, error) {
	a, err := csscolorparser.Parse(from)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidColor, err, "parse colour %q", from)
	}
	b, err := csscolorparser.Parse(to)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidColor, err, "parse colour %q", to)
	}
	ca := colorful.Color{R: a.R, G: a.G, B: a.B}
	cb := colorful.Color{R: b.R, G: b.G, B: b.B}
	return func(w layout.PlacedWord, _ *rand.Rand) stdcolor.RGBA {
		t := 0.0
		if maxSize > 0 {
			t = 1 - min(w.Size/maxSize, 1)
		}
		return fromColorful(ca.BlendLab(cb, t).Clamped())
	}, nil
}

// FromName resolves a colour scheme: "random", "gray", a single CSS colour,
// or a comma-separated list of CSS colours used as a palette. An empty name
// selects Random.
func FromName(name string) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SchemeRandom:
		return Random(), nil
	case SchemeGray, "grey":
		return Gray(), nil
	}
	return Palette(strings.Split(name, ",")...)
}

// Parse parses any CSS colour (names, hex, rgb(), hsl(), ...).
func Parse(s string) (stdcolor.RGBA, error) {
	c, err := csscolorparser.Parse(strings.TrimSpace(s))
	if err != nil {
		return stdcolor.RGBA{}, errs.Wrap(errs.ErrCodeInvalidColor, err, "parse colour %q", s)
	}
	r, g, b, a := c.RGBA255()
	return stdcolor.RGBA{R: r, G: g, B: b, A: a}, nil
}

// Hex formats c as #rrggbb, ignoring alpha.
func Hex(c stdcolor.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

func fromColorful(c colorful.Color) stdcolor.RGBA {
	r, g, b := c.RGB255()
	return stdcolor.RGBA{R: r, G: g, B: b, A: 255}
}
