// Package layout places ranked words on a canvas without overlap.
//
// # Overview
//
// A layout run takes a [freq.Table] and a [Rasterizer] and produces a
// [Result]: the words that were placed, each with its font size, rotation
// and top-left position, plus the words that were dropped and why.
//
// Words are handled strictly in rank order. For each word the engine:
//
//  1. Maps its frequency to a font size (see package sizing). Words below
//     the minimum size are dropped as [ReasonTooSmall].
//  2. Draws a rotation from the run's random source.
//  3. Rasterizes the word into a [glyph.Mask].
//  4. Walks an outward Archimedean spiral from the canvas centre (or the
//     centroid of the mask's free area) and commits the glyph at the first
//     position where it does not collide with anything already placed.
//  5. If the spiral is exhausted, shrinks the word by the font step and
//     retries, then retries the other allowed rotations. A word that never
//     fits is dropped as [ReasonNoSpace].
//
// A rasterizer failure drops only that word ([ReasonRenderFailed]). Once a
// word is placed it never moves.
//
// # Determinism
//
// The engine owns a single PCG generator seeded from [WithSeed]. It is
// consumed in word order for rotation choice and, when enabled, start
// jitter. The same table, seed and options always produce the same
// [Result], byte for byte when encoded with [Result.WriteJSON].
//
// # Building a Layout
//
//	t, _ := freq.New(entries)
//	res, err := layout.Build(t, fonts.NewRasterizer(face),
//	    layout.WithCanvas(800, 400),
//	    layout.WithSeed(42),
//	)
//
// # Options
//
//   - [WithCanvas]: canvas size (default 800x400)
//   - [WithSeed]: random seed (default 0)
//   - [WithRotations], [WithRotateChance]: discrete rotation set (default {0, 90}, chance 0.1)
//   - [WithRotationRange]: continuous rotation range instead of a set
//   - [WithMask], [WithMaskCentroid]: constrain placement to a mask
//   - [WithMargin]: gap between words (default 2px)
//   - [WithFontStep]: shrink step when a word does not fit (default 1)
//   - [WithSpiral], [WithMaxRadius]: spiral geometry and bound
//   - [WithObserver]: receive [Event] values for every state change
//
// # State Machine
//
// An [Engine] moves through Idle, Sizing, then PlacingWord followed by
// Committed or Dropped for every word, and finally Done. No state is
// revisited and an engine cannot be reused.
package layout
