// Package io reads word frequencies and masks from files and writes
// rendered artifacts.
//
// # Frequency Formats
//
// [ReadFrequencies] accepts three formats, selected explicitly or sniffed
// from the first non-blank byte:
//
// A JSON object mapping words to counts. Key order is preserved, so ties
// keep the order in which they appear in the file:
//
//	{"cloud": 10, "sky": 5, "rain": 1}
//
// A JSON array of entries:
//
//	[{"word": "cloud", "count": 10}, {"word": "sky", "count": 5}]
//
// Plain text, one entry per line. A line is either "word<TAB>count",
// "word,count", or a bare word that counts once per occurrence. Blank lines
// and lines starting with '#' are skipped:
//
//	cloud	10
//	sky,5
//	rain
//
// # Masks
//
// [LoadMask] decodes a PNG, JPEG, GIF, BMP or WebP image. Black pixels are
// the "set" bits of the resulting mask. With [occupancy.MaskAllow] words
// are placed only on black pixels; with [occupancy.MaskForbid] black pixels
// are kept free. The CLI defaults to allow. The mask can be
// resized to the canvas with nearest-neighbour sampling.
//
// # Export
//
// [WriteFile] writes an artifact, creating parent directories, and
// [FormatFromPath] infers the output format from a file extension.
package io
