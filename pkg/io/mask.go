package io

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/wordcloud/pkg/core/occupancy"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// MaskOptions controls how an image becomes a mask.
type MaskOptions struct {
	// Mode is the meaning of black pixels.
	Mode occupancy.MaskMode

	// Width and Height, when both positive, resize the image to that size
	// with nearest-neighbour sampling.
	Width, Height int

	// Threshold is the gray level at or below which a pixel counts as black.
	// Zero means only pure black (0) counts.
	Threshold uint8
}

// ReadMask decodes an image from r and converts it into a mask.
func ReadMask(r io.Reader, opts MaskOptions) (*occupancy.Mask, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode mask image")
	}
	return MaskFromImage(src, opts), nil
}

// LoadMask reads the mask image at path.
func LoadMask(path string, opts MaskOptions) (*occupancy.Mask, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open mask %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open mask %s", path)
	}
	defer f.Close()
	return ReadMask(f, opts)
}

// MaskFromImage converts src to a mask; see [MaskOptions].
func MaskFromImage(src image.Image, opts MaskOptions) *occupancy.Mask {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if opts.Width > 0 && opts.Height > 0 {
		w, h = opts.Width, opts.Height
	}
	gray := image.NewGray(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(gray, gray.Bounds(), src, b, draw.Src, nil)
	}

	mode := opts.Mode
	m := occupancy.NewMask(w, h, mode)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if gray.Pix[y*gray.Stride+x] <= opts.Threshold {
				m.Set(x, y, true)
			}
		}
	}
	return m
}
