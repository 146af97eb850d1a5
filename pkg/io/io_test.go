package io

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/wordcloud/pkg/core/freq"
	"github.com/matzehuels/wordcloud/pkg/core/occupancy"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

func TestReadFrequencies(t *testing.T) {
	want := []freq.Entry{{Text: "sky", Count: 5}, {Text: "cloud", Count: 10}, {Text: "rain", Count: 1}}
	tests := []struct {
		name   string
		input  string
		format Format
		want   []freq.Entry
	}{
		{"json object keeps order", `{"sky": 5, "cloud": 10, "rain": 1}`, FormatAuto, want},
		{"json array", `[{"word":"sky","count":5},{"word":"cloud","count":10},{"word":"rain","count":1}]`, FormatAuto, want},
		{"tsv", "sky\t5\ncloud\t10\nrain\t1\n", FormatAuto, want},
		{"csv with comments", "# header\nsky,5\n\ncloud, 10\nrain,1", FormatCSV, want},
		{"bare words", "sky\ncloud\nsky\n", FormatLines, []freq.Entry{{Text: "sky", Count: 2}, {Text: "cloud", Count: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFrequencies(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadFrequencies() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadFrequencies() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadFrequenciesErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		code   errs.Code
	}{
		{"empty", "  \n", FormatAuto, errs.ErrCodeEmptyInput},
		{"bad json", `{"a": "x"}`, FormatAuto, errs.ErrCodeInvalidFormat},
		{"bad count", "a\tmany", FormatAuto, errs.ErrCodeInvalidFormat},
		{"unknown format", "a", Format("xml"), errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrequencies(strings.NewReader(tt.input), tt.format)
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestImportFrequencies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.json")
	if err := os.WriteFile(path, []byte(`{"a": 2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ImportFrequencies(path)
	if err != nil || len(got) != 1 || got[0].Count != 2 {
		t.Fatalf("ImportFrequencies() = %v, %v", got, err)
	}
	if _, err := ImportFrequencies(filepath.Join(dir, "missing.txt")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func maskImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(3, 1, color.Gray{Y: 10})
	return img
}

func TestReadMask(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, maskImage()); err != nil {
		t.Fatal(err)
	}
	m, err := ReadMask(&buf, MaskOptions{Mode: occupancy.MaskAllow})
	if err != nil {
		t.Fatalf("ReadMask() error: %v", err)
	}
	if m.Width != 4 || m.Height != 2 || m.Mode != occupancy.MaskAllow {
		t.Fatalf("mask = %dx%d %s", m.Width, m.Height, m.Mode)
	}
	if !m.At(0, 0) || m.At(3, 1) || m.At(1, 0) {
		t.Error("only pure black should be set with zero threshold")
	}
	if m.Blocked(0, 0) || !m.Blocked(1, 0) {
		t.Error("allow mode: black is free, white is blocked")
	}

	loose := MaskFromImage(maskImage(), MaskOptions{Threshold: 16})
	if !loose.At(3, 1) {
		t.Error("threshold 16 should accept gray 10")
	}
	edge := MaskFromImage(maskImage(), MaskOptions{Threshold: 10})
	if !edge.At(3, 1) {
		t.Error("a pixel exactly at the threshold counts as black")
	}
	if tight := MaskFromImage(maskImage(), MaskOptions{Threshold: 9}); tight.At(3, 1) {
		t.Error("threshold 9 should reject gray 10")
	}

	if _, err := ReadMask(strings.NewReader("not an image"), MaskOptions{}); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("bad image error = %v", err)
	}
}

func TestMaskFromImageResizes(t *testing.T) {
	m := MaskFromImage(maskImage(), MaskOptions{Width: 8, Height: 4})
	if m.Width != 8 || m.Height != 4 {
		t.Fatalf("size = %dx%d", m.Width, m.Height)
	}
	if !m.At(0, 0) || !m.At(1, 1) || m.At(2, 0) {
		t.Error("nearest-neighbour upscale should double the black pixel")
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]string{"a.PNG": "png", "dir/out.svg": "svg", "x.pdf": "pdf", "l.json": "json"} {
		if got, err := FormatFromPath(path); err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := FormatFromPath("out.gif"); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("gif error = %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.txt")
	if err := WriteFile(path, []byte("hi")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hi" {
		t.Errorf("read back %q, %v", data, err)
	}
}
