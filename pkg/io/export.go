package io

import (
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// Output format names.
const (
	OutputPNG  = "png"
	OutputSVG  = "svg"
	OutputPDF  = "pdf"
	OutputJSON = "json"
)

// OutputFormats lists every supported output format.
var OutputFormats = []string{OutputPNG, OutputSVG, OutputPDF, OutputJSON}

// FormatFromPath infers the output format from the file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range OutputFormats {
		if ext == f {
			return f, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer output format from %q (want .png, .svg, .pdf or .json)", path)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := errs.ValidatePath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
