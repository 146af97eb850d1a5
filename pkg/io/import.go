package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/wordcloud/pkg/core/freq"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// Format names a frequency input format.
type Format string

const (
	FormatAuto  Format = ""
	FormatJSON  Format = "json"
	FormatText  Format = "text"
	FormatCSV   Format = "csv"
	FormatLines Format = "lines"
)

// ReadFrequencies decodes entries from r. FormatAuto sniffs JSON by its
// first byte and falls back to text. Text, CSV and lines are the same
// line-oriented parser.
func ReadFrequencies(r io.Reader, format Format) ([]freq.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read frequencies")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errs.New(errs.ErrCodeEmptyInput, "frequency input is empty")
	}

	if format == FormatAuto {
		format = FormatText
		if trimmed[0] == '{' || trimmed[0] == '[' {
			format = FormatJSON
		}
	}
	switch format {
	case FormatJSON:
		return readJSON(trimmed)
	case FormatText, FormatCSV, FormatLines:
		return readLines(trimmed)
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown frequency format %q", format)
}

// ImportFrequencies reads the frequency file at path. The format is taken
// from the extension (.json, .tsv, .csv, .txt) or sniffed.
func ImportFrequencies(path string) ([]freq.Entry, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".csv":
		format = FormatCSV
	case ".tsv", ".txt":
		format = FormatText
	}
	entries, err := ReadFrequencies(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func readJSON(data []byte) ([]freq.Entry, error) {
	if data[0] == '[' {
		var entries []freq.Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode frequency array")
		}
		return entries, nil
	}

	// Stream the object so key order survives.
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode frequency object")
	}
	var entries []freq.Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode frequency object")
		}
		word, _ := tok.(string)
		var count int
		if err := dec.Decode(&count); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "count for %q", word)
		}
		entries = append(entries, freq.Entry{Text: word, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode frequency object")
	}
	return entries, nil
}

func readLines(data []byte) ([]freq.Entry, error) {
	var entries []freq.Entry
	bare := map[string]int{} // word -> index of its entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if w, c, ok := splitCount(line); ok {
			v, err := strconv.Atoi(c)
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "line %d: bad count %q", n, c)
			}
			entries = append(entries, freq.Entry{Text: w, Count: v})
			continue
		}
		if i, ok := bare[line]; ok {
			entries[i].Count++
			continue
		}
		bare[line] = len(entries)
		entries = append(entries, freq.Entry{Text: line, Count: 1})
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "scan frequencies")
	}
	return entries, nil
}

// splitCount splits "word<TAB>count" or "word,count".
func splitCount(line string) (word, count string, ok bool) {
	if w, c, found := strings.Cut(line, "\t"); found {
		return strings.TrimSpace(w), strings.TrimSpace(c), true
	}
	if i := strings.LastIndexByte(line, ','); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
	}
	return "", "", false
}
