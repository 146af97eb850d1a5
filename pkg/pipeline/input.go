package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/wordcloud/pkg/cache"
	"github.com/matzehuels/wordcloud/pkg/core/freq"
	"github.com/matzehuels/wordcloud/pkg/core/occupancy"
	pkgio "github.com/matzehuels/wordcloud/pkg/io"
)

// =============================================================================
// Load Stage
// =============================================================================

// LoadTable builds the frequency table. A prebuilt opts.Table wins, then
// inline opts.Words, then the file at opts.Input.
func LoadTable(opts Options) (*freq.Table, error) {
	if opts.Table != nil {
		return opts.Table, nil
	}
	entries := opts.Words
	if len(entries) == 0 && opts.Input != "" {
		var err error
		if entries, err = pkgio.ImportFrequencies(opts.Input); err != nil {
			return nil, err
		}
	}
	return freq.New(entries, tableOptions(opts)...)
}

func tableOptions(opts Options) []freq.Option {
	var out []freq.Option
	if opts.MaxWords > 0 {
		out = append(out, freq.WithMaxWords(opts.MaxWords))
	}
	if opts.MinLength > 0 {
		out = append(out, freq.WithMinLength(opts.MinLength))
	}
	if len(opts.Exclude) > 0 {
		out = append(out, freq.WithExclude(opts.Exclude...))
	}
	if opts.FoldCase {
		out = append(out, freq.WithCaseFolding())
	}
	return out
}

// LoadMask returns opts.Mask, or decodes opts.MaskPath resized to the
// canvas when one is set. It returns nil when no mask is configured.
func LoadMask(opts Options) (*occupancy.Mask, error) {
	if opts.Mask != nil {
		return opts.Mask, nil
	}
	if opts.MaskPath == "" {
		return nil, nil
	}
	mode, err := occupancy.ParseMaskMode(opts.MaskMode)
	if err != nil {
		return nil, err
	}
	threshold := DefaultMaskThreshold
	if opts.MaskThreshold != nil {
		threshold = *opts.MaskThreshold
	}
	return pkgio.LoadMask(opts.MaskPath, pkgio.MaskOptions{
		Mode:      mode,
		Width:     opts.Width,
		Height:    opts.Height,
		Threshold: uint8(threshold),
	})
}

// TableHash returns the content hash of t.
func TableHash(t *freq.Table) string {
	data, _ := json.Marshal(t.Entries())
	return cache.Hash(data)
}

// MaskHash returns the content hash of m, or "" for no mask.
func MaskHash(m *occupancy.Mask) string {
	if m == nil {
		return ""
	}
	buf := make([]byte, len(m.Bits))
	for i, b := range m.Bits {
		if b {
			buf[i] = 1
		}
	}
	return fmt.Sprintf("%s:%dx%d:%s", m.Mode, m.Width, m.Height, cache.Hash(buf))
}
