// Package freq builds the ranked word table that drives a layout run.
//
// A [Table] is an immutable, descending-by-frequency sequence of [Word]
// values. Ties keep the order in which words first appeared in the input,
// so the same input always yields the same ranking. Duplicate entries are
// merged by summing their counts before sorting.
//
//	t, err := freq.New([]freq.Entry{
//	    {Text: "cloud", Count: 10},
//	    {Text: "sky", Count: 5},
//	}, freq.WithMaxWords(200))
package freq

import (
	"maps"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// Entry is one raw (word, count) pair as produced by a tokenizer.
type Entry struct {
	Text  string `json:"word"`
	Count int    `json:"count"`
}

// Word is a ranked entry of a [Table].
type Word struct {
	Text      string `json:"text"`
	Frequency int    `json:"frequency"`
	Rank      int    `json:"rank"`
}

// Table is the sorted, de-duplicated word list.
type Table struct {
	words     []Word
	truncated int
}

// Option configures [New].
type Option func(*options)

type options struct {
	maxWords  int
	minLength int
	exclude   map[string]bool
	fold      bool
}

// WithMaxWords keeps only the top n words after sorting. n <= 0 disables
// truncation.
func WithMaxWords(n int) Option { return func(o *options) { o.maxWords = n } }

// WithMinLength drops words shorter than n runes before merging.
func WithMinLength(n int) Option { return func(o *options) { o.minLength = n } }

// WithExclude drops the given words (stop words) before merging.
// Matching is exact unless [WithCaseFolding] is also set.
func WithExclude(words ...string) Option {
	return func(o *options) {
		if o.exclude == nil {
			o.exclude = make(map[string]bool, len(words))
		}
		for _, w := range words {
			o.exclude[w] = true
		}
	}
}

// WithCaseFolding merges words that differ only in case. The spelling of
// the first occurrence is kept.
func WithCaseFolding() Option { return func(o *options) { o.fold = true } }

// New validates entries and builds a Table.
//
// It returns an INVALID_FREQUENCY error for the first entry with a
// non-positive count, or whose merged count would overflow, and
// EMPTY_INPUT when nothing is left after filtering.
func New(entries []Entry, opts ...Option) (*Table, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	type acc struct {
		text  string
		count int
		first int
	}
	merged := make(map[string]*acc, len(entries))
	order := make([]*acc, 0, len(entries))

	for i, e := range entries {
		if err := errs.ValidateFrequency(e.Text, e.Count); err != nil {
			return nil, err
		}
		if o.minLength > 0 && utf8.RuneCountInString(e.Text) < o.minLength {
			continue
		}
		key := e.Text
		if o.fold {
			key = strings.ToLower(key)
		}
		if o.exclude[e.Text] || o.exclude[key] {
			continue
		}
		if a, ok := merged[key]; ok {
			if a.count > math.MaxInt-e.Count {
				return nil, errs.New(errs.ErrCodeInvalidFrequency, "word %q: merged count overflows", a.text)
			}
			a.count += e.Count
			continue
		}
		a := &acc{text: e.Text, count: e.Count, first: i}
		merged[key] = a
		order = append(order, a)
	}

	if len(order) == 0 {
		return nil, errs.New(errs.ErrCodeEmptyInput, "no words to lay out")
	}

	// order is already in first-occurrence order, so a stable sort on count
	// alone breaks ties by input position.
	slices.SortStableFunc(order, func(a, b *acc) int {
		return b.count - a.count
	})

	t := &Table{}
	n := len(order)
	if o.maxWords > 0 && n > o.maxWords {
		t.truncated = n - o.maxWords
		n = o.maxWords
	}
	t.words = make([]Word, n)
	for i := range n {
		t.words[i] = Word{Text: order[i].text, Frequency: order[i].count, Rank: i}
	}
	return t, nil
}

// FromMap builds a Table from an unordered map. Keys are visited in
// lexical order so that frequency ties rank deterministically.
func FromMap(m map[string]int, opts ...Option) (*Table, error) {
	keys := slices.Sorted(maps.Keys(m))
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Text: k, Count: m[k]}
	}
	return New(entries, opts...)
}

// Len returns the number of words in the table.
func (t *Table) Len() int { return len(t.words) }

// At returns the word with rank i.
func (t *Table) At(i int) Word { return t.words[i] }

// Words returns a copy of the ranked words.
func (t *Table) Words() []Word { return slices.Clone(t.words) }

// MaxFrequency returns the frequency of the top-ranked word.
func (t *Table) MaxFrequency() int {
	if len(t.words) == 0 {
		return 0
	}
	return t.words[0].Frequency
}

// Truncated returns how many words were cut by [WithMaxWords].
func (t *Table) Truncated() int { return t.truncated }

// Entries converts the table back to raw entries in rank order. Useful for
// cache keys and serialization.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.words))
	for i, w := range t.words {
		out[i] = Entry{Text: w.Text, Count: w.Frequency}
	}
	return out
}
