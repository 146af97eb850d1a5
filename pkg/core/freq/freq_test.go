package freq

import (
	"math"
	"testing"

	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

func TestNewSortsDescendingStable(t *testing.T) {
	tbl, err := New([]Entry{
		{"rain", 1},
		{"sky", 5},
		{"sun", 5},
		{"cloud", 10},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	want := []string{"cloud", "sky", "sun", "rain"}
	if tbl.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", tbl.Len(), len(want))
	}
	for i, w := range want {
		got := tbl.At(i)
		if got.Text != w {
			t.Errorf("At(%d).Text = %q, want %q", i, got.Text, w)
		}
		if got.Rank != i {
			t.Errorf("At(%d).Rank = %d, want %d", i, got.Rank, i)
		}
	}
}

func TestNewMergesDuplicates(t *testing.T) {
	tbl, err := New([]Entry{
		{"a", 2},
		{"b", 3},
		{"a", 2},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	if top := tbl.At(0); top.Text != "a" || top.Frequency != 4 {
		t.Errorf("At(0) = %+v, want a:4", top)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		opts    []Option
		code    errs.Code
	}{
		{"nil input", nil, nil, errs.ErrCodeEmptyInput},
		{"zero count", []Entry{{"a", 1}, {"b", 0}}, nil, errs.ErrCodeInvalidFrequency},
		{"negative count", []Entry{{"a", -1}}, nil, errs.ErrCodeInvalidFrequency},
		{"merged overflow", []Entry{{"a", math.MaxInt - 1}, {"a", 2}}, nil, errs.ErrCodeInvalidFrequency},
		{"folded overflow", []Entry{{"A", math.MaxInt}, {"a", 1}}, []Option{WithCaseFolding()}, errs.ErrCodeInvalidFrequency},
		{"all excluded", []Entry{{"the", 4}}, []Option{WithExclude("the")}, errs.ErrCodeEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries, tt.opts...)
			if !errs.Is(err, tt.code) {
				t.Errorf("New() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestWithMaxWordsTruncatesAfterSort(t *testing.T) {
	tbl, err := New([]Entry{
		{"low", 1},
		{"tie1", 3},
		{"high", 9},
		{"tie2", 3},
	}, WithMaxWords(2))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	if tbl.At(1).Text != "tie1" {
		t.Errorf("boundary tie should keep first input, got %q", tbl.At(1).Text)
	}
	if tbl.Truncated() != 2 {
		t.Errorf("Truncated() = %d, want 2", tbl.Truncated())
	}
}

func TestFilters(t *testing.T) {
	tbl, err := New([]Entry{
		{"a", 10},
		{"the", 8},
		{"Cloud", 3},
		{"cloud", 2},
	}, WithMinLength(2), WithExclude("the"), WithCaseFolding())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
	if w := tbl.At(0); w.Text != "Cloud" || w.Frequency != 5 {
		t.Errorf("At(0) = %+v, want Cloud:5", w)
	}
}

func TestFromMapDeterministic(t *testing.T) {
	m := map[string]int{"b": 1, "a": 1, "c": 1}
	for range 5 {
		tbl, err := FromMap(m)
		if err != nil {
			t.Fatalf("FromMap() error: %v", err)
		}
		if got := tbl.At(0).Text + tbl.At(1).Text + tbl.At(2).Text; got != "abc" {
			t.Fatalf("order = %q, want abc", got)
		}
	}
}

func TestWordsIsCopy(t *testing.T) {
	tbl, _ := New([]Entry{{"a", 1}})
	ws := tbl.Words()
	ws[0].Text = "mutated"
	if tbl.At(0).Text != "a" {
		t.Error("Words() must not expose internal storage")
	}
	if tbl.MaxFrequency() != 1 {
		t.Errorf("MaxFrequency() = %d, want 1", tbl.MaxFrequency())
	}
}
