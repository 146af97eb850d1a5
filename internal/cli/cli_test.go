package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/matzehuels/wordcloud/pkg/core/freq"
	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/pipeline"
)

func TestOptionFlagsOnlyChangedFlagsApply(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cloud.toml")
	if err := os.WriteFile(cfg, []byte("input = \"words.tsv\"\nwidth = 600\nheight = 300\ncolors = \"gray\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	b := newOptionFlags(fs)
	b.inputFlags()
	b.layoutFlags()
	b.renderFlags(false)

	if err := fs.Parse([]string{"--config", cfg, "--height", "250", "--margin", "0", "-f", "SVG, png"}); err != nil {
		t.Fatal(err)
	}
	opts, err := b.options()
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}

	if opts.Width != 600 {
		t.Errorf("Width = %d, want 600 from config", opts.Width)
	}
	if opts.Height != 250 {
		t.Errorf("Height = %d, want 250 from flag", opts.Height)
	}
	if opts.Colors != "gray" {
		t.Errorf("Colors = %q, want gray from config", opts.Colors)
	}
	if opts.Margin == nil || *opts.Margin != 0 {
		t.Errorf("Margin = %v, want explicit 0", opts.Margin)
	}
	if opts.RotateChance != nil {
		t.Error("unchanged --rotate-chance must stay unset")
	}
	if want := []string{"svg", "png"}; !reflect.DeepEqual(opts.Formats, want) {
		t.Errorf("Formats = %v, want %v", opts.Formats, want)
	}
	if opts.Input != filepath.Join(dir, "words.tsv") {
		t.Errorf("Input = %q, want it resolved against the config dir", opts.Input)
	}
}

func TestOptionFlagsBadConfig(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	b := newOptionFlags(fs)
	if err := fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.options(); err == nil {
		t.Error("options() should fail for a missing config file")
	}
}

func TestResolveInput(t *testing.T) {
	var opts pipeline.Options
	if err := resolveInput(&opts, []string{"-"}, strings.NewReader("sky\t3\nrain\t1\n")); err != nil {
		t.Fatalf("resolveInput(stdin) error: %v", err)
	}
	want := []freq.Entry{{Text: "sky", Count: 3}, {Text: "rain", Count: 1}}
	if opts.Input != "" || !reflect.DeepEqual(opts.Words, want) {
		t.Errorf("stdin input = %q, %v", opts.Input, opts.Words)
	}

	opts = pipeline.Options{}
	if err := resolveInput(&opts, nil, nil); err == nil {
		t.Error("resolveInput() without any input should fail")
	}

	opts = pipeline.Options{Input: "from-config.txt"}
	if err := resolveInput(&opts, []string{"arg.txt"}, nil); err != nil || opts.Input != "arg.txt" {
		t.Errorf("positional argument should win: %q, %v", opts.Input, err)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, input, format string
		count                 int
		want                  string
	}{
		{"", "data/words.tsv", "svg", 1, "data/words.svg"},
		{"", "data/words.tsv", "png", 2, "data/words.png"},
		{"out.png", "words.tsv", "png", 1, "out.png"},
		{"out/cloud.svg", "words.tsv", "png", 2, "out/cloud.png"},
		{"out/cloud", "words.tsv", "pdf", 2, "out/cloud.pdf"},
		{"", "", "svg", 1, stdinName + ".svg"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.input, tt.format, tt.count); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %d) = %q, want %q", tt.output, tt.input, tt.format, tt.count, got, tt.want)
		}
	}
}

func TestRootCommandRejectsUnknownCache(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--cache", "memcached", "cache", "path"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("unknown cache backend should be rejected")
	}
}

func TestRenderCommandWritesFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	input := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(input, []byte("cloud,9\nrain,5\nsky,3\nwind,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"render", input, "--width", "200", "--height", "100", "--max-size", "30", "-f", "svg,json"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render error: %v", err)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "words.svg"))
	if err != nil || !bytes.Contains(svg, []byte("<svg")) {
		t.Fatalf("words.svg = %.40q, %v", svg, err)
	}
	res, err := readLayout(filepath.Join(dir, "words.json"))
	if err != nil {
		t.Fatalf("words.json is not a layout: %v", err)
	}
	if res.Width != 200 || len(res.Placed)+len(res.Dropped) != 4 {
		t.Errorf("layout %dx%d with %d+%d words", res.Width, res.Height, len(res.Placed), len(res.Dropped))
	}
}

func TestLayoutThenVisualize(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	input := filepath.Join(dir, "words.tsv")
	if err := os.WriteFile(input, []byte("cloud\t9\nrain\t5\nsky\t3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"layout", input, "--width", "160", "--height", "80", "--seed", "5"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	layoutPath := filepath.Join(dir, "words.layout.json")
	if _, err := os.Stat(layoutPath); err != nil {
		t.Fatalf("layout output missing: %v", err)
	}

	root = New(&bytes.Buffer{}, LogInfo).RootCommand()
	out := filepath.Join(dir, "out", "cloud.png")
	root.SetArgs([]string{"visualize", layoutPath, "-f", "png", "-o", out, "--colors", "gray"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("visualize error: %v", err)
	}
	png, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("cloud.png invalid: %v", err)
	}
}

func testLayout() *layout.Result {
	res := &layout.Result{Width: 100, Height: 50, Seed: 1}
	for i, w := range []string{"a", "b", "c"} {
		res.Placed = append(res.Placed, layout.PlacedWord{
			SizedWord: layout.SizedWord{Word: freq.Word{Text: w, Frequency: 3 - i, Rank: i}, Size: float64(20 - i)},
			Width:     10,
			Height:    10,
		})
	}
	res.Dropped = []layout.DroppedWord{{Word: freq.Word{Text: "tiny", Frequency: 1, Rank: 3}, Size: 2, Reason: layout.ReasonTooSmall}}
	return res
}

func TestInspectModelNavigation(t *testing.T) {
	m := NewInspectModel(testLayout(), "cloud.layout.json")
	m.Height = 2

	press := func(key string) {
		var msg tea.KeyMsg
		switch key {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		next, _ := m.Update(msg)
		m = next.(InspectModel)
	}

	press("down")
	press("down")
	press("down")
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want clamped to 2", m.Cursor)
	}
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1 so the cursor stays visible", m.Offset)
	}

	press("tab")
	if m.Tab != tabDropped || m.Cursor != 0 {
		t.Errorf("after tab: Tab = %d, Cursor = %d", m.Tab, m.Cursor)
	}
	if view := m.View(); !strings.Contains(view, "tiny") || !strings.Contains(view, string(layout.ReasonTooSmall)) {
		t.Error("dropped view should list the dropped word and its reason")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestWordTable(t *testing.T) {
	out := wordTable(testLayout(), tabPlaced, 0, 3, -1)
	for _, want := range []string{"Word", "a", "b", "c", "10x10"} {
		if !strings.Contains(out, want) {
			t.Errorf("placed table missing %q", want)
		}
	}
}
