package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/wordcloud/pkg/cache"
	"github.com/matzehuels/wordcloud/pkg/core/freq"
	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/core/occupancy"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Width != layout.DefaultWidth || opts.Height != layout.DefaultHeight {
		t.Errorf("canvas = %dx%d", opts.Width, opts.Height)
	}
	if opts.Seed == nil || *opts.Seed != DefaultSeed {
		t.Errorf("Seed should default to %d, got %v", DefaultSeed, opts.Seed)
	}
	if opts.MaskMode != "allow" {
		t.Errorf("MaskMode = %q", opts.MaskMode)
	}

	masked := Options{MaskPath: "mask.png"}
	masked.SetLayoutDefaults()
	if masked.Width != 0 || masked.Height != 0 {
		t.Error("canvas should stay unset when a mask gives the size")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Colors != "random" || opts.Background != "black" || opts.Scale != 1 {
		t.Errorf("render defaults = %q %q %v", opts.Colors, opts.Background, opts.Scale)
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidateForLayout(t *testing.T) {
	words := []freq.Entry{{Text: "a", Count: 1}}
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"no words", Options{}, errs.ErrCodeEmptyInput},
		{"bad canvas", Options{Words: words, Width: -1, Height: 10}, errs.ErrCodeInvalidCanvas},
		{"bad mask mode", Options{Words: words, MaskMode: "invert"}, errs.ErrCodeInvalidConfig},
		{"bad engine", Options{Words: words, FontEngine: "cairo"}, errs.ErrCodeInvalidConfig},
		{"bad chance", Options{Words: words, RotateChance: ptr(1.5)}, errs.ErrCodeInvalidConfig},
		{"bad range", Options{Words: words, RotationRange: []float64{1}}, errs.ErrCodeInvalidConfig},
		{"min above max", Options{Words: words, MinSize: 20, MaxSize: 10}, errs.ErrCodeInvalidConfig},
		{"negative margin", Options{Words: words, Margin: ptr(-1)}, errs.ErrCodeInvalidConfig},
		{"negative radius", Options{Words: words, MaxRadius: -5}, errs.ErrCodeInvalidConfig},
		{"negative timeout", Options{Words: words, Timeout: Duration(-time.Second)}, errs.ErrCodeInvalidConfig},
		{"negative scaling", Options{Words: words, Scaling: ptr(-0.5)}, errs.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	ok := Options{Words: words, RotateChance: ptr(0.0), Margin: ptr(0)}
	if err := ok.ValidateForLayout(); err != nil {
		t.Errorf("zero chance and margin are valid: %v", err)
	}
}

func TestValidateForLayoutKeepsExplicitZeros(t *testing.T) {
	opts := Options{
		Words:   []freq.Entry{{Text: "a", Count: 1}},
		Seed:    ptr(uint64(0)),
		Scaling: ptr(0.0),
	}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("ValidateForLayout() error: %v", err)
	}
	if opts.Seed == nil || *opts.Seed != 0 {
		t.Errorf("seed 0 was replaced by %v", opts.Seed)
	}
	if opts.Scaling == nil || *opts.Scaling != 0 {
		t.Errorf("scaling 0 was replaced by %v", opts.Scaling)
	}

	k := opts.LayoutKeyOpts("")
	if k.Seed != 0 || k.Exponent != 0 {
		t.Errorf("key opts seed=%d exponent=%v, want 0 and 0", k.Seed, k.Exponent)
	}
	unset := Options{Words: opts.Words}
	unset.SetLayoutDefaults()
	if k.Seed == unset.LayoutKeyOpts("").Seed {
		t.Error("seed 0 must not share a cache key with the default seed")
	}
}

func TestLayoutOptionsZeroScalingFlattensSizes(t *testing.T) {
	words := []freq.Entry{{Text: "cloud", Count: 9}, {Text: "sky", Count: 3}, {Text: "sun", Count: 1}}
	tbl, err := freq.New(words)
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Words: words, Width: 400, Height: 200, MaxSize: 20, Seed: ptr(uint64(0)), Scaling: ptr(0.0)}
	res, err := GenerateLayout(context.Background(), tbl, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Seed != 0 {
		t.Errorf("layout seed = %d, want 0", res.Seed)
	}
	for _, p := range res.Placed {
		if p.Size != 20 {
			t.Errorf("%q placed at size %v, want 20 for exponent 0", p.Word.Text, p.Size)
		}
	}
}

func TestValidateForRender(t *testing.T) {
	for _, opts := range []Options{
		{Colors: "#zzz,#fff"},
		{Background: "not-a-colour"},
		{Formats: []string{"gif"}},
		{Scale: 100},
	} {
		if err := opts.ValidateForRender(); err == nil {
			t.Errorf("%+v should fail", opts)
		}
	}
	opts := Options{Colors: "gray", Background: "#101010", Formats: []string{"png", "json"}}
	if err := opts.ValidateForRender(); err != nil {
		t.Errorf("valid render options: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "cloud.toml")
	os.WriteFile(tomlPath, []byte(`
input = "words.tsv"
width = 640
height = 320
seed = 7
rotations = [0, 90, 270]
rotate_chance = 0.0
margin = 0
timeout = "45s"
formats = ["svg", "png"]
`), 0o644)

	opts, err := LoadConfig(tomlPath)
	if err != nil {
		t.Fatalf("LoadConfig(toml) error: %v", err)
	}
	if opts.Input != filepath.Join(dir, "words.tsv") {
		t.Errorf("Input = %q, want resolved against config dir", opts.Input)
	}
	if opts.Width != 640 || opts.Seed == nil || *opts.Seed != 7 || len(opts.Rotations) != 3 {
		t.Errorf("decoded %+v", opts)
	}
	if opts.RotateChance == nil || *opts.RotateChance != 0 || opts.Margin == nil || *opts.Margin != 0 {
		t.Error("explicit zeros should be preserved")
	}
	if time.Duration(opts.Timeout) != 45*time.Second {
		t.Errorf("Timeout = %v", opts.Timeout)
	}

	yamlPath := filepath.Join(dir, "cloud.yaml")
	os.WriteFile(yamlPath, []byte("width: 300\nheight: 200\ncolors: gray\nmask: /abs/mask.png\ntimeout: 5s\n"), 0o644)
	opts, err = LoadConfig(yamlPath)
	if err != nil {
		t.Fatalf("LoadConfig(yaml) error: %v", err)
	}
	if opts.Width != 300 || opts.Colors != "gray" || opts.MaskPath != "/abs/mask.png" {
		t.Errorf("decoded %+v", opts)
	}
	if time.Duration(opts.Timeout) != 5*time.Second {
		t.Errorf("Timeout = %v", opts.Timeout)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		os.WriteFile(p, []byte(content), 0o644)
		return p
	}
	tests := []struct {
		name string
		path string
		code errs.Code
	}{
		{"unknown toml key", write("a.toml", "widht = 3\n"), errs.ErrCodeInvalidConfig},
		{"unknown yaml key", write("b.yaml", "widht: 3\n"), errs.ErrCodeInvalidConfig},
		{"bad duration", write("c.toml", "timeout = \"soon\"\n"), errs.ErrCodeInvalidConfig},
		{"extension", write("d.ini", "width=3"), errs.ErrCodeInvalidFormat},
		{"missing", filepath.Join(dir, "none.toml"), errs.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(tt.path); !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLayoutOptionsCanvasFromMask(t *testing.T) {
	mask := occupancy.NewMask(120, 80, occupancy.MaskAllow)
	for i := range mask.Bits {
		mask.Bits[i] = true
	}
	words := []freq.Entry{{Text: "cloud", Count: 3}, {Text: "sky", Count: 1}}
	tbl, err := freq.New(words)
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Words: words, Mask: mask, Seed: ptr(uint64(1))}
	res, err := GenerateLayout(context.Background(), tbl, mask, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Width != 120 || res.Height != 80 {
		t.Errorf("canvas = %dx%d, want the mask size", res.Width, res.Height)
	}
}

func TestMaskHash(t *testing.T) {
	a := occupancy.NewMask(4, 4, occupancy.MaskAllow)
	b := occupancy.NewMask(4, 4, occupancy.MaskAllow)
	if MaskHash(a) != MaskHash(b) {
		t.Error("equal masks should hash equally")
	}
	b.Set(1, 1, true)
	if MaskHash(a) == MaskHash(b) {
		t.Error("different bits should change the hash")
	}
	if MaskHash(nil) != "" {
		t.Error("nil mask hashes to empty")
	}
}

func sampleOptions() Options {
	return Options{
		Words: []freq.Entry{
			{Text: "cloud", Count: 12},
			{Text: "sky", Count: 8},
			{Text: "rain", Count: 5},
			{Text: "wind", Count: 3},
			{Text: "sun", Count: 2},
		},
		Width:   320,
		Height:  160,
		MaxSize: 48,
		Seed:    ptr(uint64(3)),
		Formats: []string{FormatSVG, FormatPNG, FormatJSON},
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()
	ctx := context.Background()

	first, err := r.Execute(ctx, sampleOptions())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if first.Stats.Placed+first.Stats.Dropped != 5 {
		t.Errorf("stats = %+v", first.Stats)
	}
	for _, f := range []string{FormatSVG, FormatPNG, FormatJSON} {
		if len(first.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !bytes.HasPrefix(first.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact is not a PNG")
	}

	second, err := r.Execute(ctx, sampleOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatJSON], second.Artifacts[FormatJSON]) {
		t.Error("cached layout differs from computed layout")
	}

	refreshed := sampleOptions()
	refreshed.Refresh = true
	third, err := r.Execute(ctx, refreshed)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("Refresh should bypass the layout cache")
	}
	if first.LayoutHash != third.LayoutHash {
		t.Error("recomputed layout should be identical")
	}
}

func TestRunnerSeedChangesKey(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	if _, err := r.Layout(ctx, sampleOptions()); err != nil {
		t.Fatal(err)
	}
	for name, change := range map[string]func(*Options){
		"seed":   func(o *Options) { o.Seed = ptr(uint64(4)) },
		"spiral": func(o *Options) { o.SpiralStep = 3 },
	} {
		other := sampleOptions()
		change(&other)
		res, err := r.Layout(ctx, other)
		if err != nil {
			t.Fatal(err)
		}
		if res.CacheInfo.LayoutHit {
			t.Errorf("a different %s must not reuse the cached layout", name)
		}
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{})
	if !errs.Is(err, errs.ErrCodeEmptyInput) {
		t.Errorf("error = %v", err)
	}
}

func TestRunnerLoadsInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.tsv")
	os.WriteFile(path, []byte("alpha\t4\nbeta\t2\n# comment\ngamma\t1\n"), 0o644)

	r := NewRunner(nil, nil, nil)
	res, err := r.Layout(context.Background(), Options{Input: path, Width: 200, Height: 100, MaxWords: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Words != 2 {
		t.Errorf("Words = %d, want 2 after MaxWords", res.Stats.Words)
	}
}
