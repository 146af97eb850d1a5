// Package pipeline provides the load → layout → render pipeline for word
// clouds.
//
// The CLI and the HTTP API both go through this package, so defaults,
// validation, caching, and rendering behave the same at every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read word frequencies (and an optional mask image)
//  2. Layout: place words with [layout.Build]
//  3. Render: produce artifacts in the requested formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "words.tsv",
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Options can also come from a TOML or YAML file, see [LoadConfig].
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordcloud/pkg/cache"
	"github.com/matzehuels/wordcloud/pkg/core/freq"
	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/core/occupancy"
	"github.com/matzehuels/wordcloud/pkg/core/render/color"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
	"github.com/matzehuels/wordcloud/pkg/fonts"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultTimeout bounds a single layout run.
	DefaultTimeout = 2 * time.Minute

	// DefaultMaskThreshold is the gray level at or below which a mask
	// pixel counts as black. JPEG masks are rarely pure black.
	DefaultMaskThreshold = 32
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It is decoded from
// JSON (API requests), TOML, and YAML (config files). Pointer fields
// distinguish "unset" from a meaningful zero.
type Options struct {
	// Input options
	Input     string       `json:"-" toml:"input" yaml:"input"`
	Words     []freq.Entry `json:"words,omitempty" toml:"-" yaml:"-"`
	MaxWords  int          `json:"max_words,omitempty" toml:"max_words" yaml:"max_words"`
	MinLength int          `json:"min_length,omitempty" toml:"min_length" yaml:"min_length"`
	Exclude   []string     `json:"exclude,omitempty" toml:"exclude" yaml:"exclude"`
	FoldCase  bool         `json:"fold_case,omitempty" toml:"fold_case" yaml:"fold_case"`

	// Layout options
	Width           int       `json:"width,omitempty" toml:"width" yaml:"width"`
	Height          int       `json:"height,omitempty" toml:"height" yaml:"height"`
	Seed            *uint64   `json:"seed,omitempty" toml:"seed" yaml:"seed"`
	MinSize         float64   `json:"min_size,omitempty" toml:"min_size" yaml:"min_size"`
	MaxSize         float64   `json:"max_size,omitempty" toml:"max_size" yaml:"max_size"`
	Scaling         *float64  `json:"scaling,omitempty" toml:"scaling" yaml:"scaling"`
	RelativeScaling float64   `json:"relative_scaling,omitempty" toml:"relative_scaling" yaml:"relative_scaling"`
	Rotations       []float64 `json:"rotations,omitempty" toml:"rotations" yaml:"rotations"`
	RotateChance    *float64  `json:"rotate_chance,omitempty" toml:"rotate_chance" yaml:"rotate_chance"`
	RotationRange   []float64 `json:"rotation_range,omitempty" toml:"rotation_range" yaml:"rotation_range"`
	NoRotationRetry bool      `json:"no_rotation_retry,omitempty" toml:"no_rotation_retry" yaml:"no_rotation_retry"`
	Margin          *int      `json:"margin,omitempty" toml:"margin" yaml:"margin"`
	FontStep        *float64  `json:"font_step,omitempty" toml:"font_step" yaml:"font_step"`
	Jitter          int       `json:"jitter,omitempty" toml:"jitter" yaml:"jitter"`
	SpiralSpacing   float64   `json:"spiral_spacing,omitempty" toml:"spiral_spacing" yaml:"spiral_spacing"`
	SpiralStep      float64   `json:"spiral_step,omitempty" toml:"spiral_step" yaml:"spiral_step"`
	MaxRadius       float64   `json:"max_radius,omitempty" toml:"max_radius" yaml:"max_radius"`
	Font            string    `json:"font,omitempty" toml:"font" yaml:"font"`
	FontEngine      string    `json:"font_engine,omitempty" toml:"font_engine" yaml:"font_engine"`
	MaskPath        string    `json:"-" toml:"mask" yaml:"mask"`
	MaskMode        string    `json:"mask_mode,omitempty" toml:"mask_mode" yaml:"mask_mode"`
	MaskThreshold   *int      `json:"mask_threshold,omitempty" toml:"mask_threshold" yaml:"mask_threshold"`
	MaskCentroid    bool      `json:"mask_centroid,omitempty" toml:"mask_centroid" yaml:"mask_centroid"`
	Timeout         Duration  `json:"timeout,omitempty" toml:"timeout" yaml:"timeout"`
	Refresh         bool      `json:"refresh,omitempty" toml:"-" yaml:"-"`

	// Render options
	Formats    []string `json:"formats,omitempty" toml:"formats" yaml:"formats"`
	Colors     string   `json:"colors,omitempty" toml:"colors" yaml:"colors"`
	Background string   `json:"background,omitempty" toml:"background" yaml:"background"`
	Scale      float64  `json:"scale,omitempty" toml:"scale" yaml:"scale"`
	EmbedFont  bool     `json:"embed_font,omitempty" toml:"embed_font" yaml:"embed_font"`

	// Runtime options (not serialized)
	Logger *log.Logger        `json:"-" toml:"-" yaml:"-"`
	Mask   *occupancy.Mask    `json:"-" toml:"-" yaml:"-"`
	Table  *freq.Table        `json:"-" toml:"-" yaml:"-"`
	Events func(layout.Event) `json:"-" toml:"-" yaml:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the placement result.
	Layout *layout.Result

	// TableHash is the content hash of the frequency table.
	TableHash string

	// LayoutHash is the content hash of the encoded layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Words      int
	Placed     int
	Dropped    int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFontEngine checks a font engine name.
func ValidateFontEngine(engine string) error {
	switch fonts.Engine(engine) {
	case "", fonts.EngineOpenType, fonts.EngineFreeType:
		return nil
	}
	return errs.New(errs.ErrCodeInvalidConfig, "invalid font_engine: %q (must be one of: opentype, freetype)", engine)
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation. The
// canvas is left unset when a mask is given so the mask's own size is used.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 && o.Height == 0 && o.MaskPath == "" && o.Mask == nil {
		o.Width = layout.DefaultWidth
		o.Height = layout.DefaultHeight
	}
	if o.Seed == nil {
		seed := DefaultSeed
		o.Seed = &seed
	}
	if o.Font == "" {
		o.Font = fonts.DefaultFont
	}
	if o.FontEngine == "" {
		o.FontEngine = string(fonts.EngineOpenType)
	}
	if o.MaskMode == "" {
		o.MaskMode = occupancy.MaskAllow.String()
	}
	if o.Timeout == 0 {
		o.Timeout = Duration(DefaultTimeout)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets defaults and validates layout options.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if len(o.Words) == 0 && o.Input == "" && o.Table == nil {
		return errs.New(errs.ErrCodeEmptyInput, "no words given")
	}
	if o.Width != 0 || o.Height != 0 {
		if err := errs.ValidateCanvas(o.Width, o.Height); err != nil {
			return err
		}
	}
	if _, err := occupancy.ParseMaskMode(o.MaskMode); err != nil {
		return err
	}
	if err := ValidateFontEngine(o.FontEngine); err != nil {
		return err
	}
	if o.RotateChance != nil && (*o.RotateChance < 0 || *o.RotateChance > 1) {
		return errs.New(errs.ErrCodeInvalidConfig, "rotate_chance %v out of [0, 1]", *o.RotateChance)
	}
	if len(o.RotationRange) != 0 && len(o.RotationRange) != 2 {
		return errs.New(errs.ErrCodeInvalidConfig, "rotation_range needs exactly two values, got %d", len(o.RotationRange))
	}
	if o.Timeout < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "timeout %v must not be negative", o.Timeout)
	}
	if o.Scaling != nil && *o.Scaling < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "scaling %v must not be negative", *o.Scaling)
	}
	if o.MinSize < 0 || o.MaxSize < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "font sizes must not be negative")
	}
	if o.MaxSize > 0 && o.MinSize > o.MaxSize {
		return errs.New(errs.ErrCodeInvalidConfig, "min_size %v exceeds max_size %v", o.MinSize, o.MaxSize)
	}
	if o.SpiralSpacing < 0 || o.SpiralStep < 0 || o.MaxRadius < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "spiral settings must not be negative")
	}
	if o.Margin != nil && *o.Margin < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "margin must not be negative")
	}
	if o.MaskThreshold != nil && (*o.MaskThreshold < 0 || *o.MaskThreshold > 255) {
		return errs.New(errs.ErrCodeInvalidConfig, "mask_threshold %d out of [0, 255]", *o.MaskThreshold)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Colors == "" {
		o.Colors = color.SchemeRandom
	}
	if o.Background == "" {
		o.Background = "black"
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Font == "" {
		o.Font = fonts.DefaultFont
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets defaults and validates render options.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if _, err := color.FromName(o.Colors); err != nil {
		return err
	}
	if _, err := color.Parse(o.Background); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > 8 {
		return errs.New(errs.ErrCodeInvalidConfig, "scale %v out of (0, 8]", o.Scale)
	}
	return ValidateFontEngine(o.FontEngine)
}

// ValidateAndSetDefaults validates the options for the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(maskHash string) cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Width:         o.Width,
		Height:        o.Height,
		MinSize:       o.MinSize,
		MaxSize:       o.MaxSize,
		Exponent:      -1,
		Relative:      o.RelativeScaling,
		Rotations:     o.Rotations,
		RotateChance:  -1,
		Margin:        -1,
		FontStep:      -1,
		Font:          o.Font,
		FontEngine:    o.FontEngine,
		MaskHash:      maskHash,
		MaskMode:      o.MaskMode,
		MaskCentroid:  o.MaskCentroid,
		Jitter:        float64(o.Jitter),
		SpiralSpacing: o.SpiralSpacing,
		SpiralStep:    o.SpiralStep,
		MaxRadius:     o.MaxRadius,
		RotationRetry: !o.NoRotationRetry,
	}
	if len(o.RotationRange) == 2 {
		k.RotationRange = [2]float64{o.RotationRange[0], o.RotationRange[1]}
	}
	if o.Seed != nil {
		k.Seed = *o.Seed
	}
	if o.Scaling != nil {
		k.Exponent = *o.Scaling
	}
	if o.RotateChance != nil {
		k.RotateChance = *o.RotateChance
	}
	if o.Margin != nil {
		k.Margin = *o.Margin
	}
	if o.FontStep != nil {
		k.FontStep = *o.FontStep
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Colors:     o.Colors,
		Background: o.Background,
		Scale:      o.Scale,
		EmbedFont:  o.EmbedFont,
		Font:       o.Font,
		FontEngine: o.FontEngine,
	}
}

// Duration is a time.Duration that decodes from "30s"-style strings in
// JSON, TOML, and YAML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid duration %q", b)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the duration in Go syntax.
func (d Duration) String() string { return time.Duration(d).String() }
