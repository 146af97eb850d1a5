package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordcloud/pkg/cache"
	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/core/render/sink"
	"github.com/matzehuels/wordcloud/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.Layout(ctx, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// Layout loads the input and computes (or fetches) the layout. The
// returned Result has no artifacts.
func (r *Runner) Layout(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	t, err := LoadTable(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	mask, err := LoadMask(opts)
	if err != nil {
		return nil, fmt.Errorf("load mask: %w", err)
	}
	result.TableHash = TableHash(t)
	result.Stats.Words = t.Len()
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Debug("loaded words",
		"words", t.Len(),
		"truncated", t.Truncated(),
		"mask", mask != nil,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	cacheKey := r.Keyer.LayoutKey(result.TableHash, opts.LayoutKeyOpts(MaskHash(mask)))
	layoutStart := time.Now()
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if res, err := layout.ReadJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				result.Layout = res
				result.LayoutHash = cache.Hash(data)
				result.CacheInfo.LayoutHit = true
				r.finishLayout(result, time.Since(layoutStart))
				return result, nil
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Pipeline().OnLayoutStart(ctx, t.Len())
	res, err := GenerateLayout(ctx, t, mask, opts)
	duration := time.Since(layoutStart)
	if err != nil {
		observability.Pipeline().OnLayoutComplete(ctx, 0, 0, duration, err)
		return nil, fmt.Errorf("layout: %w", err)
	}
	observability.Pipeline().OnLayoutComplete(ctx, len(res.Placed), len(res.Dropped), duration, nil)

	data, err := sink.RenderJSON(res)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	result.Layout = res
	result.LayoutHash = cache.Hash(data)
	r.finishLayout(result, duration)
	return result, nil
}

func (r *Runner) finishLayout(result *Result, d time.Duration) {
	result.Stats.LayoutTime = d
	result.Stats.Placed = len(result.Layout.Placed)
	result.Stats.Dropped = len(result.Layout.Dropped)
	r.Logger.Info("computed layout",
		"placed", result.Stats.Placed,
		"dropped", result.Stats.Dropped,
		"coverage", fmt.Sprintf("%.1f%%", result.Layout.Coverage*100),
		"cached", result.CacheInfo.LayoutHit,
		"duration", d)
}

// RenderWithCacheInfo renders artifacts with caching and reports whether
// every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *layout.Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := sink.RenderJSON(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, res, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res *layout.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
