// Package pkg provides the core libraries for Wordcloud word cloud layout.
//
// # Overview
//
// Wordcloud turns a table of word frequencies into a word cloud: each word
// gets a font size from its frequency, is rasterized into a glyph mask, and
// is placed along a spiral from the canvas centre so that no two words
// overlap. The pkg directory is organized into these areas:
//
//  1. [core] - Domain logic (frequency tables, sizing, glyphs, occupancy, layout, rendering)
//  2. [fonts] - Font loading and glyph rasterization
//  3. [io] - Reading frequencies and masks, writing artifacts
//  4. [pipeline] - Orchestration (input → layout → render) with caching
//  5. [cache] - File, Redis and MongoDB caches for layouts and artifacts
//
// # Architecture
//
// The typical data flow through Wordcloud:
//
//	Frequency file / map
//	         ↓
//	    [core/freq] package (normalize and rank words)
//	         ↓
//	    [core/sizing] package (frequency → font size)
//	         ↓
//	    [core/layout] package (rasterize + spiral search on [core/occupancy])
//	         ↓
//	    [core/render/sink] package (SVG/PNG/PDF/JSON)
//
// # Quick Start
//
// Lay out a handful of words and render them to SVG:
//
//	import (
//	    "github.com/matzehuels/wordcloud/pkg/core/freq"
//	    "github.com/matzehuels/wordcloud/pkg/core/layout"
//	    "github.com/matzehuels/wordcloud/pkg/core/render/sink"
//	    "github.com/matzehuels/wordcloud/pkg/fonts"
//	)
//
//	// 1. Build the frequency table
//	t, _ := freq.FromMap(map[string]int{"cloud": 10, "sky": 5, "rain": 1})
//
//	// 2. Load a font
//	f, _ := fonts.Load(fonts.Bold, fonts.EngineOpenType)
//
//	// 3. Compute layout
//	res, _ := layout.Build(t, fonts.NewRasterizer(f), layout.WithCanvas(800, 400))
//
//	// 4. Render to SVG
//	svg := sink.RenderSVG(res, sink.WithFont(f))
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/freq] - Frequency tables. Entries are merged, filtered, ranked by
// descending count with ties kept in input order, and optionally truncated.
//
// [core/sizing] - Maps frequencies to font sizes between a minimum and a
// maximum, with an exponent and an optional relative scaling against the
// previous word.
//
// [core/glyph] - Binary glyph masks with rotation, dilation and trimming.
//
// [core/occupancy] - The occupancy grid. A pyramid of coarser layers answers
// "is this box free" without scanning every pixel.
//
// [core/layout] - The placement engine: for each word, largest first, walk
// an Archimedean spiral until the glyph fits, shrinking the font when it
// does not.
//
// [core/render] - Colouring and the output sinks (SVG, PNG, PDF, JSON).
//
// ## Infrastructure
//
// [pipeline] - Complete pipeline (input → layout → render) used by the CLI
// and the HTTP server. Ensures consistent behavior across both entry points.
//
// [cache] - Content-addressed caching of layouts and artifacts. FileCache
// for the CLI, RedisCache and MongoCache for shared deployments.
//
// [errors] - Structured errors with machine-readable codes.
//
// [observability] - Hooks for tracing layouts, renders and HTTP requests.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/layout/...        # Specific package
//	go test -run Example                 # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/core
// [core/freq]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/core/freq
// [core/sizing]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/core/sizing
// [core/glyph]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/core/glyph
// [core/occupancy]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/core/occupancy
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/core/layout
// [core/render]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/core/render
// [core/render/sink]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/core/render/sink
// [fonts]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/fonts
// [io]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/wordcloud/pkg/observability
package pkg
