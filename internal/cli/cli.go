// Package cli implements the wordcloud command-line interface.
//
// # Commands
//
// The main commands are:
//   - layout: Place words and write a layout.json
//   - visualize: Render a layout.json to SVG, PNG, or PDF
//   - render: layout and visualize in one step
//   - inspect: Browse the placed and dropped words of a layout
//   - serve: Run the HTTP API
//   - cache: Manage the layout and artifact cache
//
// Every option can also be set in a TOML or YAML file passed with --config.
// Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes one line per dropped word.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcloud/pkg/buildinfo"
	"github.com/matzehuels/wordcloud/pkg/cache"
	"github.com/matzehuels/wordcloud/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "wordcloud"

	// Cache backends selectable with --cache.
	backendFile  = "file"
	backendNone  = "none"
	backendRedis = "redis"
	backendMongo = "mongo"

	envRedisAddr = "WORDCLOUD_REDIS_ADDR"
	envMongoURI  = "WORDCLOUD_MONGO_URI"

	defaultRedisAddr = "localhost:6379"
	defaultMongoURI  = "mongodb://localhost:27017"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// CacheBackend selects where layouts and artifacts are cached.
	CacheBackend string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:       newLogger(w, level),
		CacheBackend: backendFile,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Wordcloud lays out weighted words on a canvas",
		Long: `Wordcloud turns word frequencies into word cloud images.

Words are sized by frequency, placed along a spiral from the canvas centre
without overlapping, and rendered to SVG, PNG, PDF, or a JSON layout.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch c.CacheBackend {
			case backendFile, backendNone, backendRedis, backendMongo:
				return nil
			}
			return fmt.Errorf("invalid cache backend: %q (must be one of: file, none, redis, mongo)", c.CacheBackend)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.CacheBackend, "cache", c.CacheBackend,
		"cache backend: file, none, redis ($"+envRedisAddr+"), mongo ($"+envMongoURI+")")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend := c.CacheBackend
	if noCache {
		backend = backendNone
	}
	cc, err := c.newCache(ctx, backend)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, backend string) (cache.Cache, error) {
	switch backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		return cache.NewRedisCache(ctx, envOr(envRedisAddr, defaultRedisAddr), appName+":")
	case backendMongo:
		return cache.NewMongoCache(ctx, envOr(envMongoURI, defaultMongoURI), appName, "cache")
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/wordcloud/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
