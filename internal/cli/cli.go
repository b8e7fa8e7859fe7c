// Package cli implements the rulebook command-line interface.
//
// # Commands
//
//   - render: Render a rulebook source to HTML, LaTeX, DOT or SVG
//   - refs: Print the reference table of a rulebook
//   - diagram: Draw the document hierarchy with Graphviz
//   - serve: Live preview server re-rendering the source per request
//   - cache: Manage the artifact cache
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rulebook/internal/config"
	"github.com/matzehuels/rulebook/pkg/cache"
	"github.com/matzehuels/rulebook/pkg/pipeline"
	"github.com/matzehuels/rulebook/pkg/render/manuscript"
)

// appName is the application name used for directories and display.
const appName = "rulebook"

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

	// Config is loaded by the root command before any subcommand runs.
	Config *config.Config

	configPath string
	envFile    string
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	return pipeline.NewRunner(store, keyer, loggerFromContext(ctx)), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache || c.Config.Cache.Disable {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.RedisURL != "" {
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
	}
	dir, err := c.cacheDir()
	if err != nil {
		loggerFromContext(ctx).Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// templateSource returns the configured LaTeX template.
func (c *CLI) templateSource() manuscript.TemplateSource {
	return templateFor(c.Config.Template)
}

// pipelineOptions builds run options for formats from the loaded config.
func (c *CLI) pipelineOptions(formats []string, refresh bool) pipeline.Options {
	return pipeline.Options{
		Formats:  formats,
		Diagram:  c.Config.DiagramOptions(),
		Refresh:  refresh,
		Template: c.templateSource(),
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard location (~/.cache/rulebook/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return defaultCacheDir()
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
