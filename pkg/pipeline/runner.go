package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rulebook/pkg/cache"
	"github.com/matzehuels/rulebook/pkg/errors"
	rbio "github.com/matzehuels/rulebook/pkg/io"
	"github.com/matzehuels/rulebook/pkg/observability"
	"github.com/matzehuels/rulebook/pkg/render/manuscript"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use it.
//
// The Runner is stateless except for the cache and logger - it doesn't
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

// Execute builds the reference table of doc and renders every requested
// format. Any failure aborts the run and no artifacts are returned.
func (r *Runner) Execute(ctx context.Context, doc *rulebook.Document, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	result := &Result{}

	// Stage 1: References
	refsStart := time.Now()
	refs, err := rulebook.BuildRefs(doc)
	result.Stats.RefsTime = time.Since(refsStart)
	observability.Pipeline().OnRefsBuilt(ctx, len(refs), result.Stats.RefsTime, err)
	if err != nil {
		return nil, err
	}
	result.Refs = refs
	result.Stats.Entries = len(refs)

	logger.Info("built reference table",
		"entries", len(refs),
		"duration", result.Stats.RefsTime)

	docHash, err := DocumentHash(doc)
	if err != nil {
		return nil, err
	}
	result.DocumentHash = docHash

	// The template is loaded once so the cache key and the render agree.
	var templateHash string
	if opts.Wants(FormatLaTeX) {
		tmpl, err := loadTemplate(opts.Template)
		if err != nil {
			return nil, err
		}
		templateHash = cache.Hash([]byte(tmpl))
		opts.Template = manuscript.StringTemplate(tmpl)
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, hits, err := r.render(ctx, doc, refs, docHash, templateHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.Hits = hits
	result.CacheInfo.RenderHit = len(hits) == len(opts.Formats)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", len(hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) render(ctx context.Context, doc *rulebook.Document, refs rulebook.RefTable, docHash, templateHash string, opts Options) (map[string][]byte, []string, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var hits []string

	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format, templateHash))

		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, format)
				opts.Logger.Debug("cache hit", "format", format)
				artifacts[format] = data
				hits = append(hits, format)
				continue
			} else if err != nil {
				opts.Logger.Warn("cache lookup failed", "format", format, "error", err)
			}
			observability.Cache().OnCacheMiss(ctx, format)
		}

		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, format)
		data, err := Render(ctx, doc, refs, format, opts)
		observability.Pipeline().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, format, len(data))
		}
	}
	return artifacts, hits, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// DocumentHash returns the content hash of the canonical JSON form of doc.
func DocumentHash(doc *rulebook.Document) (string, error) {
	var buf bytes.Buffer
	if err := rbio.WriteJSON(doc, &buf); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash document")
	}
	return cache.Hash(buf.Bytes()), nil
}

func loadTemplate(src manuscript.TemplateSource) (string, error) {
	if src == nil {
		return "", errors.New(errors.ErrCodeTemplateLoad, "no template source")
	}
	tmpl, err := src.Load()
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeTemplateLoad, err, "load template")
		}
		return "", err
	}
	return tmpl, nil
}
