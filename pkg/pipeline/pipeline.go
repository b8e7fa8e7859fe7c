// Package pipeline provides the render pipeline shared by the CLI and the
// preview server.
//
// One pipeline run takes a parsed document through two stages:
//
//  1. References: build the reference table once per document
//  2. Render: produce every requested format from the same table
//
// Rendered artifacts are cached, keyed by a hash of the canonical document
// JSON, the format, the template hash (LaTeX) and the diagram options (DOT,
// SVG), so an unchanged document is served from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats:  []string{pipeline.FormatHTML, pipeline.FormatLaTeX},
//	    Template: manuscript.FileTemplate("template.tex"),
//	})
//	if err != nil {
//	    return err
//	}
//	html := result.Artifacts[pipeline.FormatHTML]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rulebook/pkg/cache"
	"github.com/matzehuels/rulebook/pkg/errors"
	"github.com/matzehuels/rulebook/pkg/render/manuscript"
	"github.com/matzehuels/rulebook/pkg/render/nodelink"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// Format constants for output formats.
const (
	FormatHTML  = "html"
	FormatLaTeX = "latex"
	FormatDOT   = "dot"
	FormatSVG   = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML:  true,
	FormatLaTeX: true,
	FormatDOT:   true,
	FormatSVG:   true,
}

// DefaultFormats are rendered when Options.Formats is empty.
var DefaultFormats = []string{FormatHTML, FormatLaTeX}

// Extensions maps each format to the file extension of its output.
var Extensions = map[string]string{
	FormatHTML:  ".html",
	FormatLaTeX: ".tex",
	FormatDOT:   ".dot",
	FormatSVG:   ".svg",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Formats lists the artifacts to produce. Order is preserved in logs.
	Formats []string `json:"formats,omitempty"`

	// Diagram configures the dot and svg formats.
	Diagram nodelink.Options `json:"diagram"`

	// Refresh skips cache lookups. Fresh artifacts are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Template supplies the LaTeX template. Defaults to the embedded one.
	Template manuscript.TemplateSource `json:"-"`

	// Logger receives stage logs. Defaults to the runner's logger.
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Refs is the reference table the artifacts were rendered with.
	Refs rulebook.RefTable

	// DocumentHash is the content hash of the canonical document JSON.
	DocumentHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Entries    int
	RefsTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for the render stage.
type CacheInfo struct {
	Hits      []string // Formats served from the cache
	RenderHit bool     // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: html, latex, dot, svg)", format)
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

// ParseFormats splits a comma-separated format list, trimming blanks.
// An empty string yields DefaultFormats.
func ParseFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return append([]string(nil), DefaultFormats...)
	}
	return formats
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Diagram.Depth < 0 || o.Diagram.Depth > nodelink.DepthRules {
		return errors.New(errors.ErrCodeInvalidInput, "diagram depth must be between 0 and %d", nodelink.DepthRules)
	}
	if o.Template == nil {
		o.Template = manuscript.DefaultTemplate()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Wants reports whether format is among the requested formats.
func (o *Options) Wants(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ArtifactKeyOpts returns cache key options for one format. templateHash
// is only recorded for LaTeX, diagram options only for DOT and SVG.
func (o *Options) ArtifactKeyOpts(format, templateHash string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatLaTeX:
		opts.TemplateHash = templateHash
	case FormatDOT, FormatSVG:
		opts.Depth = o.Diagram.Depth
		opts.Detailed = o.Diagram.Detailed
		opts.CrossRefs = o.Diagram.CrossRefs
	}
	return opts
}
