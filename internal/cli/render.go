package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rulebook/pkg/errors"
	rbio "github.com/matzehuels/rulebook/pkg/io"
	"github.com/matzehuels/rulebook/pkg/pipeline"
	"github.com/matzehuels/rulebook/pkg/render/manuscript"
)

// stdoutPath selects standard output for a single-format render.
const stdoutPath = "-"

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string   // base path, or "-" for stdout
	formats  []string // parsed --format value
	template string   // LaTeX template path overriding the config
	refresh  bool     // bypass cache lookups
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	var formatsStr string

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a rulebook to HTML, LaTeX, DOT or SVG",
		Long: `Render a rulebook source (.json or .toml) to every requested format.

Outputs are written next to the input (rules.json -> rules.html, rules.tex)
unless --output names a different base path. Use --output - with a single
format to write to stdout.`,
		Example: `  rulebook render rules.json
  rulebook render rules.toml -f html,svg -o site/rules
  rulebook render rules.json -f latex --template book.tex -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = c.Config.Formats
			if formatsStr != "" {
				opts.formats = pipeline.ParseFormats(formatsStr)
			}
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output == "" {
				opts.output = c.Config.Output
			}
			if opts.template != "" {
				c.Config.Template = opts.template
			}
			if opts.output == stdoutPath && len(opts.formats) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--output - needs exactly one format, got %d", len(opts.formats))
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path, or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html, latex, dot, svg (comma-separated)")
	cmd.Flags().StringVar(&opts.template, "template", "", "LaTeX template file")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := rbio.ImportDocument(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %s: %d headers", input, len(doc.Headers))

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	toStdout := opts.output == stdoutPath

	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", filepath.Base(input)))
		spinner.Start()
	}
	result, err := runner.Execute(ctx, doc, c.pipelineOptions(opts.formats, opts.refresh))
	if spinner != nil {
		if err != nil && !spinner.Cancelled() {
			spinner.StopWithError("Render failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}

	if toStdout {
		_, err := os.Stdout.Write(result.Artifacts[opts.formats[0]])
		return err
	}

	base := basePath(opts.output, input)
	paths, size, err := writeArtifacts(base, result.Artifacts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(paths)))

	printSuccess("Rendered %s", filepath.Base(input))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Entries, size, result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each artifact to base plus its format extension and
// returns the written paths in sorted order with the total byte count.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, int, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	var paths []string
	size := 0
	for _, f := range formats {
		path := base + pipeline.Extensions[f]
		if err := writeFile(path, artifacts[f]); err != nil {
			return nil, 0, err
		}
		paths = append(paths, path)
		size += len(artifacts[f])
	}
	return paths, size, nil
}

// openOutput opens path for writing, or returns stdout for "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdoutPath {
		return nopCloser{os.Stdout}, nil
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// basePath derives the output base from the output flag and the input path.
// An empty output strips the input's extension; an output ending in a known
// format extension has that extension stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for _, known := range pipeline.Extensions {
		if ext == known {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// templateFor returns the template source for an explicit path or the
// embedded default.
func templateFor(path string) manuscript.TemplateSource {
	if path == "" {
		return manuscript.DefaultTemplate()
	}
	return manuscript.FileTemplate(path)
}
