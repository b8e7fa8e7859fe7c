package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/rulebook/pkg/errors"
	"github.com/matzehuels/rulebook/pkg/render/manuscript"
	"github.com/matzehuels/rulebook/pkg/render/nodelink"
	"github.com/matzehuels/rulebook/pkg/render/outline"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// Render produces a single artifact. refs must have been built for doc.
func Render(ctx context.Context, doc *rulebook.Document, refs rulebook.RefTable, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatHTML:
		out, err := outline.Render(doc, refs)
		return []byte(out), err
	case FormatLaTeX:
		out, err := manuscript.Render(doc, refs, opts.Template)
		return []byte(out), err
	case FormatDOT:
		dot, err := nodelink.ToDOT(doc, refs, opts.Diagram)
		return []byte(dot), err
	case FormatSVG:
		dot, err := nodelink.ToDOT(doc, refs, opts.Diagram)
		if err != nil {
			return nil, err
		}
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return svg, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}
