package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// Depth limits for [Options.Depth].
const (
	DepthHeaders  = 1
	DepthSections = 2
	DepthRules    = 3
)

// maxLabel is the longest rule text shown in a detailed label.
const maxLabel = 40

// Options configures hierarchy diagram rendering.
type Options struct {
	// Detailed adds the rule text to rule labels. When false rules show
	// only their reference.
	Detailed bool

	// CrossRefs draws a dashed edge from every rule to each node its text
	// references.
	CrossRefs bool

	// Depth stops the diagram after headers (1), sections (2) or top-level
	// rules (3). Zero draws the whole tree including sub-rules.
	Depth int
}

type diagram struct {
	buf   bytes.Buffer
	refs  rulebook.RefTable
	opts  Options
	links []string
}

// ToDOT converts a document to Graphviz DOT, one node per header, section
// and rule, named by reference. The resulting DOT string can be rendered
// with [RenderSVG]. It fails with UNRESOLVED_REFERENCE if refs does not
// cover the document.
func ToDOT(doc *rulebook.Document, refs rulebook.RefTable, opts Options) (string, error) {
	d := &diagram{refs: refs, opts: opts}
	d.buf.WriteString("digraph G {\n")
	d.buf.WriteString("  rankdir=LR;\n")
	d.buf.WriteString("  bgcolor=\"transparent\";\n")
	d.buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	d.buf.WriteString("  ranksep=0.6;\n")
	d.buf.WriteString("  nodesep=0.2;\n")
	d.buf.WriteString("\n")

	for _, h := range doc.Headers {
		if err := d.header(h); err != nil {
			return "", err
		}
	}

	if len(d.links) > 0 {
		d.buf.WriteString("\n")
		for _, l := range d.links {
			d.buf.WriteString(l)
		}
	}
	d.buf.WriteString("}\n")
	return d.buf.String(), nil
}

func (d *diagram) header(h *rulebook.Header) error {
	ref, err := d.refs.Reference(h.ID)
	if err != nil {
		return err
	}
	d.node(ref, ref+" "+h.Text, "fillcolor=\"#dbe7f5\"", "fontname=\"bold\"")
	if d.opts.Depth == DepthHeaders {
		return nil
	}
	for _, s := range h.Sections {
		sref, err := d.section(s)
		if err != nil {
			return err
		}
		d.edge(ref, sref)
	}
	return nil
}

func (d *diagram) section(s *rulebook.Section) (string, error) {
	ref, err := d.refs.Reference(s.ID)
	if err != nil {
		return "", err
	}
	d.node(ref, ref+" "+s.Text, "fillcolor=\"#eef3f9\"")
	if d.opts.Depth == DepthSections {
		return ref, nil
	}
	for _, r := range s.Rules() {
		rref, err := d.rule(r, 1)
		if err != nil {
			return "", err
		}
		d.edge(ref, rref)
	}
	return ref, nil
}

func (d *diagram) rule(r *rulebook.Rule, level int) (string, error) {
	ref, err := d.refs.Reference(r.ID)
	if err != nil {
		return "", err
	}

	var attrs []string
	if r.Section {
		attrs = append(attrs, "peripheries=2")
	}
	d.node(ref, d.ruleLabel(ref, r), attrs...)

	if d.opts.CrossRefs {
		for _, id := range r.Text.Refs() {
			target, err := d.refs.Reference(id)
			if err != nil {
				return "", err
			}
			d.links = append(d.links, fmt.Sprintf("  %q -> %q [style=dashed, color=grey, constraint=false];\n", ref, target))
		}
	}

	if d.opts.Depth == DepthRules && level == 1 {
		return ref, nil
	}
	for _, sub := range r.Rules {
		subref, err := d.rule(sub, level+1)
		if err != nil {
			return "", err
		}
		d.edge(ref, subref)
	}
	return ref, nil
}

func (d *diagram) ruleLabel(ref string, r *rulebook.Rule) string {
	if !d.opts.Detailed {
		return ref
	}
	text := r.Text.String()
	if len([]rune(text)) > maxLabel {
		text = string([]rune(text)[:maxLabel-3]) + "..."
	}
	return ref + "\n" + text
}

func (d *diagram) node(id, label string, attrs ...string) {
	all := append([]string{fmt.Sprintf("label=%q", label)}, attrs...)
	fmt.Fprintf(&d.buf, "  %q [%s];\n", id, strings.Join(all, ", "))
}

func (d *diagram) edge(from, to string) {
	fmt.Fprintf(&d.buf, "  %q -> %q;\n", from, to)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose
// viewBox starts at the origin, so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
