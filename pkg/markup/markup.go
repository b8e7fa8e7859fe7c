// Package markup converts between rulebook formatted text and its source
// syntax, a small Markdown subset parsed with goldmark:
//
//	*emphasis*       emphasised span
//	**strong**       strong span
//	[label](#R12)    cross-reference to the node with identifier R12
//
// The label of a cross-reference is discarded; renderers print the
// resolved reference string in its place. Links to anything other than a
// "#id" fragment keep their label as plain text. Block structure is
// flattened: paragraphs and list items are joined with a single space.
package markup

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/matzehuels/rulebook/pkg/errors"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

var md = goldmark.New()

// Parse converts markup source into formatted text.
func Parse(src string) (rulebook.Text, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	source := []byte(src)
	root := md.Parser().Parse(text.NewReader(source))

	p := &parser{src: source}
	if err := p.block(root); err != nil {
		return nil, err
	}
	return p.out, nil
}

type parser struct {
	src       []byte
	out       rulebook.Text
	needSpace bool
}

func (p *parser) block(n ast.Node) error {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeBlock {
			if err := p.inline(c, rulebook.SpanPlain); err != nil {
				return err
			}
			continue
		}
		if len(p.out) > 0 {
			p.needSpace = true
		}
		if c.HasChildren() {
			if err := p.block(c); err != nil {
				return err
			}
			continue
		}
		// Code and HTML blocks keep their raw lines.
		lines := c.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			p.emit(rulebook.SpanPlain, strings.TrimRight(string(seg.Value(p.src)), "\n"))
		}
		if h, ok := c.(*ast.HTMLBlock); ok && h.HasClosure() {
			p.emit(rulebook.SpanPlain, strings.TrimRight(string(h.ClosureLine.Value(p.src)), "\n"))
		}
	}
	return nil
}

func (p *parser) inline(n ast.Node, kind rulebook.SpanKind) error {
	switch node := n.(type) {
	case *ast.Text:
		value := node.Value(p.src)
		if !node.IsRaw() {
			value = util.UnescapePunctuations(value)
			value = util.ResolveNumericReferences(value)
			value = util.ResolveEntityNames(value)
		}
		p.emit(kind, string(value))
		if node.SoftLineBreak() || node.HardLineBreak() {
			p.emit(kind, " ")
		}
		return nil
	case *ast.String:
		p.emit(kind, string(node.Value))
		return nil
	case *ast.Emphasis:
		inner := rulebook.SpanEmph
		if node.Level >= 2 {
			inner = rulebook.SpanStrong
		}
		return p.children(n, inner)
	case *ast.Link:
		dest := string(node.Destination)
		if !strings.HasPrefix(dest, "#") {
			return p.children(n, kind)
		}
		id := string(util.UnescapePunctuations([]byte(strings.TrimPrefix(dest, "#"))))
		if id == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cross-reference with empty identifier")
		}
		p.flushSpace(kind)
		p.out = append(p.out, rulebook.Ref(id))
		return nil
	case *ast.AutoLink:
		p.emit(kind, string(node.URL(p.src)))
		return nil
	case *ast.RawHTML:
		// Inline tags are not markup here; keep them as literal text.
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			p.emit(kind, string(seg.Value(p.src)))
		}
		return nil
	default:
		return p.children(n, kind)
	}
}

func (p *parser) children(n ast.Node, kind rulebook.SpanKind) error {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if err := p.inline(c, kind); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) flushSpace(kind rulebook.SpanKind) {
	if !p.needSpace {
		return
	}
	p.needSpace = false
	p.append(kind, " ")
}

// emit appends s, merging it into the previous span when the kinds match.
func (p *parser) emit(kind rulebook.SpanKind, s string) {
	if s == "" {
		return
	}
	p.flushSpace(kind)
	p.append(kind, s)
}

func (p *parser) append(kind rulebook.SpanKind, s string) {
	if last := len(p.out) - 1; last >= 0 && p.out[last].Kind == kind && kind != rulebook.SpanRef {
		p.out[last].Value += s
		return
	}
	p.out = append(p.out, rulebook.Span{Kind: kind, Value: s})
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	"`", "\\`",
	`<`, `\<`,
	`&`, `\&`,
	`#`, `\#`,
)

// Format converts formatted text back into markup source.
func Format(t rulebook.Text) string {
	return escapeBlockStart(format(t))
}

func format(t rulebook.Text) string {
	var b strings.Builder
	for _, span := range t {
		switch span.Kind {
		case rulebook.SpanEmph:
			writeDelimited(&b, "*", span.Value)
		case rulebook.SpanStrong:
			writeDelimited(&b, "**", span.Value)
		case rulebook.SpanRef:
			b.WriteString("[" + escaper.Replace(span.Value) + "](" + destination(span.Value) + ")")
		default:
			b.WriteString(escaper.Replace(span.Value))
		}
	}
	return b.String()
}

// writeDelimited wraps value in delim. Edge whitespace is written outside
// the delimiters, where it does not stop them from opening or closing.
func writeDelimited(b *strings.Builder, delim, value string) {
	core := strings.TrimSpace(value)
	if core == "" {
		b.WriteString(escaper.Replace(value))
		return
	}
	start := strings.Index(value, core)
	b.WriteString(value[:start])
	b.WriteString(delim + escaper.Replace(core) + delim)
	b.WriteString(value[start+len(core):])
}

// destEscaper escapes an identifier inside a <...> link destination.
var destEscaper = strings.NewReplacer(`\`, `\\`, `<`, `\<`, `>`, `\>`)

// destination returns the link destination for a reference to id. Plain
// identifiers are written bare; anything a bare destination cannot hold
// goes in angle brackets.
func destination(id string) string {
	if !strings.ContainsAny(id, " \t()<>\\") {
		return "#" + id
	}
	return "<#" + destEscaper.Replace(id) + ">"
}

// escapeBlockStart keeps a leading list or quote marker from being read
// as block structure.
func escapeBlockStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '-', '+', '>', '=':
		return `\` + s
	}
	i := 0
	for i < len(s) && i < 9 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[:i] + `\` + s[i:]
	}
	return s
}
