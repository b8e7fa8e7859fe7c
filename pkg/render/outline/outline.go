package outline

import (
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// CSS classes of the anchored list items.
const (
	ClassHeader  = "Header"
	ClassSection = "Section"
	ClassRule    = "Rule"
	ClassSubRule = "SubRule"
)

// Render returns the HTML outline of doc.
func Render(doc *rulebook.Document, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeDocument(&b, doc, refs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Text renders formatted text as HTML. Plain spans are escaped; references
// become links to the target's anchor.
func Text(t rulebook.Text, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeText(&b, t, refs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Rule renders a rule and its examples and sub-rules.
func Rule(r *rulebook.Rule, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeRule(&b, r, refs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Section renders a section heading, its snippet and its rules.
func Section(s *rulebook.Section, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeSection(&b, s, refs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Header renders a header and its sections.
func Header(h *rulebook.Header, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeHeader(&b, h, refs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Example renders an example paragraph.
func Example(e *rulebook.Example, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeExample(&b, e, refs); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeDocument(b *strings.Builder, doc *rulebook.Document, refs rulebook.RefTable) error {
	b.WriteString("<ol>")
	for _, h := range doc.Headers {
		if err := openItem(b, ClassHeader, h.ID, refs); err != nil {
			return err
		}
		if err := writeHeader(b, h, refs); err != nil {
			return err
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ol>")
	return nil
}

func writeHeader(b *strings.Builder, h *rulebook.Header, refs rulebook.RefTable) error {
	fmt.Fprintf(b, "<h1>%s</h1><ol>", h.Text)
	for _, s := range h.Sections {
		if err := openItem(b, ClassSection, s.ID, refs); err != nil {
			return err
		}
		if err := writeSection(b, s, refs); err != nil {
			return err
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ol>")
	return nil
}

func writeSection(b *strings.Builder, s *rulebook.Section, refs rulebook.RefTable) error {
	fmt.Fprintf(b, "<h2>%s</h2>", s.Text)
	if !s.Snippet.IsEmpty() {
		b.WriteString("<p>")
		if err := writeText(b, s.Snippet, refs); err != nil {
			return err
		}
		b.WriteString("</p>")
	}
	// A paragraph may not sit directly inside a list, so the rule list is
	// closed around section-level examples and reopened after them.
	open, opened := false, false
	for _, entry := range s.Entries {
		switch e := entry.(type) {
		case *rulebook.Rule:
			if !open {
				b.WriteString("<ol>")
				open, opened = true, true
			}
			if err := openItem(b, ClassRule, e.ID, refs); err != nil {
				return err
			}
			if err := writeRule(b, e, refs); err != nil {
				return err
			}
			b.WriteString("</li>")
		case *rulebook.Example:
			if open {
				b.WriteString("</ol>")
				open = false
			}
			if err := writeExample(b, e, refs); err != nil {
				return err
			}
		}
	}
	switch {
	case open:
		b.WriteString("</ol>")
	case !opened:
		b.WriteString("<ol></ol>")
	}
	return nil
}

func writeRule(b *strings.Builder, r *rulebook.Rule, refs rulebook.RefTable) error {
	if err := writeText(b, r.Text, refs); err != nil {
		return err
	}
	for _, e := range r.Examples {
		if err := writeExample(b, e, refs); err != nil {
			return err
		}
	}
	if len(r.Rules) == 0 {
		return nil
	}
	b.WriteString("<ol>")
	for _, sub := range r.Rules {
		if err := openItem(b, ClassSubRule, sub.ID, refs); err != nil {
			return err
		}
		if err := writeRule(b, sub, refs); err != nil {
			return err
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ol>")
	return nil
}

func writeExample(b *strings.Builder, e *rulebook.Example, refs rulebook.RefTable) error {
	b.WriteString("<p>")
	if err := writeText(b, e.Text, refs); err != nil {
		return err
	}
	b.WriteString("</p>")
	return nil
}

func writeText(b *strings.Builder, t rulebook.Text, refs rulebook.RefTable) error {
	for _, span := range t {
		switch span.Kind {
		case rulebook.SpanEmph:
			b.WriteString("<em>" + html.EscapeString(span.Value) + "</em>")
		case rulebook.SpanStrong:
			b.WriteString("<strong>" + html.EscapeString(span.Value) + "</strong>")
		case rulebook.SpanRef:
			ref, err := refs.Reference(span.Value)
			if err != nil {
				return err
			}
			fmt.Fprintf(b, `<a href="#%s">%s</a>`, ref, ref)
		default:
			b.WriteString(html.EscapeString(span.Value))
		}
	}
	return nil
}

// openItem writes the opening tag of an anchored list item.
func openItem(b *strings.Builder, class, id string, refs rulebook.RefTable) error {
	ref, err := refs.Reference(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, `<li class="%s" id="%s">`, class, ref)
	return nil
}
