package manuscript

import (
	"fmt"
	"strings"

	"github.com/matzehuels/rulebook/pkg/errors"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// maxOutlineLevel is the deepest level the outlines package provides.
const maxOutlineLevel = 4

var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape escapes the LaTeX special characters in s.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Render fills the template from src with the manuscript of doc.
// The changelog placeholder is replaced with an empty string.
func Render(doc *rulebook.Document, refs rulebook.RefTable, src TemplateSource) (string, error) {
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

	body, err := Body(doc, refs)
	if err != nil {
		return "", err
	}

	out := strings.Replace(tmpl, ChangelogPlaceholder, "", 1)
	out = strings.Replace(out, DocumentPlaceholder, body, 1)
	return out, nil
}

// Body returns the LaTeX of every header of doc, without a template.
func Body(doc *rulebook.Document, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	for _, h := range doc.Headers {
		if err := writeHeader(&b, h, refs); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// Text renders formatted text as LaTeX. Plain spans are escaped;
// references become hyperlinks to the target's label.
func Text(t rulebook.Text, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeText(&b, t, refs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Section renders a section and its outline of rules.
func Section(s *rulebook.Section, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeSection(&b, s, refs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Rule renders the body of a top-level rule: its text, examples and
// sub-rules. The \1 marker is written by the enclosing section.
func Rule(r *rulebook.Rule, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeRule(&b, r, refs, 1); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Example renders an example as a level-0 outline entry.
func Example(e *rulebook.Example, refs rulebook.RefTable) (string, error) {
	var b strings.Builder
	if err := writeExample(&b, e, refs); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeHeader(b *strings.Builder, h *rulebook.Header, refs rulebook.RefTable) error {
	fmt.Fprintf(b, "\\section{%s}\n", h.Text)
	for _, s := range h.Sections {
		if err := writeSection(b, s, refs); err != nil {
			return err
		}
	}
	return nil
}

func writeSection(b *strings.Builder, s *rulebook.Section, refs rulebook.RefTable) error {
	if _, err := refs.Resolve(s.ID); err != nil {
		return err
	}
	fmt.Fprintf(b, "\\subsection{%s}\n", s.Text)
	fmt.Fprintf(b, "\\label{%s}\n", s.ID)
	if !s.Snippet.IsEmpty() {
		if err := writeText(b, s.Snippet, refs); err != nil {
			return err
		}
		b.WriteString("\n")
	}
	b.WriteString("\\begin{outline}[enumerate]\n")
	for _, entry := range s.Entries {
		switch e := entry.(type) {
		case *rulebook.Rule:
			if e.Section {
				if err := writeRuleSection(b, e, refs); err != nil {
					return err
				}
			}
			b.WriteString("\\1 ")
			if err := writeRule(b, e, refs, 1); err != nil {
				return err
			}
			b.WriteString("\n")
		case *rulebook.Example:
			if err := writeExample(b, e, refs); err != nil {
				return err
			}
		}
	}
	b.WriteString("\\end{outline}\n")
	return nil
}

// writeRuleSection numbers a section-flagged rule as a subsubsection and
// lists it in the table of contents.
func writeRuleSection(b *strings.Builder, r *rulebook.Rule, refs rulebook.RefTable) error {
	b.WriteString("\\addtocounter{subsubsection}{1}\n")
	b.WriteString("\\addcontentsline{toc}{subsubsection}{\\arabic{section}.\\arabic{subsection}.\\arabic{subsubsection}~~ ")
	if err := writeText(b, r.Text, refs); err != nil {
		return err
	}
	b.WriteString("}\n")
	fmt.Fprintf(b, "\\refstepcounter{rule_section}\\label{%s}", r.ID)
	return nil
}

// writeRule writes a rule at outline level. Sub-rules are written one
// level deeper.
func writeRule(b *strings.Builder, r *rulebook.Rule, refs rulebook.RefTable, level int) error {
	if err := writeText(b, r.Text, refs); err != nil {
		return err
	}
	b.WriteString("\n")
	for _, e := range r.Examples {
		if err := writeExample(b, e, refs); err != nil {
			return err
		}
	}
	sub := min(level+1, maxOutlineLevel)
	for _, child := range r.Rules {
		fmt.Fprintf(b, "\\%d ", sub)
		if err := writeRule(b, child, refs, sub); err != nil {
			return err
		}
	}
	return nil
}

func writeExample(b *strings.Builder, e *rulebook.Example, refs rulebook.RefTable) error {
	b.WriteString("\\0 \\begin{adjustwidth}{37pt}{0pt} ")
	if err := writeText(b, e.Text, refs); err != nil {
		return err
	}
	b.WriteString(" \\end{adjustwidth}\n")
	return nil
}

func writeText(b *strings.Builder, t rulebook.Text, refs rulebook.RefTable) error {
	for _, span := range t {
		switch span.Kind {
		case rulebook.SpanEmph:
			b.WriteString("\\emph{" + Escape(span.Value) + "}")
		case rulebook.SpanStrong:
			b.WriteString("\\textbf{" + Escape(span.Value) + "}")
		case rulebook.SpanRef:
			info, err := refs.Resolve(span.Value)
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "\\hyperref[%s]{%s}", info.ID, info.Reference)
		default:
			b.WriteString(Escape(span.Value))
		}
	}
	return nil
}
