package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/rulebook/pkg/errors"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

func sampleDocument() *rulebook.Document {
	r1 := &rulebook.Rule{
		ID:      "R1",
		Text:    rulebook.Plain("Players take turns in clockwise order around the table."),
		Section: true,
		Rules:   []*rulebook.Rule{{ID: "R1a", Text: rulebook.Plain("first")}},
	}
	r2 := &rulebook.Rule{ID: "R2", Text: rulebook.Text{{Kind: rulebook.SpanPlain, Value: "see "}, rulebook.Ref("R1a")}}
	return &rulebook.Document{Headers: []*rulebook.Header{
		{ID: "H1", Text: "Basics", Sections: []*rulebook.Section{
			{ID: "S1", Text: "Turns", Entries: []rulebook.Entry{r1, r2}},
		}},
		{ID: "H2", Text: "Appendix"},
	}}
}

func toDOT(t *testing.T, opts Options) string {
	t.Helper()
	doc := sampleDocument()
	refs, err := rulebook.BuildRefs(doc)
	if err != nil {
		t.Fatalf("BuildRefs: %v", err)
	}
	dot, err := ToDOT(doc, refs, opts)
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	return dot
}

func TestToDOT(t *testing.T) {
	dot := toDOT(t, Options{})

	for _, want := range []string{
		"digraph G {",
		`"1" [label="1 Basics"`,
		`"2" [label="2 Appendix"`,
		`"1.1" [label="1.1 Turns"`,
		`"1.1.1" [label="1.1.1", peripheries=2];`,
		`"1.1.1a" [label="1.1.1a"];`,
		`"1" -> "1.1";`,
		`"1.1" -> "1.1.1";`,
		`"1.1.1" -> "1.1.1a";`,
		`"1.1" -> "1.1.2";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "dashed") {
		t.Error("cross-reference edges drawn without CrossRefs")
	}
}

func TestToDOTDepth(t *testing.T) {
	tests := []struct {
		depth  int
		has    []string
		hasNot []string
	}{
		{DepthHeaders, []string{`"1" [`, `"2" [`}, []string{`"1.1" [`}},
		{DepthSections, []string{`"1.1" [`}, []string{`"1.1.1" [`}},
		{DepthRules, []string{`"1.1.1" [`, `"1.1.2" [`}, []string{`"1.1.1a" [`}},
		{0, []string{`"1.1.1a" [`}, nil},
	}

	for _, tt := range tests {
		dot := toDOT(t, Options{Depth: tt.depth})
		for _, s := range tt.has {
			if !strings.Contains(dot, s) {
				t.Errorf("depth %d: missing %q", tt.depth, s)
			}
		}
		for _, s := range tt.hasNot {
			if strings.Contains(dot, s) {
				t.Errorf("depth %d: unexpected %q", tt.depth, s)
			}
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := toDOT(t, Options{Detailed: true})
	if !strings.Contains(dot, `label="1.1.1\nPlayers take turns in clockwise order..."`) {
		t.Errorf("detailed label not truncated as expected:\n%s", dot)
	}
	if !strings.Contains(dot, `label="1.1.2\nsee [R1a]"`) {
		t.Errorf("detailed label missing rule text:\n%s", dot)
	}
}

func TestToDOTCrossRefs(t *testing.T) {
	dot := toDOT(t, Options{CrossRefs: true})
	if !strings.Contains(dot, `"1.1.2" -> "1.1.1a" [style=dashed`) {
		t.Errorf("missing cross-reference edge:\n%s", dot)
	}
}

func TestToDOTUnresolved(t *testing.T) {
	doc := sampleDocument()
	refs, err := rulebook.BuildRefs(doc)
	if err != nil {
		t.Fatalf("BuildRefs: %v", err)
	}
	doc.Headers[0].Sections[0].Entries[1].(*rulebook.Rule).Text = rulebook.Text{rulebook.Ref("nowhere")}

	if _, err := ToDOT(doc, refs, Options{CrossRefs: true}); !errors.Is(err, errors.ErrCodeUnresolvedReference) {
		t.Errorf("err = %v, want %v", err, errors.ErrCodeUnresolvedReference)
	}
	if _, err := ToDOT(doc, refs, Options{}); err != nil {
		t.Errorf("text references are ignored without CrossRefs: %v", err)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), toDOT(t, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("unexpected SVG root: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.25 200.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.25 200.00" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if out := normalizeViewBox([]byte("<svg></svg>")); string(out) != "<svg></svg>" {
		t.Errorf("svg without viewBox changed: %s", out)
	}
}
