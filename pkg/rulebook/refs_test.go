package rulebook

import (
	"fmt"
	"sort"
	"testing"

	"github.com/matzehuels/rulebook/pkg/errors"
)

func rule(id string, subs ...*Rule) *Rule {
	return &Rule{ID: id, Text: Plain("text of " + id), Rules: subs}
}

func section(id string, entries ...Entry) *Section {
	return &Section{ID: id, Text: "Section " + id, Entries: entries}
}

func header(id string, sections ...*Section) *Header {
	return &Header{ID: id, Text: "Header " + id, Sections: sections}
}

func sampleDocument() *Document {
	return &Document{Headers: []*Header{
		header("H1",
			section("S1", rule("R1"), rule("R2", rule("R2a"), rule("R2b"), rule("R2c"))),
			section("S2", &Example{ID: "E1", Text: Plain("for example")}, rule("R3", rule("R3a", rule("R3a1")))),
		),
		header("H2", section("S3", rule("R4"))),
		header("H3"),
	}}
}

func TestBuildRefsNumbering(t *testing.T) {
	refs, err := BuildRefs(sampleDocument())
	if err != nil {
		t.Fatalf("BuildRefs: %v", err)
	}

	tests := []struct {
		id   string
		ref  string
		kind RefKind
	}{
		{"H1", "1", KindHeader},
		{"H2", "2", KindHeader},
		{"H3", "3", KindHeader},
		{"S1", "1.1", KindSection},
		{"S2", "1.2", KindSection},
		{"S3", "2.1", KindSection},
		{"R1", "1.1.1", KindRule},
		{"R2", "1.1.2", KindRule},
		{"R2a", "1.1.2a", KindRule},
		{"R2b", "1.1.2b", KindRule},
		{"R2c", "1.1.2c", KindRule},
		{"R3", "1.2.1", KindRule},
		{"R3a", "1.2.1a", KindRule},
		{"R3a1", "1.2.1aa", KindRule},
		{"R4", "2.1.1", KindRule},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			info, ok := refs[tt.id]
			if !ok {
				t.Fatalf("no entry for %s", tt.id)
			}
			if info.Reference != tt.ref {
				t.Errorf("Reference = %q, want %q", info.Reference, tt.ref)
			}
			if info.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", info.Kind, tt.kind)
			}
			if info.ID != tt.id {
				t.Errorf("ID = %q, want %q", info.ID, tt.id)
			}
		})
	}
}

func TestBuildRefsText(t *testing.T) {
	refs, err := BuildRefs(sampleDocument())
	if err != nil {
		t.Fatalf("BuildRefs: %v", err)
	}
	if got := refs["H1"].Text; got != "Header H1" {
		t.Errorf("header text = %q", got)
	}
	if got := refs["S2"].Text; got != "Section S2" {
		t.Errorf("section text = %q", got)
	}
	if got := refs["R1"].Text; got != "" {
		t.Errorf("rule text = %q, want empty", got)
	}
}

func TestBuildRefsHeadersSequential(t *testing.T) {
	for _, n := range []int{1, 2, 5, 12} {
		t.Run(fmt.Sprintf("%d headers", n), func(t *testing.T) {
			doc := &Document{}
			for i := 0; i < n; i++ {
				doc.Headers = append(doc.Headers, header(fmt.Sprintf("h-%d", i)))
			}
			refs, err := BuildRefs(doc)
			if err != nil {
				t.Fatalf("BuildRefs: %v", err)
			}
			for i, h := range doc.Headers {
				if got, want := refs[h.ID].Reference, fmt.Sprint(i+1); got != want {
					t.Errorf("header %d reference = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestBuildRefsDuplicate(t *testing.T) {
	tests := []struct {
		name     string
		doc      *Document
		id       string
		wantText string
	}{
		{
			name: "sibling rules",
			doc:  &Document{Headers: []*Header{header("H1", section("S1", rule("R1"), rule("R1")))}},
			id:   "R1",
		},
		{
			name: "rule and sub-rule in unrelated branches",
			doc: &Document{Headers: []*Header{
				header("H1", section("S1", rule("R1", rule("X")))),
				header("H2", section("S2", rule("X"))),
			}},
			id: "X",
		},
		{
			name: "section reuses header id",
			doc:  &Document{Headers: []*Header{header("A", section("A"))}},
			id:   "A",
		},
		{
			name:     "headers",
			doc:      &Document{Headers: []*Header{header("H1"), {ID: "H1", Text: "Again"}}},
			id:       "H1",
			wantText: "Again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs, err := BuildRefs(tt.doc)
			if err == nil {
				t.Fatal("expected duplicate identifier error")
			}
			if refs != nil {
				t.Error("refs should be nil on failure")
			}
			if !errors.Is(err, errors.ErrCodeDuplicateIdentifier) {
				t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeDuplicateIdentifier)
			}
			dup, ok := err.(*errors.DuplicateIDError)
			if !ok {
				t.Fatalf("error type = %T, want *errors.DuplicateIDError", err)
			}
			if dup.ID != tt.id {
				t.Errorf("ID = %q, want %q", dup.ID, tt.id)
			}
			if dup.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", dup.Text, tt.wantText)
			}
		})
	}
}

func TestBuildRefsExampleIDsIgnored(t *testing.T) {
	// Examples are not addressable, so reusing a rule id on an example is fine.
	r := rule("R1")
	r.Examples = []*Example{{ID: "R1", Text: Plain("e.g.")}}
	doc := &Document{Headers: []*Header{header("H1", section("S1", r, &Example{ID: "S1"}))}}

	refs, err := BuildRefs(doc)
	if err != nil {
		t.Fatalf("BuildRefs: %v", err)
	}
	if len(refs) != 3 {
		t.Errorf("len(refs) = %d, want 3", len(refs))
	}
}

func TestBuildRefsMatchesTreeWalk(t *testing.T) {
	doc := sampleDocument()
	refs, err := BuildRefs(doc)
	if err != nil {
		t.Fatalf("BuildRefs: %v", err)
	}

	walked := doc.IDs()
	var built []string
	for id := range refs {
		built = append(built, id)
	}
	sort.Strings(walked)
	sort.Strings(built)

	if len(walked) != len(built) {
		t.Fatalf("table has %d entries, tree walk found %d", len(built), len(walked))
	}
	for i := range walked {
		if walked[i] != built[i] {
			t.Errorf("entry %d: table %q, walk %q", i, built[i], walked[i])
		}
	}
	if _, ok := refs["E1"]; ok {
		t.Error("example E1 should have no entry")
	}
}

func TestBuildRefsSubRuleLimit(t *testing.T) {
	build := func(n int) *Document {
		parent := rule("P")
		for i := 0; i < n; i++ {
			parent.Rules = append(parent.Rules, rule(fmt.Sprintf("P%d", i)))
		}
		return &Document{Headers: []*Header{header("H", section("S", parent))}}
	}

	refs, err := BuildRefs(build(MaxSubRules))
	if err != nil {
		t.Fatalf("BuildRefs with %d sub-rules: %v", MaxSubRules, err)
	}
	if got := refs[fmt.Sprintf("P%d", MaxSubRules-1)].Reference; got != "1.1.1n" {
		t.Errorf("last sub-rule reference = %q, want 1.1.1n", got)
	}

	_, err = BuildRefs(build(MaxSubRules + 1))
	if !errors.Is(err, errors.ErrCodeTooManySubRules) {
		t.Fatalf("err = %v, want %v", err, errors.ErrCodeTooManySubRules)
	}
}

func TestBuildRefsDoesNotMutate(t *testing.T) {
	doc := sampleDocument()
	before := doc.IDs()
	if _, err := BuildRefs(doc); err != nil {
		t.Fatalf("BuildRefs: %v", err)
	}
	after := doc.IDs()
	if fmt.Sprint(before) != fmt.Sprint(after) {
		t.Errorf("document changed: %v -> %v", before, after)
	}
}

func TestRefTableResolve(t *testing.T) {
	refs, err := BuildRefs(sampleDocument())
	if err != nil {
		t.Fatalf("BuildRefs: %v", err)
	}

	ref, err := refs.Reference("R2b")
	if err != nil || ref != "1.1.2b" {
		t.Errorf("Reference(R2b) = %q, %v", ref, err)
	}

	_, err = refs.Resolve("missing")
	if !errors.Is(err, errors.ErrCodeUnresolvedReference) {
		t.Errorf("Resolve(missing) err = %v, want %v", err, errors.ErrCodeUnresolvedReference)
	}
}

func TestRefTableOrdered(t *testing.T) {
	doc := sampleDocument()
	refs, err := BuildRefs(doc)
	if err != nil {
		t.Fatalf("BuildRefs: %v", err)
	}

	ordered := refs.Ordered(doc)
	want := []string{"1", "1.1", "1.1.1", "1.1.2", "1.1.2a", "1.1.2b", "1.1.2c", "1.2", "1.2.1", "1.2.1a", "1.2.1aa", "2", "2.1", "2.1.1", "3"}
	if len(ordered) != len(want) {
		t.Fatalf("len = %d, want %d", len(ordered), len(want))
	}
	for i, info := range ordered {
		if info.Reference != want[i] {
			t.Errorf("ordered[%d] = %q, want %q", i, info.Reference, want[i])
		}
	}
}
