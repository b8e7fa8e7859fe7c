package rulebook

// Document is the root of a rulebook tree.
type Document struct {
	Headers []*Header
}

// Header is a top-level division of the document.
type Header struct {
	ID       string
	Text     string
	Sections []*Section
}

// Section groups rules under a header. Snippet is an optional
// introductory paragraph rendered before the rules.
type Section struct {
	ID      string
	Text    string
	Snippet Text
	Entries []Entry
}

// Rule is a numbered rule. When Section is set the rule also acts as a
// numbered subsubsection in the LaTeX table of contents.
type Rule struct {
	ID       string
	Text     Text
	Section  bool
	Rules    []*Rule
	Examples []*Example
}

// Example is an illustrative paragraph attached to a rule or section.
type Example struct {
	ID   string
	Text Text
}

// Entry is a child of a Section: either a *Rule or an *Example.
type Entry interface {
	entry()
}

func (*Rule) entry()    {}
func (*Example) entry() {}

// Rules returns the rules of s in declaration order, skipping examples.
func (s *Section) Rules() []*Rule {
	rules := make([]*Rule, 0, len(s.Entries))
	for _, e := range s.Entries {
		if r, ok := e.(*Rule); ok {
			rules = append(rules, r)
		}
	}
	return rules
}

// IDs returns the identifiers of every addressable node in declaration
// order, depth first. Example identifiers are not included.
func (d *Document) IDs() []string {
	var ids []string
	var rule func(r *Rule)
	rule = func(r *Rule) {
		ids = append(ids, r.ID)
		for _, sub := range r.Rules {
			rule(sub)
		}
	}
	for _, h := range d.Headers {
		ids = append(ids, h.ID)
		for _, s := range h.Sections {
			ids = append(ids, s.ID)
			for _, r := range s.Rules() {
				rule(r)
			}
		}
	}
	return ids
}
