package io

import (
	"fmt"

	"github.com/matzehuels/rulebook/pkg/errors"
	"github.com/matzehuels/rulebook/pkg/markup"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

const (
	kindRule    = "rule"
	kindExample = "example"
)

type document struct {
	Headers []header `json:"headers" toml:"headers"`
}

type header struct {
	ID       string    `json:"id" toml:"id"`
	Text     string    `json:"text" toml:"text"`
	Sections []section `json:"sections,omitempty" toml:"sections,omitempty"`
}

type section struct {
	ID      string  `json:"id" toml:"id"`
	Text    string  `json:"text" toml:"text"`
	Snippet string  `json:"snippet,omitempty" toml:"snippet,omitempty"`
	Entries []entry `json:"entries,omitempty" toml:"entries,omitempty"`
}

type entry struct {
	Kind     string    `json:"kind,omitempty" toml:"kind,omitempty"`
	ID       string    `json:"id" toml:"id"`
	Text     string    `json:"text" toml:"text"`
	Section  bool      `json:"section,omitempty" toml:"section,omitempty"`
	Rules    []rule    `json:"rules,omitempty" toml:"rules,omitempty"`
	Examples []example `json:"examples,omitempty" toml:"examples,omitempty"`
}

type rule struct {
	ID       string    `json:"id" toml:"id"`
	Text     string    `json:"text" toml:"text"`
	Section  bool      `json:"section,omitempty" toml:"section,omitempty"`
	Rules    []rule    `json:"rules,omitempty" toml:"rules,omitempty"`
	Examples []example `json:"examples,omitempty" toml:"examples,omitempty"`
}

type example struct {
	ID   string `json:"id" toml:"id"`
	Text string `json:"text" toml:"text"`
}

func (d document) decode() (*rulebook.Document, error) {
	doc := &rulebook.Document{Headers: make([]*rulebook.Header, 0, len(d.Headers))}
	for _, h := range d.Headers {
		hdr := &rulebook.Header{ID: h.ID, Text: h.Text}
		for _, s := range h.Sections {
			sec, err := s.decode()
			if err != nil {
				return nil, fmt.Errorf("header %s: %w", h.ID, err)
			}
			hdr.Sections = append(hdr.Sections, sec)
		}
		doc.Headers = append(doc.Headers, hdr)
	}
	return doc, nil
}

func (s section) decode() (*rulebook.Section, error) {
	snippet, err := markup.Parse(s.Snippet)
	if err != nil {
		return nil, fmt.Errorf("section %s snippet: %w", s.ID, err)
	}
	sec := &rulebook.Section{ID: s.ID, Text: s.Text, Snippet: snippet}
	for i, e := range s.Entries {
		ent, err := e.decode()
		if err != nil {
			return nil, fmt.Errorf("section %s entry %d: %w", s.ID, i, err)
		}
		sec.Entries = append(sec.Entries, ent)
	}
	return sec, nil
}

func (e entry) decode() (rulebook.Entry, error) {
	switch e.Kind {
	case "", kindRule:
		return rule{ID: e.ID, Text: e.Text, Section: e.Section, Rules: e.Rules, Examples: e.Examples}.decode()
	case kindExample:
		return example{ID: e.ID, Text: e.Text}.decode()
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown entry kind %q", e.Kind)
	}
}

func (r rule) decode() (*rulebook.Rule, error) {
	text, err := markup.Parse(r.Text)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	out := &rulebook.Rule{ID: r.ID, Text: text, Section: r.Section}
	for _, sub := range r.Rules {
		s, err := sub.decode()
		if err != nil {
			return nil, err
		}
		out.Rules = append(out.Rules, s)
	}
	for _, ex := range r.Examples {
		x, err := ex.decode()
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		out.Examples = append(out.Examples, x)
	}
	return out, nil
}

func (e example) decode() (*rulebook.Example, error) {
	text, err := markup.Parse(e.Text)
	if err != nil {
		return nil, fmt.Errorf("example %s: %w", e.ID, err)
	}
	return &rulebook.Example{ID: e.ID, Text: text}, nil
}

func encode(doc *rulebook.Document) document {
	out := document{Headers: make([]header, 0, len(doc.Headers))}
	for _, h := range doc.Headers {
		hdr := header{ID: h.ID, Text: h.Text}
		for _, s := range h.Sections {
			hdr.Sections = append(hdr.Sections, encodeSection(s))
		}
		out.Headers = append(out.Headers, hdr)
	}
	return out
}

func encodeSection(s *rulebook.Section) section {
	out := section{ID: s.ID, Text: s.Text, Snippet: markup.Format(s.Snippet)}
	for _, e := range s.Entries {
		switch e := e.(type) {
		case *rulebook.Rule:
			r := encodeRule(e)
			out.Entries = append(out.Entries, entry{ID: r.ID, Text: r.Text, Section: r.Section, Rules: r.Rules, Examples: r.Examples})
		case *rulebook.Example:
			out.Entries = append(out.Entries, entry{Kind: kindExample, ID: e.ID, Text: markup.Format(e.Text)})
		}
	}
	return out
}

func encodeRule(r *rulebook.Rule) rule {
	out := rule{ID: r.ID, Text: markup.Format(r.Text), Section: r.Section}
	for _, sub := range r.Rules {
		out.Rules = append(out.Rules, encodeRule(sub))
	}
	for _, ex := range r.Examples {
		out.Examples = append(out.Examples, example{ID: ex.ID, Text: markup.Format(ex.Text)})
	}
	return out
}
