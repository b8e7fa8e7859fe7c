package rulebook

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/rulebook/pkg/errors"
)

// RefKind is the kind of node a reference points at.
type RefKind string

// Reference kinds.
const (
	KindHeader  RefKind = "header"
	KindSection RefKind = "section"
	KindRule    RefKind = "rule"
)

// subRuleLetters are the suffixes available to the sub-rules of one rule.
const subRuleLetters = "abcdefghijklmn"

// MaxSubRules is the number of sub-rules a single rule may hold.
const MaxSubRules = len(subRuleLetters)

// RefInfo describes one addressable node.
type RefInfo struct {
	Reference string  `json:"reference"`
	Kind      RefKind `json:"kind"`
	Text      string  `json:"text,omitempty"` // empty for rules
	ID        string  `json:"id"`
}

// RefTable maps node identifiers to their reference information.
type RefTable map[string]RefInfo

// Resolve returns the reference information for id.
func (t RefTable) Resolve(id string) (RefInfo, error) {
	info, ok := t[id]
	if !ok {
		return RefInfo{}, errors.New(errors.ErrCodeUnresolvedReference, "no reference for id %q", id)
	}
	return info, nil
}

// Reference returns the resolved reference string for id.
func (t RefTable) Reference(id string) (string, error) {
	info, err := t.Resolve(id)
	if err != nil {
		return "", err
	}
	return info.Reference, nil
}

// Ordered returns the table's entries in the declaration order of doc.
// Identifiers of doc missing from the table are skipped.
func (t RefTable) Ordered(doc *Document) []RefInfo {
	ids := doc.IDs()
	out := make([]RefInfo, 0, len(ids))
	for _, id := range ids {
		if info, ok := t[id]; ok {
			out = append(out, info)
		}
	}
	return out
}

// BuildRefs numbers every header, section, rule and sub-rule of doc.
//
// It fails with a *errors.DuplicateIDError if an identifier occurs twice
// and with ErrCodeTooManySubRules if a rule has more than MaxSubRules
// sub-rules. doc is not modified.
func BuildRefs(doc *Document) (RefTable, error) {
	b := &refBuilder{refs: make(RefTable)}
	for i, h := range doc.Headers {
		if err := b.header(h, i+1); err != nil {
			return nil, err
		}
	}
	return b.refs, nil
}

type refBuilder struct {
	refs RefTable
}

func (b *refBuilder) add(info RefInfo) error {
	if _, ok := b.refs[info.ID]; ok {
		dup := &errors.DuplicateIDError{ID: info.ID}
		if info.Kind == KindHeader {
			dup.Text = info.Text
		}
		return dup
	}
	b.refs[info.ID] = info
	return nil
}

func (b *refBuilder) header(h *Header, n int) error {
	ref := strconv.Itoa(n)
	if err := b.add(RefInfo{Reference: ref, Kind: KindHeader, Text: h.Text, ID: h.ID}); err != nil {
		return err
	}
	for i, s := range h.Sections {
		if err := b.section(s, ref, i+1); err != nil {
			return err
		}
	}
	return nil
}

func (b *refBuilder) section(s *Section, parent string, n int) error {
	ref := fmt.Sprintf("%s.%d", parent, n)
	if err := b.add(RefInfo{Reference: ref, Kind: KindSection, Text: s.Text, ID: s.ID}); err != nil {
		return err
	}
	for i, r := range s.Rules() {
		if err := b.rule(r, fmt.Sprintf("%s.%d", ref, i+1)); err != nil {
			return err
		}
	}
	return nil
}

func (b *refBuilder) rule(r *Rule, ref string) error {
	if err := b.add(RefInfo{Reference: ref, Kind: KindRule, ID: r.ID}); err != nil {
		return err
	}
	if len(r.Rules) > MaxSubRules {
		return errors.New(errors.ErrCodeTooManySubRules,
			"rule %s (%s) has %d sub-rules, at most %d are allowed", r.ID, ref, len(r.Rules), MaxSubRules)
	}
	for i, sub := range r.Rules {
		if err := b.rule(sub, ref+subRuleLetters[i:i+1]); err != nil {
			return err
		}
	}
	return nil
}
