package rulebook

import "strings"

// SpanKind identifies how a span of formatted text is rendered.
type SpanKind int

const (
	// SpanPlain is literal text.
	SpanPlain SpanKind = iota
	// SpanEmph is emphasised text.
	SpanEmph
	// SpanStrong is strongly emphasised text.
	SpanStrong
	// SpanRef is a cross-reference; Value holds the target identifier.
	SpanRef
)

// String returns the span kind name.
func (k SpanKind) String() string {
	switch k {
	case SpanPlain:
		return "plain"
	case SpanEmph:
		return "emph"
	case SpanStrong:
		return "strong"
	case SpanRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Span is one run of formatted text.
type Span struct {
	Kind  SpanKind
	Value string
}

// Text is formatted text: an ordered run of spans that may embed
// cross-references to other nodes.
type Text []Span

// Plain returns a Text holding s as a single plain span.
func Plain(s string) Text {
	if s == "" {
		return nil
	}
	return Text{{Kind: SpanPlain, Value: s}}
}

// Ref returns a reference span to id.
func Ref(id string) Span {
	return Span{Kind: SpanRef, Value: id}
}

// IsEmpty reports whether t has no spans.
func (t Text) IsEmpty() bool {
	return len(t) == 0
}

// Refs returns the identifiers referenced by t, in order of appearance.
func (t Text) Refs() []string {
	var ids []string
	for _, s := range t {
		if s.Kind == SpanRef {
			ids = append(ids, s.Value)
		}
	}
	return ids
}

// String returns the text without markup. References render as their
// target identifier in brackets.
func (t Text) String() string {
	var b strings.Builder
	for _, s := range t {
		if s.Kind == SpanRef {
			b.WriteString("[" + s.Value + "]")
			continue
		}
		b.WriteString(s.Value)
	}
	return b.String()
}
