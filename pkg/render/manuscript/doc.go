// Package manuscript renders a rulebook document as a LaTeX manuscript.
//
// # Markup
//
// Headers become \section, sections become \subsection followed by a
// \label keyed by the section identifier, and rules are written as entries
// of an outline[enumerate] environment:
//
//   - \1 top-level rule
//   - \2 sub-rule (\3 and \4 for deeper nesting)
//   - \0 example, indented with adjustwidth
//
// A rule flagged as a section is preceded by a subsubsection counter bump,
// a table-of-contents line and a rule_section counter step labelled with
// the rule's identifier, so it can be targeted by \ref and listed in the
// table of contents.
//
// # Templates
//
// [Render] loads a template from a [TemplateSource] and replaces the
// __CHANGELOG_PLACEHOLDER__ and __DOCUMENT_PLACEHOLDER__ tokens. Use
// [FileTemplate] for a template on disk, [StringTemplate] for an in-memory
// template, or [DefaultTemplate] for the one bundled with this package.
package manuscript
