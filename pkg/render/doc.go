// Package render provides the output formats of a rulebook document.
//
// # Overview
//
// Every renderer reads a [rulebook.Document] together with the
// [rulebook.RefTable] built for it and produces a single output string. No
// renderer modifies the tree or the table, so one table may serve several
// renders of the same document.
//
//   - [outline]: hyperlinked HTML outline, one anchored list item per node
//   - [manuscript]: LaTeX manuscript filled into a template
//   - [nodelink]: Graphviz diagram of the document hierarchy
//
// # Usage
//
//	refs, err := rulebook.BuildRefs(doc)
//	if err != nil {
//	    return err
//	}
//	html, err := outline.Render(doc, refs)
//	tex, err := manuscript.Render(doc, refs, manuscript.FileTemplate("template.tex"))
//
// Renderers fail fast: an unresolved cross-reference or a missing template
// returns an error and no partial output.
//
// [rulebook.Document]: github.com/matzehuels/rulebook/pkg/rulebook.Document
// [rulebook.RefTable]: github.com/matzehuels/rulebook/pkg/rulebook.RefTable
// [outline]: github.com/matzehuels/rulebook/pkg/render/outline
// [manuscript]: github.com/matzehuels/rulebook/pkg/render/manuscript
// [nodelink]: github.com/matzehuels/rulebook/pkg/render/nodelink
package render
