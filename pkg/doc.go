// Package pkg holds the libraries behind the rulebook CLI.
//
// # Overview
//
// A rulebook is a tree of headers, sections and rules. Every node gets a
// hierarchical reference number ("2.3.14b") that cross-references resolve
// to in every output format.
//
//  1. [rulebook] - Document model and reference numbering
//  2. [markup] - Formatted-text syntax for rule, example and snippet text
//  3. [io] - JSON and TOML import and export
//  4. [render] - HTML outline, LaTeX manuscript and hierarchy diagram
//  5. [pipeline] - Orchestration (references, render, cache)
//  6. [cache] - Artifact caching (file, Redis, null)
//
// # Data Flow
//
//	rules.json / rules.toml
//	         ↓
//	    [io] (decode, parse markup)
//	         ↓
//	    [rulebook] (BuildRefs)
//	         ↓
//	    [render] (outline, manuscript, nodelink)
//	         ↓
//	    HTML / LaTeX / DOT / SVG
//
// # Quick Start
//
//	doc, err := io.ImportDocument("rules.toml")
//	if err != nil {
//	    return err
//	}
//	refs, err := rulebook.BuildRefs(doc)
//	if err != nil {
//	    return err
//	}
//	html, err := outline.Render(doc, refs)
//
// [rulebook]: github.com/matzehuels/rulebook/pkg/rulebook
// [markup]: github.com/matzehuels/rulebook/pkg/markup
// [io]: github.com/matzehuels/rulebook/pkg/io
// [render]: github.com/matzehuels/rulebook/pkg/render
// [pipeline]: github.com/matzehuels/rulebook/pkg/pipeline
// [cache]: github.com/matzehuels/rulebook/pkg/cache
package pkg
