// Package io provides JSON and TOML import and export for rulebook documents.
//
// # Overview
//
// Rulebook sources are plain data files describing the document tree. The
// importer decodes them into a [rulebook.Document], parsing every formatted
// text field with [markup.Parse]. The exporter writes the canonical JSON
// form back out, so a document survives import, export and re-import
// unchanged.
//
// # JSON Format
//
//	{
//	  "headers": [
//	    {
//	      "id": "H1",
//	      "text": "Scope",
//	      "sections": [
//	        {
//	          "id": "S1",
//	          "text": "Intro",
//	          "snippet": "Read this first.",
//	          "entries": [
//	            {"kind": "example", "id": "E1", "text": "An overview."},
//	            {"id": "R1", "text": "Do *not* skip [R2](#R2).", "section": true,
//	             "rules": [{"id": "R1a", "text": "first"}],
//	             "examples": [{"id": "E2", "text": "For instance"}]}
//	          ]
//	        }
//	      ]
//	    }
//	  ]
//	}
//
// Entries default to kind "rule". Header and section text is display text
// and is used verbatim; rule, example and snippet text is formatted text.
//
// # TOML Format
//
// The same tree expressed with arrays of tables:
//
//	[[headers]]
//	id = "H1"
//	text = "Scope"
//
//	[[headers.sections]]
//	id = "S1"
//	text = "Intro"
//
//	[[headers.sections.entries]]
//	id = "R1"
//	text = "Do X"
//
// # Import
//
// Use [ImportDocument] to read a file by path (the extension selects the
// decoder), or [ReadJSON] and [ReadTOML] to read from any io.Reader.
//
// # Export
//
// Use [ExportJSON] or [ExportTOML] to write a document to a file, or
// [WriteJSON] and [WriteTOML] to write to any io.Writer. The JSON output is
// stable for a given document and is what the artifact cache hashes.
//
// [rulebook.Document]: github.com/matzehuels/rulebook/pkg/rulebook.Document
// [markup.Parse]: github.com/matzehuels/rulebook/pkg/markup.Parse
package io
