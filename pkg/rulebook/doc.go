// Package rulebook defines the rulebook document tree and the reference
// table that numbers it.
//
// # Document Tree
//
// A [Document] is an ordered list of [Header]s. Each header holds
// [Section]s, each section holds [Rule]s (and, occasionally, [Example]s),
// and each rule may nest sub-rules and examples of its own:
//
//	Document
//	└── Header "1"
//	    └── Section "1.1"
//	        ├── Rule "1.1.1"
//	        │   ├── Rule "1.1.1a"
//	        │   └── Example
//	        └── Rule "1.1.2"
//
// Nodes carry a caller-supplied identifier. Identifiers are opaque: they
// key the reference table and name LaTeX labels, but they never appear in
// the positional numbering.
//
// # References
//
// [BuildRefs] walks a document once in declaration order and assigns every
// header, section, rule and sub-rule a positional reference string:
//
//   - headers: "1", "2", ...
//   - sections: "<header>.<n>", e.g. "1.3"
//   - rules: "<section>.<n>", e.g. "1.3.2"
//   - sub-rules: "<parent>" plus a letter a..n, e.g. "1.3.2a", "1.3.2ab"
//
// Examples are not addressable and get no reference. An identifier that
// occurs twice anywhere in the tree is a fatal error.
//
// The resulting [RefTable] is read-only; HTML and LaTeX renders of the same
// document may share it.
package rulebook
