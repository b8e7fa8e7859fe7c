// Package nodelink renders the rulebook hierarchy as a node-link diagram.
//
// # Overview
//
// Every header, section and rule becomes a box labelled with its reference
// (and the header or section title). Edges follow the tree from headers
// down to sub-rules; rules that also open a table-of-contents entry are
// drawn with a double border. With [Options.CrossRefs] the diagram also
// shows, as dashed edges, which rules point at which other nodes, which
// makes dangling or circular cross-references easy to spot.
//
// # Usage
//
//	refs, err := rulebook.BuildRefs(doc)
//	dot, err := nodelink.ToDOT(doc, refs, nodelink.Options{CrossRefs: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package nodelink
