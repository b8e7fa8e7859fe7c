// Package outline renders a rulebook document as a hyperlinked HTML outline.
//
// The output is an HTML fragment (no html or body element) built from
// nested ordered lists. Every list item carries a class from the fixed set
// Header, Section, Rule and SubRule, and an id equal to the node's resolved
// reference string:
//
//	<ol><li class="Header" id="1"><h1>Scope</h1><ol>
//	  <li class="Section" id="1.1"><h2>Intro</h2><ol>
//	    <li class="Rule" id="1.1.1">Do X</li>
//	  </ol></li>
//	</ol></li></ol>
//
// Cross-references in formatted text become links to those anchors, so
// "see [rule](#R1)" renders as see <a href="#1.1.1">1.1.1</a>.
package outline
