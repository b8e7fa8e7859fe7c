package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// WriteJSON encodes doc as indented JSON and writes it to w.
// Formatted text is written back as markup, so the output can be
// re-imported with [ReadJSON] to produce an identical document.
func WriteJSON(doc *rulebook.Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(encode(doc)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTOML encodes doc as TOML and writes it to w.
func WriteTOML(doc *rulebook.Document, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(encode(doc)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes doc to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(doc *rulebook.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(doc, f)
}

// ExportTOML writes doc to a TOML file at path.
func ExportTOML(doc *rulebook.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTOML(doc, f)
}
