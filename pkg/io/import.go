package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/rulebook/pkg/errors"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// ReadJSON decodes a JSON rulebook from r.
//
// Formatted text fields are parsed with the markup package; a malformed
// cross-reference (an empty "#" target) is reported as INVALID_INPUT.
// Decoding failures are reported as INVALID_FORMAT. Identifier uniqueness
// is not checked here; that happens when the reference table is built.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*rulebook.Document, error) {
	var data document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	return data.decode()
}

// ReadTOML decodes a TOML rulebook from r. See [ReadJSON] for the error
// semantics.
func ReadTOML(r io.Reader) (*rulebook.Document, error) {
	var data document
	md, err := toml.NewDecoder(r).Decode(&data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown toml key %q", undecoded[0].String())
	}
	return data.decode()
}

// ImportDocument reads the rulebook file at path. The file extension
// selects the decoder (.json or .toml).
func ImportDocument(path string) (*rulebook.Document, error) {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		return ReadTOML(f)
	}
	return ReadJSON(f)
}
