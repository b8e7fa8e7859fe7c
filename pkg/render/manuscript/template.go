package manuscript

import (
	"embed"
	"io/fs"
	"os"

	"github.com/matzehuels/rulebook/pkg/errors"
)

// Template placeholders, each replaced once.
const (
	ChangelogPlaceholder = "__CHANGELOG_PLACEHOLDER__"
	DocumentPlaceholder  = "__DOCUMENT_PLACEHOLDER__"
)

// TemplateSource provides LaTeX template text.
type TemplateSource interface {
	Load() (string, error)
}

// FileTemplate loads a template from a path on disk.
type FileTemplate string

// Load reads the template file.
func (p FileTemplate) Load() (string, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTemplateLoad, err, "read template %s", string(p))
	}
	return string(data), nil
}

// StringTemplate is an in-memory template.
type StringTemplate string

// Load returns the template text.
func (s StringTemplate) Load() (string, error) {
	return string(s), nil
}

// FSTemplate loads a template from a file system.
type FSTemplate struct {
	FS   fs.FS
	Path string
}

// Load reads the template from the file system.
func (t FSTemplate) Load() (string, error) {
	data, err := fs.ReadFile(t.FS, t.Path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTemplateLoad, err, "read template %s", t.Path)
	}
	return string(data), nil
}

//go:embed templates/template.tex
var templates embed.FS

// DefaultTemplate returns the template bundled with this package.
func DefaultTemplate() TemplateSource {
	return FSTemplate{FS: templates, Path: "templates/template.tex"}
}
