package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rulebook/pkg/errors"
	rbio "github.com/matzehuels/rulebook/pkg/io"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// Export formats.
const (
	exportJSON = "json"
	exportTOML = "toml"
)

// exportCommand creates the export command, which writes a rulebook back
// out in canonical JSON or TOML form. It is also how a TOML rulebook is
// converted to JSON and back.
func (c *CLI) exportCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a rulebook in canonical JSON or TOML form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := exportFormat(format, output)
			if err != nil {
				return err
			}
			doc, err := rbio.ImportDocument(args[0])
			if err != nil {
				return err
			}
			refs, err := rulebook.BuildRefs(doc)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debugf("Exporting %d references as %s", len(refs), kind)

			if output == "" || output == stdoutPath {
				if kind == exportTOML {
					return rbio.WriteTOML(doc, cmd.OutOrStdout())
				}
				return rbio.WriteJSON(doc, cmd.OutOrStdout())
			}

			if err := ensureDir(output); err != nil {
				return err
			}
			if kind == exportTOML {
				err = rbio.ExportTOML(doc, output)
			} else {
				err = rbio.ExportJSON(doc, output)
			}
			if err != nil {
				return err
			}
			printSuccess("Exported %s", filepath.Base(args[0]))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or - for stdout (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or toml (default from the output extension, else json)")
	return cmd
}

// exportFormat resolves the --format flag, falling back to the output
// file's extension.
func exportFormat(flag, output string) (string, error) {
	if flag == "" {
		if strings.EqualFold(filepath.Ext(output), ".toml") {
			return exportTOML, nil
		}
		return exportJSON, nil
	}
	switch f := strings.ToLower(flag); f {
	case exportJSON, exportTOML:
		return f, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q (want json or toml)", flag)
	}
}
