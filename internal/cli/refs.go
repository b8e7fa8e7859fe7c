package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	rbio "github.com/matzehuels/rulebook/pkg/io"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

// refsCommand creates the refs command, which prints the reference table.
func (c *CLI) refsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "refs <file>",
		Short: "Print the reference number of every header, section and rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := rbio.ImportDocument(args[0])
			if err != nil {
				return err
			}
			refs, err := rulebook.BuildRefs(doc)
			if err != nil {
				return err
			}
			ordered := refs.Ordered(doc)
			loggerFromContext(cmd.Context()).Debugf("Resolved %d references", len(ordered))

			if asJSON {
				return writeRefsJSON(cmd.OutOrStdout(), ordered)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), refsTable(ordered))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	return cmd
}

func writeRefsJSON(w io.Writer, refs []rulebook.RefInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(refs)
}

// refsTable renders refs as a bordered table in declaration order.
func refsTable(refs []rulebook.RefInfo) string {
	rows := make([][]string, 0, len(refs))
	for _, r := range refs {
		rows = append(rows, []string{r.Reference, string(r.Kind), r.ID, r.Text})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Ref", "Kind", "ID", "Text").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case col == 0:
				return style.Foreground(colorCyan)
			case refs[row].Kind == rulebook.KindHeader:
				return style.Bold(true)
			case col == 1:
				return style.Foreground(colorDim)
			}
			return style
		})

	return t.Render()
}
