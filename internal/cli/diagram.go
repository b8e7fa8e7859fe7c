package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rulebook/pkg/errors"
	rbio "github.com/matzehuels/rulebook/pkg/io"
	"github.com/matzehuels/rulebook/pkg/pipeline"
)

// diagramCommand creates the diagram command, which draws the document
// hierarchy as a Graphviz node-link diagram.
func (c *CLI) diagramCommand() *cobra.Command {
	var (
		format    string
		output    string
		depth     int
		detailed  bool
		crossRefs bool
	)

	cmd := &cobra.Command{
		Use:   "diagram <file>",
		Short: "Draw the header, section and rule hierarchy",
		Example: `  rulebook diagram rules.json
  rulebook diagram rules.json -f dot --depth 2 -o -
  rulebook diagram rules.toml --detailed --cross-refs -o overview.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatDOT && format != pipeline.FormatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "diagram format must be dot or svg, got %q", format)
			}

			flags := cmd.Flags()
			if flags.Changed("depth") {
				c.Config.Diagram.Depth = depth
			}
			if flags.Changed("detailed") {
				c.Config.Diagram.Detailed = detailed
			}
			if flags.Changed("cross-refs") {
				c.Config.Diagram.CrossRefs = crossRefs
			}

			ctx := cmd.Context()
			input := args[0]
			doc, err := rbio.ImportDocument(input)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			result, err := runner.Execute(ctx, doc, c.pipelineOptions([]string{format}, false))
			if err != nil {
				return err
			}
			data := result.Artifacts[format]

			path := output
			if path == "" {
				path = basePath("", input) + pipeline.Extensions[format]
			}
			if err := writeFile(path, data); err != nil {
				return err
			}
			if path == stdoutPath {
				return nil
			}

			printSuccess("Drew %s", filepath.Base(input))
			printFile(path)
			printStats(result.Stats.Entries, len(data), result.CacheInfo.RenderHit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: svg or dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or - for stdout")
	cmd.Flags().IntVar(&depth, "depth", 0, "levels to draw: 1 headers, 2 sections, 3 rules (0 draws all)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include rule text in node labels")
	cmd.Flags().BoolVar(&crossRefs, "cross-refs", false, "draw dashed edges for cross-references")

	return cmd
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
