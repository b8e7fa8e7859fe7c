package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/rulebook/internal/config"
	"github.com/matzehuels/rulebook/pkg/buildinfo"
	"github.com/matzehuels/rulebook/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run loads the configuration (rulebook.toml, .env and
// RULEBOOK_* variables), applies --verbose and attaches the logger to the
// command context, where subcommands find it with loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Rulebook renders numbered rulebooks to HTML and LaTeX",
		Long:         `Rulebook assigns hierarchical reference numbers to every header, section and rule of a rulebook and renders it as a hyperlinked HTML outline and a LaTeX manuscript with resolved cross-references.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				hooks := &logHooks{logger: c.Logger}
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}

			cfg, err := config.Load(c.configPath, c.envFile)
			if err != nil {
				return err
			}
			c.Config = cfg
			c.Logger.Debug("loaded config", "formats", cfg.Formats, "template", cfg.Template, "redis", cfg.Cache.RedisURL != "")

			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default ./"+config.FileName+")")
	flags.StringVar(&c.envFile, "env-file", "", "dotenv file (default ./"+config.EnvFile+")")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the artifact cache")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.refsCommand())
	root.AddCommand(c.diagramCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
