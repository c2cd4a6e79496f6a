package main

import (
	"github.com/spf13/cobra"

	"marketpulse/internal/adapters/config"
)

// rootOptions holds flags shared by all commands. Empty values keep the
// environment configuration.
type rootOptions struct {
	Dictionary string
	LogLevel   string
	Mode       string
}

func (o *rootOptions) apply(cfg *config.Config) {
	if o.Dictionary != "" {
		cfg.Dictionary.Path = o.Dictionary
	}
	if o.LogLevel != "" {
		cfg.App.LogLevel = o.LogLevel
	}
	if o.Mode != "" {
		cfg.Analytics.Mode = o.Mode
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "marketpulse",
		Short:         "Rule-based news analytics",
		Long:          "Turns news articles into sentiment, sectors, summaries, market drivers, scenarios and portfolio mappings.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Dictionary, "dictionary", "", "dictionary file (yaml|json|toml); embedded default when empty")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Mode, "mode", "", "analyzer mode (rule_based|external_model)")

	cmd.AddCommand(newAnalyzeCommand(opts))
	cmd.AddCommand(newStreamCommand(opts))
	cmd.AddCommand(newDictionaryCommand())
	cmd.AddCommand(newTemplatesCommand())

	return cmd
}
