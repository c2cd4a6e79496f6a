package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marketpulse/internal/bootstrap"
	"marketpulse/internal/services/analysis"
	"marketpulse/pkg/errors"
)

type analyzeOptions struct {
	Articles  string
	Portfolio string
	Language  string
	Pretty    bool
}

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a batch of articles and print the report as JSON",
		Long: `Analyze reads a JSON array of articles (and optionally a JSON array of
portfolio items), runs the full pipeline once and writes the report to stdout.
Use "-" to read articles from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Articles, "articles", "", "JSON file with articles, - for stdin")
	cmd.Flags().StringVar(&opts.Portfolio, "portfolio", "", "JSON file with portfolio items")
	cmd.Flags().StringVar(&opts.Language, "language", "", "language hint (en|ru)")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "indent the JSON report")
	_ = cmd.MarkFlagRequired("articles")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions) error {
	c := bootstrap.NewContainer()
	if err := c.InitConfig(root.apply); err != nil {
		return err
	}
	defer c.Close()

	if err := c.InitAnalysis(); err != nil {
		return err
	}

	req := analysis.Request{Language: opts.Language}
	read, err := readJSON(opts.Articles, cmd.InOrStdin(), &req.Articles)
	if err != nil {
		return err
	}
	if opts.Portfolio != "" {
		if _, err := readJSON(opts.Portfolio, cmd.InOrStdin(), &req.Portfolio); err != nil {
			return err
		}
	}

	c.Log.Infow("Analyzing articles",
		"articles", humanize.Comma(int64(len(req.Articles))),
		"portfolio", len(req.Portfolio),
		"input", humanize.Bytes(uint64(read)),
	)

	report, err := c.Services.Analyzer.Analyze(cmd.Context(), req)
	if err != nil {
		return err
	}

	c.Log.Infow("✓ Analysis complete",
		"drivers", len(report.Drivers),
		"warnings", len(report.Warnings),
		"dictionary_version", report.DictionaryVersion,
	)
	return writeJSON(cmd.OutOrStdout(), report, opts.Pretty)
}

// readJSON decodes path (or stdin for "-") into dest and returns the bytes read
func readJSON(path string, stdin io.Reader, dest interface{}) (int, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return 0, errors.NewDomainError(errors.CodeInput, "read "+path, errors.Wrap(errors.ErrInput, err.Error()))
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return 0, errors.NewDomainError(errors.CodeInput, "decode "+path, errors.Wrap(errors.ErrInput, err.Error()))
	}
	return len(data), nil
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return errors.Wrap(enc.Encode(v), "write report")
}
