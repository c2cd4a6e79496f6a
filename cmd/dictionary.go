package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marketpulse/internal/domain/dictionary"
)

func newDictionaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dictionary",
		Short: "Inspect and validate dictionary documents",
	}
	cmd.AddCommand(newDictionaryValidateCommand())
	cmd.AddCommand(newDictionaryDumpCommand())
	return cmd
}

func newDictionaryValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a dictionary document loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := dictionary.Load(args[0])
			if err != nil {
				return err
			}
			snap, err := dictionary.NewSnapshot(doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: version %s, %s languages, %s risk and %s opportunity terms\n",
				args[0],
				snap.Version(),
				humanize.Comma(int64(len(snap.Languages()))),
				humanize.Comma(int64(snap.Risk().Len())),
				humanize.Comma(int64(snap.Opportunity().Len())),
			)
			return err
		},
	}
}

func newDictionaryDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the embedded default dictionary (YAML)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(dictionary.DefaultDocument())
			return err
		},
	}
}
