package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marketpulse/internal/services/analysis"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/templates"
)

func newTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the embedded scenario and mapping templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := templates.Get()
			w := cmd.OutOrStdout()
			for _, id := range reg.List() {
				tmpl, err := reg.GetTemplate(id)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(w, "%s: %s\n", id, strings.Join(tmpl.Blocks(), ", ")); err != nil {
					return err
				}
			}
			if err := analysis.CheckTemplates(reg); err != nil {
				return errors.NewConfigError("analysis templates", err)
			}
			_, err := fmt.Fprintln(w, "✓ all required blocks present")
			return err
		},
	}
}
