package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/parser"
)

func newColumnsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <workbook>",
		Short: "Show which header each invoice field is read from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			table, canonical, err := e.registry.MapFile(args[0])
			var mce *parser.MissingColumnsError
			if errors.As(err, &mce) {
				fmt.Fprintln(cmd.OutOrStdout(), mce.Error())
				return fmt.Errorf("%d required columns missing", len(mce.Missing))
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FIELD\tHEADER\tCOLUMN")
			for _, f := range models.CanonicalFields {
				col, _ := canonical.Column(f)
				fmt.Fprintf(w, "%s\t%s\t%d\n", f, table.Headers[col], col+1)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d experts\n", canonical.Len())
			return nil
		},
	}
}
