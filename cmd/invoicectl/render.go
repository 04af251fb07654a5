package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/varun160398/auto-invoice-portal/internal/export"
	"github.com/varun160398/auto-invoice-portal/internal/models"
)

func newRenderCmd(opts *options) *cobra.Command {
	var name, out string

	cmd := &cobra.Command{
		Use:   "render <workbook>",
		Short: "Render the invoice of one expert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			e, err := opts.env(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			records, err := e.registry.LoadRecords(args[0])
			if err != nil {
				return err
			}

			rec, ok := findExpert(records, name)
			if !ok {
				return fmt.Errorf("expert not found: %q", name)
			}

			sig, err := e.lookup(cmd.Context(), rec.ExpertName)
			if err != nil {
				e.logger.Warn().Err(err).Str("expert", rec.ExpertName).Msg("signature lookup failed")
				sig = nil
			}

			res, err := e.renderer().Render(rec, sig, e.period)
			if err != nil {
				return err
			}
			if res.Diagnostic != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "signature not drawn: %v\n", res.Diagnostic)
			}

			if out == "" {
				out = export.InvoiceFilename(rec)
			}
			if err := writeFile(out, res.PDF); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, signature %s)\n", out, e.period, res.Signature)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Expert name exactly as in the roster")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output PDF path (default: <name>_Invoice_<number>.pdf)")
	return cmd
}

// findExpert returns the first record whose name equals name.
func findExpert(records []models.ExpertRecord, name string) (models.ExpertRecord, bool) {
	for _, rec := range records {
		if rec.ExpertName == name {
			return rec, true
		}
	}
	return models.ExpertRecord{}, false
}
