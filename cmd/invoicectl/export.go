package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/varun160398/auto-invoice-portal/internal/export"
)

func newExportCmd(opts *options) *cobra.Command {
	var out string
	var workers int

	cmd := &cobra.Command{
		Use:   "export <workbook>",
		Short: "Render every invoice into one zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			records, err := e.registry.LoadRecords(args[0])
			if err != nil {
				return err
			}

			if workers <= 0 {
				workers = e.cfg.Export.Workers
			}
			exporter := export.NewExporter(e.renderer(), export.Options{Workers: workers}, e.logger)

			archive, err := exporter.ExportAll(cmd.Context(), records, e.period, e.lookup, nil)
			if err != nil {
				return err
			}
			if err := writeFile(out, archive.Data); err != nil {
				return err
			}

			for _, entry := range archive.Entries {
				if entry.Diagnostic != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: signature not drawn: %s\n", entry.Name, entry.Diagnostic)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s with %d invoices for %s\n", out, len(archive.Entries), e.period)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", export.ArchiveName, "Output zip path")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent renders (default from config)")
	return cmd
}
