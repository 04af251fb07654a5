// Package main provides invoicectl, an offline tool for checking rosters and
// rendering invoices without the web portal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/varun160398/auto-invoice-portal/internal/config"
	"github.com/varun160398/auto-invoice-portal/internal/export"
	"github.com/varun160398/auto-invoice-portal/internal/invoice"
	"github.com/varun160398/auto-invoice-portal/internal/logging"
	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/parser"
	"github.com/varun160398/auto-invoice-portal/internal/storage"
)

type options struct {
	configPath    string
	sheet         string
	month         string
	year          string
	signaturesDir string
	logLevel      string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "invoicectl",
		Short: "Check expert rosters and render commission invoices",
		Long: `invoicectl reads an expert roster workbook (.xlsx, .xlsm or .csv)
and renders the same A4 invoices the portal produces.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (default: built-in settings)")
	flags.StringVar(&opts.sheet, "sheet", "", "Worksheet holding the roster (default from config)")
	flags.StringVar(&opts.month, "month", "", "Invoice month, e.g. February (default from config)")
	flags.StringVar(&opts.year, "year", "", "Invoice year (default from config)")
	flags.StringVar(&opts.signaturesDir, "signatures", "", "Directory of signature images named after experts")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newColumnsCmd(opts),
		newRenderCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

func (o *options) loadConfig() (*config.AppConfig, error) {
	if o.configPath == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(o.configPath)
}

// env is everything a subcommand needs, built from flags and config.
type env struct {
	cfg      *config.AppConfig
	registry *parser.Registry
	period   models.Period
	logger   zerolog.Logger
	lookup   export.SignatureLookup
}

func (o *options) env(stderr io.Writer) (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logCfg := cfg.Logging
	logCfg.Level = o.logLevel
	logCfg.Console = true

	sheet := cfg.Workbook.SheetName
	if o.sheet != "" {
		sheet = o.sheet
	}

	period, err := o.period(cfg)
	if err != nil {
		return nil, err
	}

	lookup := func(context.Context, string) ([]byte, error) { return nil, nil }
	if o.signaturesDir != "" {
		store, err := storage.NewLocalSignatureStore(o.signaturesDir)
		if err != nil {
			return nil, err
		}
		lookup = func(ctx context.Context, name string) ([]byte, error) {
			data, err := store.Lookup(ctx, name)
			if errors.Is(err, storage.ErrSignatureNotFound) {
				return nil, nil
			}
			return data, err
		}
	}

	return &env{
		cfg:      cfg,
		registry: parser.NewRegistry(sheet, cfg.AliasTable()),
		period:   period,
		logger:   logging.New(logCfg, stderr),
		lookup:   lookup,
	}, nil
}

func (o *options) period(cfg *config.AppConfig) (models.Period, error) {
	def := cfg.DefaultPeriod()
	month, year := o.month, o.year
	if month == "" {
		month = def.Month
	}
	if year == "" {
		year = strconv.Itoa(def.Year)
	}
	p, err := cfg.PeriodRange().ParsePeriod(month, year)
	if err != nil {
		return models.Period{}, fmt.Errorf("invalid period: %w", err)
	}
	return p, nil
}

func (e *env) renderer() *invoice.Renderer {
	return invoice.NewRenderer(invoice.Options{
		Letterhead:            e.cfg.Company,
		MaxSignatureDimension: e.cfg.Export.MaxSignatureDimension,
	}, e.logger)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
