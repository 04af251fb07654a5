package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/varun160398/auto-invoice-portal/internal/api"
	"github.com/varun160398/auto-invoice-portal/internal/config"
	"github.com/varun160398/auto-invoice-portal/internal/export"
	"github.com/varun160398/auto-invoice-portal/internal/invoice"
	"github.com/varun160398/auto-invoice-portal/internal/jobs"
	"github.com/varun160398/auto-invoice-portal/internal/logging"
	"github.com/varun160398/auto-invoice-portal/internal/maintenance"
	"github.com/varun160398/auto-invoice-portal/internal/parser"
	"github.com/varun160398/auto-invoice-portal/internal/session"
	"github.com/varun160398/auto-invoice-portal/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const configFileName = "invoice-portal.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "invoice portal: %v\n", err)
		os.Exit(1)
	}
}

// configPath prefers INVOICE_CONFIG, then the file next to the executable.
func configPath() (string, error) {
	if p := os.Getenv("INVOICE_CONFIG"); p != "" {
		return p, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exePath), configFileName), nil
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	logger := logging.New(cfg.Logging, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileStore, err := storage.NewLocalStore(cfg.Storage.WorkbookDirectory)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	signatures, err := newSignatureStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize signature storage: %w", err)
	}
	rosters, err := session.NewRosterStore(cfg.Storage.RosterDirectory, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize roster store: %w", err)
	}

	sessionMgr := session.NewManager(rosters, cfg.DefaultPeriod(), logger)
	renderer := invoice.NewRenderer(invoice.Options{
		Letterhead:            cfg.Company,
		MaxSignatureDimension: cfg.Export.MaxSignatureDimension,
	}, logger)
	exporter := export.NewExporter(renderer, export.Options{Workers: cfg.Export.Workers}, logger)
	jobMgr := jobs.NewManager(exporter, logger)
	defer jobMgr.Close()

	scheduler, err := maintenance.New(sessionMgr, jobMgr, maintenance.Options{
		Schedule:      cfg.Security.CleanupSchedule,
		SessionMaxAge: time.Duration(cfg.Security.SessionTimeoutMinutes) * time.Minute,
		JobMaxAge:     time.Duration(cfg.Export.JobRetentionMinutes) * time.Minute,
	}, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	api.SetupMiddleware(e, logger, logger.GetLevel() <= zerolog.DebugLevel)

	if cfg.Logging.RequestLogging {
		e.Use(api.RequestLogger(logger))
	}
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error().Err(err).Bytes("stack", stack).Str("path", c.Path()).Msg("panic recovered")
			return err
		},
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     splitOrigins(cfg.Server.AllowOrigins),
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			ExposeHeaders:    []string{echo.HeaderContentDisposition, api.HeaderSignatureDiagnostic},
			AllowCredentials: true,
		}))
	}

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Config:     cfg,
		Store:      fileStore,
		Signatures: signatures,
		SessionMgr: sessionMgr,
		Registry:   parser.NewRegistry(cfg.Workbook.SheetName, cfg.AliasTable()),
		Renderer:   renderer,
		Exporter:   exporter,
		Jobs:       jobMgr,
		Logger:     logger,
		Version:    Version,
	}))

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info().
		Str("version", Version).
		Str("build", BuildTime).
		Str("config", path).
		Str("addr", cfg.GetServerAddr()).
		Str("data", cfg.Storage.DataDirectory).
		Str("signatures", cfg.Signatures.Backend).
		Msg("invoice portal starting")

	errCh := make(chan error, 1)
	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newSignatureStore(ctx context.Context, cfg *config.AppConfig) (storage.SignatureStore, error) {
	if cfg.Signatures.Backend == config.SignatureBackendS3 {
		return storage.NewS3SignatureStore(ctx, cfg.Signatures.S3Bucket, cfg.Signatures.S3Prefix, cfg.Signatures.S3Region)
	}
	return storage.NewLocalSignatureStore(cfg.Storage.SignatureDirectory)
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
