// Package config provides YAML-based configuration management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/parser"
)

// Signature storage backends.
const (
	SignatureBackendLocal = "local"
	SignatureBackendS3    = "s3"
)

// AppConfig represents the root configuration structure.
type AppConfig struct {
	Server     ServerConfig      `yaml:"server"`
	Storage    StorageConfig     `yaml:"storage"`
	Workbook   WorkbookConfig    `yaml:"workbook"`
	Company    models.Letterhead `yaml:"company"`
	Period     PeriodConfig      `yaml:"period"`
	Security   SecurityConfig    `yaml:"security"`
	Export     ExportConfig      `yaml:"export"`
	Signatures SignatureConfig   `yaml:"signatures"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	EnableCORS   bool   `yaml:"enableCors"`
	AllowOrigins string `yaml:"allowOrigins"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
}

// StorageConfig contains file storage settings.
type StorageConfig struct {
	DataDirectory      string `yaml:"dataDirectory"`
	WorkbookDirectory  string `yaml:"workbookDirectory"`
	SignatureDirectory string `yaml:"signatureDirectory"`
	RosterDirectory    string `yaml:"rosterDirectory"`
}

// WorkbookConfig controls how rosters are read.
type WorkbookConfig struct {
	SheetName         string   `yaml:"sheetName"`
	AllowedExtensions []string `yaml:"allowedExtensions"`
	// Aliases replaces the header list of the named fields. Fields not
	// listed keep their built-in aliases.
	Aliases []parser.ColumnAliases `yaml:"aliases,omitempty"`
}

// PeriodConfig holds the default period and the selectable year range.
type PeriodConfig struct {
	DefaultMonth string `yaml:"defaultMonth"`
	DefaultYear  int    `yaml:"defaultYear"`
	FirstYear    int    `yaml:"firstYear"`
	LastYear     int    `yaml:"lastYear"`
}

// SecurityConfig contains login and session settings.
type SecurityConfig struct {
	LoginID               string `yaml:"loginId"`
	Password              string `yaml:"password"`
	SessionCookie         string `yaml:"sessionCookie"`
	SecureCookie          bool   `yaml:"secureCookie"`
	SessionTimeoutMinutes int    `yaml:"sessionTimeoutMinutes"`
	CleanupSchedule       string `yaml:"cleanupSchedule"`
}

// ExportConfig tunes invoice rendering and bulk export.
type ExportConfig struct {
	Workers               int `yaml:"workers"`
	JobRetentionMinutes   int `yaml:"jobRetentionMinutes"`
	MaxSignatureDimension int `yaml:"maxSignatureDimension"`
}

// SignatureConfig selects where signature images are kept.
type SignatureConfig struct {
	Backend           string   `yaml:"backend"`
	AllowedExtensions []string `yaml:"allowedExtensions"`
	S3Bucket          string   `yaml:"s3Bucket,omitempty"`
	S3Prefix          string   `yaml:"s3Prefix,omitempty"`
	S3Region          string   `yaml:"s3Region,omitempty"`
}

// LoggingConfig controls the root logger.
type LoggingConfig struct {
	Level          string `yaml:"level"`
	Console        bool   `yaml:"console"`
	RequestLogging bool   `yaml:"requestLogging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			EnableCORS:   false,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "20M",
		},
		Storage: StorageConfig{
			DataDirectory:      "./data",
			WorkbookDirectory:  "./data/uploads/excel",
			SignatureDirectory: "./data/uploads/signatures",
			RosterDirectory:    "./data/rosters",
		},
		Workbook: WorkbookConfig{
			SheetName:         "List",
			AllowedExtensions: []string{".xlsx", ".xlsm", ".csv"},
		},
		Company: models.Letterhead{
			Name: "Nutritionalab Private Limited",
			AddressLines: []string{
				"A-2004, PHOENIX TOWER, SB MARG, DELISLE ROAD,",
				"LOWER PAREL WEST, MUMBAI - 400050",
				"PAN: AAFCN3553R",
			},
		},
		Period: PeriodConfig{
			DefaultMonth: models.DefaultPeriod.Month,
			DefaultYear:  models.DefaultPeriod.Year,
			FirstYear:    models.DefaultPeriodRange.FirstYear,
			LastYear:     models.DefaultPeriodRange.LastYear,
		},
		Security: SecurityConfig{
			LoginID:               "sa",
			Password:              "sa123",
			SessionCookie:         "invoice_session",
			SessionTimeoutMinutes: 24 * 60,
			CleanupSchedule:       "@every 5m",
		},
		Export: ExportConfig{
			Workers:               4,
			JobRetentionMinutes:   60,
			MaxSignatureDimension: 1200,
		},
		Signatures: SignatureConfig{
			Backend:           SignatureBackendLocal,
			AllowedExtensions: []string{".png", ".jpg", ".jpeg", ".webp"},
		},
		Logging: LoggingConfig{
			Level:          "info",
			Console:        true,
			RequestLogging: true,
		},
	}
}

// LoadDotEnv loads environment variables from the given files. Missing
// files are ignored and variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a YAML file, writing the defaults
// there first if it does not exist.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to a YAML file.
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Invoice portal configuration\n# This file is auto-generated on first run\n\n")
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, append(header, output...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values.
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR moves every directory that still sits under the old data root.
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		old := c.Storage.DataDirectory
		c.Storage.DataDirectory = dataDir
		for _, dir := range []*string{&c.Storage.WorkbookDirectory, &c.Storage.SignatureDirectory, &c.Storage.RosterDirectory} {
			if rel, err := filepath.Rel(old, *dir); err == nil && !strings.HasPrefix(rel, "..") {
				*dir = filepath.Join(dataDir, rel)
			}
		}
	}

	if v := os.Getenv("INVOICE_LOGIN_ID"); v != "" {
		c.Security.LoginID = v
	}
	if v := os.Getenv("INVOICE_PASSWORD"); v != "" {
		c.Security.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SIGNATURE_BACKEND"); v != "" {
		c.Signatures.Backend = v
	}
	if v := os.Getenv("SIGNATURE_S3_BUCKET"); v != "" {
		c.Signatures.S3Bucket = v
	}
	if v := os.Getenv("SIGNATURE_S3_PREFIX"); v != "" {
		c.Signatures.S3Prefix = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" && c.Signatures.S3Region == "" {
		c.Signatures.S3Region = v
	}
}

// resolvePaths converts relative paths to absolute based on config file location.
func (c *AppConfig) resolvePaths(configDir string) {
	for _, dir := range []*string{
		&c.Storage.DataDirectory,
		&c.Storage.WorkbookDirectory,
		&c.Storage.SignatureDirectory,
		&c.Storage.RosterDirectory,
	} {
		if !filepath.IsAbs(*dir) {
			*dir = filepath.Join(configDir, *dir)
		}
	}
}

// Validate checks values the rest of the program relies on.
func (c *AppConfig) Validate() error {
	var errs []error

	r := c.PeriodRange()
	if r.LastYear < r.FirstYear {
		errs = append(errs, fmt.Errorf("period: lastYear %d before firstYear %d", r.LastYear, r.FirstYear))
	} else if err := r.Validate(c.DefaultPeriod()); err != nil {
		errs = append(errs, fmt.Errorf("period: default: %w", err))
	}
	if c.Workbook.SheetName == "" {
		errs = append(errs, errors.New("workbook: sheetName is required"))
	}
	if c.Security.LoginID == "" || c.Security.Password == "" {
		errs = append(errs, errors.New("security: loginId and password are required"))
	}
	switch c.Signatures.Backend {
	case SignatureBackendLocal:
	case SignatureBackendS3:
		if c.Signatures.S3Bucket == "" {
			errs = append(errs, errors.New("signatures: s3Bucket is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("signatures: unknown backend %q", c.Signatures.Backend))
	}
	for _, a := range c.Workbook.Aliases {
		if len(a.Aliases) == 0 {
			errs = append(errs, fmt.Errorf("workbook: aliases for %q are empty", a.Field))
		}
		if _, ok := parser.DefaultAliases.Lookup(a.Field); !ok {
			errs = append(errs, fmt.Errorf("workbook: unknown field %q", a.Field))
		}
	}

	return errors.Join(errs...)
}

// DefaultPeriod is the period new sessions start with.
func (c *AppConfig) DefaultPeriod() models.Period {
	return models.Period{Month: c.Period.DefaultMonth, Year: c.Period.DefaultYear}
}

// PeriodRange is the selectable year range.
func (c *AppConfig) PeriodRange() models.PeriodRange {
	return models.PeriodRange{FirstYear: c.Period.FirstYear, LastYear: c.Period.LastYear}
}

// AliasTable returns the built-in aliases with configured overrides applied.
func (c *AppConfig) AliasTable() parser.AliasTable {
	table := make(parser.AliasTable, len(parser.DefaultAliases))
	copy(table, parser.DefaultAliases)
	for _, override := range c.Workbook.Aliases {
		for i := range table {
			if table[i].Field == override.Field {
				table[i].Aliases = override.Aliases
			}
		}
	}
	return table
}

// AllowsWorkbook reports whether a workbook file name has an accepted extension.
func (c *AppConfig) AllowsWorkbook(name string) bool {
	return hasExtension(name, c.Workbook.AllowedExtensions)
}

// AllowsSignature reports whether a signature file name has an accepted extension.
func (c *AppConfig) AllowsSignature(name string) bool {
	return hasExtension(name, c.Signatures.AllowedExtensions)
}

func hasExtension(name string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return false
}

// GetServerAddr returns the server bind address.
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.WorkbookDirectory,
		c.Storage.RosterDirectory,
	}
	if c.Signatures.Backend == SignatureBackendLocal {
		dirs = append(dirs, c.Storage.SignatureDirectory)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
