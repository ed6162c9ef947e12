// Package config provides configuration loading and management for the sync server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/composable-com/ct-connect-akeneo/internal/telemetry"
)

// StorageType names a backend for the job records
type StorageType string

const (
	// StorageTypeFile keeps records as JSON files in a local directory
	StorageTypeFile StorageType = "file"

	// StorageTypeSQLite keeps records in a SQLite database file
	StorageTypeSQLite StorageType = "sqlite"

	// StorageTypePostgres keeps records in PostgreSQL
	StorageTypePostgres StorageType = "postgres"

	// StorageTypeCustomObjects keeps records as commerce custom objects, where
	// the admin UI reads them
	StorageTypeCustomObjects StorageType = "customObjects"
)

const (
	// DataDirName is the directory under the XDG data home holding the
	// records of the file and SQLite backends by default
	DataDirName = "akeneo-sync"

	// DefaultSQLiteFile is the SQLite database file name used by default
	DefaultSQLiteFile = "akeneo-sync.db"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "AKENEO_SYNC"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path      string
	dotEnv    []string
	useDotEnv bool
	viper     *viper.Viper
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// WithDotEnv loads the given .env files into the environment before the
// overrides are read. Missing files are ignored. Without paths ".env" is used.
func WithDotEnv(paths ...string) Option {
	return func(cfg *loaderConfig) error {
		cfg.useDotEnv = true
		cfg.dotEnv = paths
		return nil
	}
}

// WithViper reads overrides from v instead of a fresh instance
func WithViper(v *viper.Viper) Option {
	return func(cfg *loaderConfig) error {
		if v == nil {
			return fmt.Errorf("viper instance is required")
		}
		cfg.viper = v
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// ServiceURL is the URL the connector is reachable at, recorded by register
	ServiceURL string `yaml:"serviceURL,omitempty"`

	Akeneo        AkeneoConfig        `yaml:"akeneo"`
	Commercetools CommercetoolsConfig `yaml:"commercetools"`
	Storage       *StorageConfig      `yaml:"storage,omitempty"`
	Sync          *SyncConfig         `yaml:"sync,omitempty"`
	Coordinator   *CoordinatorConfig  `yaml:"coordinator,omitempty"`
	Telemetry     *telemetry.Config   `yaml:"telemetry,omitempty"`
}

// AkeneoConfig defines the PIM connection
type AkeneoConfig struct {
	BaseURL  string `yaml:"baseURL"`
	ClientID string `yaml:"clientID"`

	// ClientSecret may be given inline, through ClientSecretFile, or through
	// the AKENEO_SYNC_AKENEO_CLIENTSECRET environment variable
	ClientSecret     string `yaml:"clientSecret,omitempty"`
	ClientSecretFile string `yaml:"clientSecretFile,omitempty"`

	Username     string `yaml:"username"`
	Password     string `yaml:"password,omitempty"`
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Timeout bounds every request (e.g., "30s")
	Timeout string `yaml:"timeout,omitempty"`
}

// CommercetoolsConfig defines the commerce API connection
type CommercetoolsConfig struct {
	// Region derives APIURL and AuthURL when they are not set
	// (e.g., "europe-west1.gcp")
	Region  string `yaml:"region,omitempty"`
	APIURL  string `yaml:"apiURL,omitempty"`
	AuthURL string `yaml:"authURL,omitempty"`

	ProjectKey       string   `yaml:"projectKey"`
	ClientID         string   `yaml:"clientID"`
	ClientSecret     string   `yaml:"clientSecret,omitempty"`
	ClientSecretFile string   `yaml:"clientSecretFile,omitempty"`
	Scopes           []string `yaml:"scopes,omitempty"`

	Timeout string `yaml:"timeout,omitempty"`
}

// StorageConfig selects and configures the record backend
type StorageConfig struct {
	Type     StorageType        `yaml:"type"`
	File     *FileStorageConfig `yaml:"file,omitempty"`
	SQLite   *SQLiteConfig      `yaml:"sqlite,omitempty"`
	Database *DatabaseConfig    `yaml:"database,omitempty"`
}

// FileStorageConfig defines the file backend
type FileStorageConfig struct {
	BaseDir string `yaml:"baseDir"`
}

// SQLiteConfig defines the SQLite backend
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// This is the recommended approach for production deployments
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// SyncConfig tunes the sync runs. Zero values use the engine defaults.
type SyncConfig struct {
	PageSize      int    `yaml:"pageSize,omitempty"`
	TimeBudget    string `yaml:"timeBudget,omitempty"`
	MaxFailed     int    `yaml:"maxFailed,omitempty"`
	Concurrency   int    `yaml:"concurrency,omitempty"`
	DeltaLookback string `yaml:"deltaLookback,omitempty"`
	Completeness  string `yaml:"completeness,omitempty"`

	// SetPublishedToModified leaves updated products with staged changes.
	// Only an explicit false publishes them again.
	SetPublishedToModified *bool `yaml:"setPublishedToModified,omitempty"`
}

// CoordinatorConfig defines the background trigger
type CoordinatorConfig struct {
	// Enabled defaults to true
	Enabled *bool `yaml:"enabled,omitempty"`

	// Interval between ticks (e.g., "5m")
	Interval string `yaml:"interval,omitempty"`

	// Kinds triggered on every tick, "delta" and "full" by default
	Kinds []string `yaml:"kinds,omitempty"`
}

// GetClientSecret returns the PIM client secret, from the file when one is set
func (a *AkeneoConfig) GetClientSecret() (string, error) {
	return readSecret(a.ClientSecretFile, a.ClientSecret, "client secret")
}

// GetPassword returns the PIM user password, from the file when one is set
func (a *AkeneoConfig) GetPassword() (string, error) {
	return readSecret(a.PasswordFile, a.Password, "password")
}

// GetTimeout returns the request timeout, zero when unset
func (a *AkeneoConfig) GetTimeout() time.Duration {
	return parseDurationOrZero(a.Timeout)
}

// GetClientSecret returns the commerce client secret, from the file when one is set
func (c *CommercetoolsConfig) GetClientSecret() (string, error) {
	return readSecret(c.ClientSecretFile, c.ClientSecret, "client secret")
}

// GetAPIURL returns the API URL, derived from the region when not set
func (c *CommercetoolsConfig) GetAPIURL() string {
	if c.APIURL == "" && c.Region != "" {
		return fmt.Sprintf("https://api.%s.commercetools.com", c.Region)
	}
	return c.APIURL
}

// GetAuthURL returns the auth URL, derived from the region when not set
func (c *CommercetoolsConfig) GetAuthURL() string {
	if c.AuthURL == "" && c.Region != "" {
		return fmt.Sprintf("https://auth.%s.commercetools.com", c.Region)
	}
	return c.AuthURL
}

// GetScopes returns the requested scopes, the whole project by default
func (c *CommercetoolsConfig) GetScopes() []string {
	if len(c.Scopes) == 0 && c.ProjectKey != "" {
		return []string{"manage_project:" + c.ProjectKey}
	}
	return c.Scopes
}

// GetTimeout returns the request timeout, zero when unset
func (c *CommercetoolsConfig) GetTimeout() time.Duration {
	return parseDurationOrZero(c.Timeout)
}

// readSecret reads file when set, trimming whitespace, and returns inline otherwise
func readSecret(file, inline, what string) (string, error) {
	if file == "" {
		return inline, nil
	}

	// Use filepath.Clean to prevent path traversal attacks
	data, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return "", fmt.Errorf("failed to read %s from file %s: %w", what, file, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func parseDurationOrZero(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from AKENEO_SYNC_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		return readSecret(d.PasswordFile, "", "password")
	}

	if envPassword := os.Getenv(EnvPrefix + "_DATABASE_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable",
		EnvPrefix,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// GetConnMaxLifetime returns the connection lifetime, zero when unset
func (d *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return parseDurationOrZero(d.ConnMaxLifetime)
}

// GetStorageType returns the configured backend, the file backend by default
func (c *Config) GetStorageType() StorageType {
	if c.Storage == nil || c.Storage.Type == "" {
		return StorageTypeFile
	}
	return c.Storage.Type
}

// DefaultDataDir is the akeneo-sync directory under $XDG_DATA_HOME.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, DataDirName)
}

// GetFileStorageBaseDir returns the file backend directory
func (c *Config) GetFileStorageBaseDir() string {
	if c.Storage == nil || c.Storage.File == nil || c.Storage.File.BaseDir == "" {
		return DefaultDataDir()
	}
	return c.Storage.File.BaseDir
}

// GetSQLitePath returns the SQLite database file
func (c *Config) GetSQLitePath() string {
	if c.Storage == nil || c.Storage.SQLite == nil || c.Storage.SQLite.Path == "" {
		return filepath.Join(DefaultDataDir(), DefaultSQLiteFile)
	}
	return c.Storage.SQLite.Path
}

// GetSync returns the sync section, empty when absent
func (c *Config) GetSync() SyncConfig {
	if c.Sync == nil {
		return SyncConfig{}
	}
	return *c.Sync
}

// IsCoordinatorEnabled reports whether the background trigger runs
func (c *Config) IsCoordinatorEnabled() bool {
	if c.Coordinator == nil || c.Coordinator.Enabled == nil {
		return true
	}
	return *c.Coordinator.Enabled
}

// GetCoordinatorInterval returns the raw tick interval
func (c *Config) GetCoordinatorInterval() string {
	if c.Coordinator == nil {
		return ""
	}
	return c.Coordinator.Interval
}

// GetCoordinatorKinds returns the kinds triggered on every tick
func (c *Config) GetCoordinatorKinds() []string {
	if c.Coordinator == nil || len(c.Coordinator.Kinds) == 0 {
		return []string{"delta", "full"}
	}
	return c.Coordinator.Kinds
}

// LoadConfig loads the YAML file, when one is given, and applies the
// environment overrides on top of it
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.useDotEnv {
		if err := loadDotEnv(loaderCfg.dotEnv); err != nil {
			return nil, err
		}
	}

	var config Config
	if loaderCfg.path != "" {
		// Read the entire file into memory
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Parse YAML content
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	v := loaderCfg.viper
	if v == nil {
		v = viper.New()
	}
	if err := applyEnv(v, &config); err != nil {
		return nil, err
	}

	// Validate the config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func loadDotEnv(paths []string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		// Load never overrides variables that are already set
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Validate performs validation on the configuration. Every problem is reported.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error
	if c.Akeneo.BaseURL == "" {
		errs = append(errs, errors.New("akeneo.baseURL is required"))
	}
	if c.Akeneo.ClientID == "" || c.Akeneo.Username == "" {
		errs = append(errs, errors.New("akeneo.clientID and akeneo.username are required"))
	}
	errs = append(errs, validateDuration("akeneo.timeout", c.Akeneo.Timeout))

	if c.Commercetools.ProjectKey == "" {
		errs = append(errs, errors.New("commercetools.projectKey is required"))
	}
	if c.Commercetools.ClientID == "" {
		errs = append(errs, errors.New("commercetools.clientID is required"))
	}
	if c.Commercetools.GetAPIURL() == "" || c.Commercetools.GetAuthURL() == "" {
		errs = append(errs, errors.New("commercetools.region or commercetools.apiURL and authURL are required"))
	}
	errs = append(errs, validateDuration("commercetools.timeout", c.Commercetools.Timeout))

	errs = append(errs, c.validateStorage())

	if s := c.Sync; s != nil {
		if s.PageSize < 0 || s.MaxFailed < 0 || s.Concurrency < 0 {
			errs = append(errs, errors.New("sync.pageSize, sync.maxFailed and sync.concurrency cannot be negative"))
		}
		errs = append(errs,
			validateDuration("sync.timeBudget", s.TimeBudget),
			validateDuration("sync.deltaLookback", s.DeltaLookback))
	}

	if co := c.Coordinator; co != nil {
		errs = append(errs, validateDuration("coordinator.interval", co.Interval))
		for _, k := range co.Kinds {
			if k != "full" && k != "delta" {
				errs = append(errs, fmt.Errorf("coordinator.kinds: unknown kind %q", k))
			}
		}
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) validateStorage() error {
	switch c.GetStorageType() {
	case StorageTypeFile, StorageTypeSQLite, StorageTypeCustomObjects:
		return nil
	case StorageTypePostgres:
		db := c.Storage.Database
		if db == nil {
			return errors.New("storage.database is required for postgres storage")
		}
		if db.Host == "" || db.Database == "" || db.User == "" {
			return errors.New("storage.database.host, database and user are required")
		}
		return validateDuration("storage.database.connMaxLifetime", db.ConnMaxLifetime)
	default:
		return fmt.Errorf("storage.type must be one of file, sqlite, postgres or customObjects, got %q", c.Storage.Type)
	}
}

func validateDuration(field, raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := time.ParseDuration(raw); err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '30s', '5m'): %w", field, err)
	}
	return nil
}
