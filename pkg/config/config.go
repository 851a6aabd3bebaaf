package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/duration"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrNilConfig is returned when a nil config is passed to a function.
var ErrNilConfig = errors.New("nil config")

// envPrefix is the prefix of every environment variable read by the config.
const envPrefix = "SOFT_MEMBERS_"

// HTTPConfig is the HTTP configuration for the server.
type HTTPConfig struct {
	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// TLSKeyPath is the path to the TLS private key.
	TLSKeyPath string `env:"TLS_KEY_PATH" yaml:"tls_key_path"`

	// TLSCertPath is the path to the TLS certificate.
	TLSCertPath string `env:"TLS_CERT_PATH" yaml:"tls_cert_path"`

	// PublicURL is the public URL of the HTTP server.
	// It is used as the issuer of session tokens.
	PublicURL string `env:"PUBLIC_URL" yaml:"public_url"`
}

// StatsConfig is the configuration for the stats server.
type StatsConfig struct {
	// ListenAddr is the address on which the stats server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// DBConfig is the database connection configuration.
type DBConfig struct {
	// Driver is the driver for the database.
	// Valid values are "sqlite" and "postgres".
	Driver string `env:"DRIVER" yaml:"driver"`

	// DataSource is the database data source name.
	DataSource string `env:"DATA_SOURCE" yaml:"data_source"`
}

// AuthConfig is the session token configuration.
type AuthConfig struct {
	// JWTSecret is the HMAC secret used to sign session tokens.
	JWTSecret string `env:"JWT_SECRET" yaml:"jwt_secret"`

	// TokenExpiry is how long a session token is valid for, e.g. "7d" or "12h".
	TokenExpiry string `env:"TOKEN_EXPIRY" yaml:"token_expiry"`

	// BcryptCost is the cost used when hashing passwords.
	BcryptCost int `env:"BCRYPT_COST" yaml:"bcrypt_cost"`
}

// OrganizationConfig is the tenant configuration.
type OrganizationConfig struct {
	// Default is the slug or id of the organization used by unauthenticated
	// requests that don't name an organization, such as public registration.
	Default string `env:"DEFAULT" yaml:"default"`
}

// MembershipsConfig is the membership lifecycle configuration.
type MembershipsConfig struct {
	// EnforceMaxMembers rejects new linked members once a membership has
	// as many as its type's max_members.
	EnforceMaxMembers bool `env:"ENFORCE_MAX_MEMBERS" yaml:"enforce_max_members"`

	// ExpiringDays is the default window of the expiring memberships report.
	ExpiringDays int `env:"EXPIRING_DAYS" yaml:"expiring_days"`

	// PageLimit is the maximum page size of paginated listings.
	PageLimit int `env:"PAGE_LIMIT" yaml:"page_limit"`
}

// JobsConfig is the configuration for cron jobs.
type JobsConfig struct {
	// ExpireMemberships is the schedule of the membership expiry job.
	ExpireMemberships string `env:"EXPIRE_MEMBERSHIPS" yaml:"expire_memberships"`
}

// Config is the configuration for Soft Members.
type Config struct {
	// Name is the name of the server.
	Name string `env:"NAME" yaml:"name"`

	// HTTP is the configuration for the HTTP server.
	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	// Stats is the configuration for the stats server.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// DB is the database configuration.
	DB DBConfig `envPrefix:"DB_" yaml:"db"`

	// Auth is the session token configuration.
	Auth AuthConfig `envPrefix:"AUTH_" yaml:"auth"`

	// Organization is the tenant configuration.
	Organization OrganizationConfig `envPrefix:"ORGANIZATION_" yaml:"organization"`

	// Memberships is the membership lifecycle configuration.
	Memberships MembershipsConfig `envPrefix:"MEMBERSHIPS_" yaml:"memberships"`

	// Jobs is the configuration for cron jobs.
	Jobs JobsConfig `envPrefix:"JOBS_" yaml:"jobs"`

	// DataPath is the path to the directory where Soft Members will store its data.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	envs := []string{}
	if c == nil {
		return envs
	}

	envs = append(envs, []string{
		fmt.Sprintf("%sDATA_PATH=%s", envPrefix, c.DataPath),
		fmt.Sprintf("%sNAME=%s", envPrefix, c.Name),
		fmt.Sprintf("%sHTTP_LISTEN_ADDR=%s", envPrefix, c.HTTP.ListenAddr),
		fmt.Sprintf("%sHTTP_TLS_KEY_PATH=%s", envPrefix, c.HTTP.TLSKeyPath),
		fmt.Sprintf("%sHTTP_TLS_CERT_PATH=%s", envPrefix, c.HTTP.TLSCertPath),
		fmt.Sprintf("%sHTTP_PUBLIC_URL=%s", envPrefix, c.HTTP.PublicURL),
		fmt.Sprintf("%sSTATS_LISTEN_ADDR=%s", envPrefix, c.Stats.ListenAddr),
		fmt.Sprintf("%sLOG_FORMAT=%s", envPrefix, c.Log.Format),
		fmt.Sprintf("%sLOG_TIME_FORMAT=%s", envPrefix, c.Log.TimeFormat),
		fmt.Sprintf("%sDB_DRIVER=%s", envPrefix, c.DB.Driver),
		fmt.Sprintf("%sDB_DATA_SOURCE=%s", envPrefix, c.DB.DataSource),
		fmt.Sprintf("%sAUTH_TOKEN_EXPIRY=%s", envPrefix, c.Auth.TokenExpiry),
		fmt.Sprintf("%sAUTH_BCRYPT_COST=%d", envPrefix, c.Auth.BcryptCost),
		fmt.Sprintf("%sORGANIZATION_DEFAULT=%s", envPrefix, c.Organization.Default),
		fmt.Sprintf("%sMEMBERSHIPS_ENFORCE_MAX_MEMBERS=%t", envPrefix, c.Memberships.EnforceMaxMembers),
		fmt.Sprintf("%sMEMBERSHIPS_EXPIRING_DAYS=%d", envPrefix, c.Memberships.ExpiringDays),
		fmt.Sprintf("%sMEMBERSHIPS_PAGE_LIMIT=%d", envPrefix, c.Memberships.PageLimit),
		fmt.Sprintf("%sJOBS_EXPIRE_MEMBERSHIPS=%s", envPrefix, c.Jobs.ExpireMemberships),
	}...)

	return envs
}

// IsDebug returns true if the server is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv(envPrefix + "DEBUG"))
	return debug
}

// IsVerbose returns true if the server is running in verbose mode.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv(envPrefix + "VERBOSE"))
	return IsDebug() && verbose
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return cfg.Validate()
}

// ParseFile parses the config from the default file path.
// This also calls Validate() on the config.
func (c *Config) ParseFile() error {
	return parseFile(c, c.ConfigPath())
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: envPrefix,
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	return cfg.Validate()
}

// ParseEnv parses the config from the environment variables.
// This also calls Validate() on the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the default file path and environment variables.
// This also calls Validate() on the config.
func (c *Config) Parse() error {
	if err := c.ParseFile(); err != nil {
		return err
	}

	return c.ParseEnv()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o600) // nolint: errcheck, gosec
}

// WriteConfig writes the configuration to the default file.
func (c *Config) WriteConfig() error {
	return writeConfig(c, c.ConfigPath())
}

// DefaultDataPath returns the path to the data directory.
// It uses the SOFT_MEMBERS_DATA_PATH environment variable if set, otherwise it
// uses "data".
func DefaultDataPath() string {
	dp := os.Getenv(envPrefix + "DATA_PATH")
	if dp == "" {
		dp = "data"
	}

	return dp
}

// ConfigPath returns the path to the config file.
// SOFT_MEMBERS_CONFIG_LOCATION takes precedence when it points to an
// existing file.
func (c *Config) ConfigPath() string { // nolint:revive
	if path := os.Getenv(envPrefix + "CONFIG_LOCATION"); exist(path) {
		return path
	}

	return filepath.Join(c.DataPath, "config.yaml")
}

func exist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Exist returns true if the config file exists.
func (c *Config) Exist() bool {
	return exist(c.ConfigPath())
}

// TokenExpiry returns the parsed session token lifetime.
func (c *Config) TokenExpiry() time.Duration {
	d, err := duration.Parse(c.Auth.TokenExpiry)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}

	return d
}

// DefaultConfig returns the default Config. All the path values are relative
// to the data directory.
// Use Validate() to validate the config and ensure absolute paths.
func DefaultConfig() *Config {
	return &Config{
		Name:     "Soft Members",
		DataPath: DefaultDataPath(),
		HTTP: HTTPConfig{
			ListenAddr: ":23240",
			PublicURL:  "http://localhost:23240",
		},
		Stats: StatsConfig{
			ListenAddr: "localhost:23241",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		DB: DBConfig{
			Driver: "sqlite",
			DataSource: "soft-members.db" +
				"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		},
		Auth: AuthConfig{
			TokenExpiry: "7d",
			BcryptCost:  10,
		},
		Memberships: MembershipsConfig{
			ExpiringDays: 30,
			PageLimit:    100,
		},
		Jobs: JobsConfig{
			ExpireMemberships: "@daily",
		},
	}
}

// Validate validates the configuration.
// It updates the configuration with absolute paths.
func (c *Config) Validate() error {
	// Use absolute paths
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	c.HTTP.PublicURL = strings.TrimSuffix(c.HTTP.PublicURL, "/")

	if c.HTTP.TLSKeyPath != "" && !filepath.IsAbs(c.HTTP.TLSKeyPath) {
		c.HTTP.TLSKeyPath = filepath.Join(c.DataPath, c.HTTP.TLSKeyPath)
	}

	if c.HTTP.TLSCertPath != "" && !filepath.IsAbs(c.HTTP.TLSCertPath) {
		c.HTTP.TLSCertPath = filepath.Join(c.DataPath, c.HTTP.TLSCertPath)
	}

	if strings.HasPrefix(c.DB.Driver, "sqlite") && c.DB.DataSource != "" && !filepath.IsAbs(c.DB.DataSource) {
		c.DB.DataSource = filepath.Join(c.DataPath, c.DB.DataSource)
	}

	if c.Auth.TokenExpiry != "" {
		if _, err := duration.Parse(c.Auth.TokenExpiry); err != nil {
			return fmt.Errorf("invalid auth token expiry %q: %w", c.Auth.TokenExpiry, err)
		}
	}

	if c.Memberships.ExpiringDays < 0 {
		return fmt.Errorf("invalid expiring days %d", c.Memberships.ExpiringDays)
	}

	if c.Memberships.PageLimit < 0 {
		return fmt.Errorf("invalid page limit %d", c.Memberships.PageLimit)
	}

	return nil
}

// ContextKey is the context key for the config.
var ContextKey = struct{ string }{"config"}

// WithContext returns a new context with the configuration attached.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ContextKey, cfg)
}

// FromContext returns the configuration from the context.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(ContextKey).(*Config); ok {
		return c
	}

	return nil
}
