// Package config resolves mealweek runtime settings from defaults, an
// optional YAML file and MEALWEEK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mealweek/pkg/domain"
)

// Environment variable names.
const (
	EnvConfig         = "MEALWEEK_CONFIG"
	EnvStorageDriver  = "MEALWEEK_STORAGE_DRIVER"
	EnvSQLitePath     = "MEALWEEK_SQLITE_PATH"
	EnvPostgresDSN    = "MEALWEEK_POSTGRES_DSN"
	EnvBlobDriver     = "MEALWEEK_BLOB_DRIVER"
	EnvBlobFSRoot     = "MEALWEEK_BLOB_FS_ROOT"
	EnvS3Bucket       = "MEALWEEK_BLOB_S3_BUCKET"
	EnvS3Region       = "MEALWEEK_BLOB_S3_REGION"
	EnvS3Endpoint     = "MEALWEEK_BLOB_S3_ENDPOINT"
	EnvS3PathStyle    = "MEALWEEK_BLOB_S3_PATH_STYLE"
	EnvLogLevel       = "MEALWEEK_LOG_LEVEL"
	EnvMetricsAddress = "MEALWEEK_METRICS_ADDR"
)

// Defaults.
const (
	DefaultStorageDriver = "sqlite"
	DefaultSQLitePath    = "mealweek.db"
	DefaultBlobDriver    = "fs"
	DefaultBlobFSRoot    = "./mealweek-archive"
	DefaultLogLevel      = "info"
)

// Storage selects the durable backend for meals and recipes.
type Storage struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path,omitempty"`
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`
}

// S3 configures the S3 archive driver.
type S3 struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// Archive configures the blob store that holds backups and exports.
type Archive struct {
	Driver string `yaml:"driver"`
	FSRoot string `yaml:"fs_root,omitempty"`
	S3     S3     `yaml:"s3,omitempty"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Storage     Storage `yaml:"storage"`
	Archive     Archive `yaml:"archive"`
	LogLevel    string  `yaml:"log_level"`
	MetricsAddr string  `yaml:"metrics_addr,omitempty"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage:  Storage{Driver: DefaultStorageDriver, SQLitePath: DefaultSQLitePath},
		Archive:  Archive{Driver: DefaultBlobDriver, FSRoot: DefaultBlobFSRoot},
		LogLevel: DefaultLogLevel,
	}
}

// Load resolves configuration. An explicit path must exist; the path from
// MEALWEEK_CONFIG is optional.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	required := path != ""
	if !required {
		path, _ = lookup(EnvConfig)
	}
	if path != "" {
		if err := cfg.readFile(path, required); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(lookup)
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		c.Path = path
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Path = path
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&c.Storage.Driver, EnvStorageDriver)
	set(&c.Storage.SQLitePath, EnvSQLitePath)
	set(&c.Storage.PostgresDSN, EnvPostgresDSN)
	set(&c.Archive.Driver, EnvBlobDriver)
	set(&c.Archive.FSRoot, EnvBlobFSRoot)
	set(&c.Archive.S3.Bucket, EnvS3Bucket)
	set(&c.Archive.S3.Region, EnvS3Region)
	set(&c.Archive.S3.Endpoint, EnvS3Endpoint)
	set(&c.LogLevel, EnvLogLevel)
	set(&c.MetricsAddr, EnvMetricsAddress)
	if v, ok := lookup(EnvS3PathStyle); ok && v != "" {
		c.Archive.S3.PathStyle = strings.EqualFold(v, "true") || v == "1"
	}
}

func (c *Config) normalize() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	c.Archive.Driver = strings.ToLower(strings.TrimSpace(c.Archive.Driver))
	if c.Archive.Driver == "" {
		c.Archive.Driver = DefaultBlobDriver
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks driver names and the settings each driver needs.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Storage.PostgresDSN) == "" {
			return &domain.ValidationError{Field: "storage.postgres_dsn", Message: "required when storage driver is postgres"}
		}
	default:
		return &domain.ValidationError{Field: "storage.driver", Message: fmt.Sprintf("unknown storage driver %q", c.Storage.Driver)}
	}
	switch c.Archive.Driver {
	case "fs", "memory":
	case "s3":
		if strings.TrimSpace(c.Archive.S3.Bucket) == "" {
			return &domain.ValidationError{Field: "archive.s3.bucket", Message: "required when archive driver is s3"}
		}
	default:
		return &domain.ValidationError{Field: "archive.driver", Message: fmt.Sprintf("unknown archive driver %q", c.Archive.Driver)}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, &domain.ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown log level %q", c.LogLevel), Err: err}
	}
	return level, nil
}
