// Package config loads importer settings from a YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/withObsrvr/oracle-persist/internal/checkpoint"
	"github.com/withObsrvr/oracle-persist/internal/logging"
	"github.com/withObsrvr/oracle-persist/internal/retry"
	"github.com/withObsrvr/oracle-persist/internal/source"
	"github.com/withObsrvr/oracle-persist/internal/storage"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Database   DatabaseConfig    `yaml:"database"`
	Source     SourceConfig      `yaml:"source"`
	Import     ImportConfig      `yaml:"import"`
	Logging    LoggingConfig     `yaml:"logging"`
	Metrics    MetricsConfig     `yaml:"metrics"`
	Retry      retry.Config      `yaml:"retry"`
	Checkpoint checkpoint.Config `yaml:"checkpoint"`
}

type DatabaseConfig struct {
	Driver         string        `yaml:"driver"`
	URL            string        `yaml:"url"`
	MaxConns       int32         `yaml:"max_conns"`
	MaxParams      int           `yaml:"max_params"` // 0 uses the dialect limit
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type SourceConfig struct {
	Mode      string `yaml:"mode"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	LocalPath string `yaml:"local_path"`
}

type ImportConfig struct {
	FileType     string        `yaml:"file_type"`
	After        string        `yaml:"after"`  // RFC3339, inclusive
	Before       string        `yaml:"before"` // RFC3339, exclusive
	Follow       bool          `yaml:"follow"` // keep polling for new files
	PollInterval time.Duration `yaml:"poll_interval"`
}

type LoggingConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:         storage.DriverPostgres,
			MaxConns:       5,
			ConnectTimeout: 10 * time.Second,
		},
		Source: SourceConfig{
			Mode:      "s3",
			LocalPath: "./data",
		},
		Import: ImportConfig{
			FileType:     "mobile_reward_share",
			PollInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
		Metrics: MetricsConfig{
			Address:   ":9090",
			Namespace: "oracle_persist",
		},
		Checkpoint: checkpoint.Config{
			Dir: "./checkpoints",
		},
		Retry: retry.DefaultConfig(),
	}
}

// Load reads path over the defaults, when path is set, then applies ORACLE_*
// environment overrides. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Driver, "ORACLE_DB_DRIVER")
	setString(&c.Database.URL, "ORACLE_DB_URL")
	setString(&c.Source.Mode, "ORACLE_SOURCE_MODE")
	setString(&c.Source.Bucket, "ORACLE_BUCKET")
	setString(&c.Source.Prefix, "ORACLE_PREFIX")
	setString(&c.Source.Region, "ORACLE_REGION")
	setString(&c.Source.Endpoint, "ORACLE_ENDPOINT")
	setString(&c.Source.LocalPath, "ORACLE_LOCAL_PATH")
	setString(&c.Import.FileType, "ORACLE_FILE_TYPE")
	setString(&c.Import.After, "ORACLE_AFTER")
	setString(&c.Import.Before, "ORACLE_BEFORE")
	setString(&c.Logging.Format, "ORACLE_LOG_FORMAT")
	setString(&c.Logging.Level, "ORACLE_LOG_LEVEL")
	setString(&c.Metrics.Address, "ORACLE_METRICS_ADDRESS")

	if v := os.Getenv("ORACLE_MAX_PARAMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ORACLE_MAX_PARAMS: %w", err)
		}
		c.Database.MaxParams = n
	}
	if v := os.Getenv("ORACLE_RETRY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ORACLE_RETRY_MAX_ATTEMPTS: %w", err)
		}
		c.Retry.MaxAttempts = n
	}
	if v := os.Getenv("ORACLE_METRICS_ENABLED"); v != "" {
		c.Metrics.Enabled = v == "true"
	}
	if v := os.Getenv("ORACLE_CHECKPOINT_DIR"); v != "" {
		c.Checkpoint.Enabled = true
		c.Checkpoint.Dir = v
	}
	return nil
}

func setString(dst *string, key string) {
	*dst = getenvDefault(key, *dst)
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// Window parses the import time window. Zero times are open bounds.
func (c Config) Window() (after, before time.Time, err error) {
	if after, err = parseTime(c.Import.After); err != nil {
		return after, before, fmt.Errorf("%w: after: %v", ErrInvalidConfig, err)
	}
	if before, err = parseTime(c.Import.Before); err != nil {
		return after, before, fmt.Errorf("%w: before: %v", ErrInvalidConfig, err)
	}
	return after, before, nil
}

// naiveLayout is a timestamp without a zone, read as UTC.
const naiveLayout = "2006-01-02T15:04:05"

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		var naiveErr error
		if t, naiveErr = time.Parse(naiveLayout, v); naiveErr != nil {
			return time.Time{}, err
		}
	}
	return t.UTC(), nil
}

// Validate reports the first problem found.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case storage.DriverPostgres, storage.DriverSQLite:
	default:
		return fmt.Errorf("%w: database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("%w: database url is required", ErrInvalidConfig)
	}
	if c.Database.MaxParams < 0 {
		return fmt.Errorf("%w: max_params must not be negative", ErrInvalidConfig)
	}

	switch c.Source.Mode {
	case "s3", "gcs":
		if c.Source.Bucket == "" {
			return fmt.Errorf("%w: bucket is required for %s source", ErrInvalidConfig, c.Source.Mode)
		}
	case "local":
		if c.Source.LocalPath == "" {
			return fmt.Errorf("%w: local_path is required for local source", ErrInvalidConfig)
		}
	case "mem":
	default:
		return fmt.Errorf("%w: source mode %q", ErrInvalidConfig, c.Source.Mode)
	}

	if c.Import.FileType == "" {
		return fmt.Errorf("%w: file_type is required", ErrInvalidConfig)
	}

	after, before, err := c.Window()
	if err != nil {
		return err
	}
	if !after.IsZero() && !before.IsZero() && !after.Before(before) {
		return fmt.Errorf("%w: after %s is not before %s", ErrInvalidConfig,
			after.Format(time.RFC3339), before.Format(time.RFC3339))
	}

	if c.Import.Follow && c.Import.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	}
	if c.Checkpoint.Enabled && c.Checkpoint.Dir == "" {
		return fmt.Errorf("%w: checkpoint dir is required", ErrInvalidConfig)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry max_attempts must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// StoreConfig returns the storage connection settings.
func (c Config) StoreConfig() storage.Config {
	return storage.Config{
		Driver:         c.Database.Driver,
		URL:            c.Database.URL,
		MaxConns:       c.Database.MaxConns,
		ConnectTimeout: c.Database.ConnectTimeout,
	}
}

// SourceConfig returns the file source settings.
func (c Config) SourceConfig() source.Config {
	return source.Config{
		Mode:      c.Source.Mode,
		Bucket:    c.Source.Bucket,
		Prefix:    c.Source.Prefix,
		Region:    c.Source.Region,
		Endpoint:  c.Source.Endpoint,
		LocalPath: c.Source.LocalPath,
	}
}

// LogConfig returns the log handler settings.
func (c Config) LogConfig() logging.Config {
	return logging.Config{Format: c.Logging.Format, Level: c.Logging.Level}
}
