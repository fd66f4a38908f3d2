// Package config loads pagedb settings from YAML.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/pagedb"
	"github.com/hupe1980/pagedb/blobstore"
	"github.com/hupe1980/pagedb/blobstore/minio"
	"github.com/hupe1980/pagedb/blobstore/s3"
	"github.com/hupe1980/pagedb/codec"
	"github.com/hupe1980/pagedb/compress"
	"github.com/hupe1980/pagedb/internal/pager"
)

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// BackupConfig selects where backups and restores go.
type BackupConfig struct {
	Kind        string `yaml:"kind"` // local, memory, s3 or minio
	Dir         string `yaml:"dir"`
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	Endpoint    string `yaml:"endpoint"`
	Region      string `yaml:"region"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Secure      bool   `yaml:"secure"`
	Compression string `yaml:"compression"`
}

// Config is the top-level configuration.
type Config struct {
	Path     string        `yaml:"path"`
	MinPages int           `yaml:"min_pages"`
	Codec    string        `yaml:"codec"`
	Grow     bool          `yaml:"grow"`
	Logging  LoggingConfig `yaml:"logging"`
	Backup   BackupConfig  `yaml:"backup"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Path:     "pagedb.db",
		MinPages: pager.MinPages,
		Codec:    codec.Default.Name(),
		Grow:     true,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Backup: BackupConfig{
			Kind:        "local",
			Dir:         "./backups",
			Compression: "none",
		},
	}
}

// Load reads configuration from an io.Reader. Fields missing from the
// input keep their defaults.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()

	// If the reader is nil, it's like an empty file, return defaults.
	if r == nil {
		return cfg, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config data: %w", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}

	// Unmarshal YAML into the config struct, overwriting defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from a YAML file by path.
// A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Load(nil)
		}
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	return Load(file)
}

// Validate checks the names used in the configuration.
func (c *Config) Validate() error {
	if _, ok := codec.ByName(c.Codec); !ok {
		return fmt.Errorf("config: unknown codec %q", c.Codec)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Logging.Format)
	}
	if _, err := compress.ParseType(c.Backup.Compression); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Backup.Kind {
	case "", "local", "memory", "s3", "minio":
	default:
		return fmt.Errorf("config: unknown backup kind %q", c.Backup.Kind)
	}
	return nil
}

// ParseLevel parses a slog level name. The empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}

// Logger builds the logger described by the logging section.
func (c *Config) Logger() *pagedb.Logger {
	level, err := ParseLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if c.Logging.Format == "json" {
		return pagedb.NewJSONLogger(level)
	}
	return pagedb.NewTextLogger(level)
}

// Options translates the configuration into pagedb options.
func (c *Config) Options() []pagedb.Option {
	opts := []pagedb.Option{
		pagedb.WithMinPages(c.MinPages),
		pagedb.WithGrowth(c.Grow),
		pagedb.WithLogger(c.Logger()),
	}
	if cd, ok := codec.ByName(c.Codec); ok {
		opts = append(opts, pagedb.WithCodec(cd))
	}
	return opts
}

// Compression returns the backup compression type.
func (c *Config) Compression() compress.Type {
	t, _ := compress.ParseType(c.Backup.Compression)
	return t
}

// Store builds the backup store described by the backup section.
func (c *Config) Store(ctx context.Context) (blobstore.Store, error) {
	b := c.Backup
	switch b.Kind {
	case "", "local":
		return blobstore.NewLocalStore(b.Dir), nil
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		if b.Bucket == "" {
			return nil, fmt.Errorf("config: backup bucket required for s3")
		}
		return s3.New(ctx, b.Bucket, b.Prefix, b.Region)
	case "minio":
		if b.Bucket == "" || b.Endpoint == "" {
			return nil, fmt.Errorf("config: backup endpoint and bucket required for minio")
		}
		return minio.Dial(b.Endpoint, b.AccessKey, b.SecretKey, b.Secure, b.Bucket, b.Prefix)
	default:
		return nil, fmt.Errorf("config: unknown backup kind %q", b.Kind)
	}
}
