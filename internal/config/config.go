package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "EVTRACKER"

// Config holds runtime settings.
type Config struct {
	DatabasePath string `envconfig:"DB_PATH"`
	// ExportDir receives plain exports. It is scratch space; files there are
	// meant to be moved elsewhere by the user.
	ExportDir string `envconfig:"EXPORT_DIR"`
	// SafetyBackupDir holds the snapshots taken before every import.
	SafetyBackupDir string `envconfig:"SAFETY_BACKUP_DIR"`
	DeviceName      string `envconfig:"DEVICE_NAME"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	LogFormat       string `envconfig:"LOG_FORMAT"`

	Remote RemoteConfig `envconfig:"REMOTE"`
}

// RemoteConfig describes where remote backups go: a bucket on S3 or an
// S3-compatible service, or, when Dir is set, a directory replicated by
// some other tool.
type RemoteConfig struct {
	Enabled bool   `envconfig:"ENABLED"`
	Dir     string `envconfig:"DIR"`
	Bucket  string `envconfig:"BUCKET"`
	Region  string `envconfig:"REGION"`
	// BaseEndpoint points the client at an S3-compatible service (MinIO etc).
	BaseEndpoint string        `envconfig:"ENDPOINT"`
	UsePathStyle bool          `envconfig:"PATH_STYLE"`
	AccessKey    string        `envconfig:"ACCESS_KEY"`
	SecretKey    string        `envconfig:"SECRET_KEY"`
	Prefix       string        `envconfig:"PREFIX"`
	Timeout      time.Duration `envconfig:"TIMEOUT"`
}

// LoadOptions names the optional files Load reads.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
}

// LoadDefaults populates c with defaults rooted in the user's config dir.
func (c *Config) LoadDefaults() {
	base := "."
	if dir, err := os.UserConfigDir(); err == nil {
		base = filepath.Join(dir, "evtracker")
	}

	c.DatabasePath = filepath.Join(base, "evtracker.db")
	c.ExportDir = filepath.Join(os.TempDir(), "evtracker-exports")
	c.SafetyBackupDir = filepath.Join(base, "safety-backups")
	c.DeviceName = "unknown"
	if host, err := os.Hostname(); err == nil && host != "" {
		c.DeviceName = host
	}
	c.LogLevel = "info"
	c.LogFormat = "text"

	c.Remote = RemoteConfig{
		Region:  "us-east-1",
		Prefix:  "evtracker/backups/",
		Timeout: 30 * time.Second,
	}
}

// Load builds a Config from defaults, the JSON file, the .env file and the
// environment.
func Load(opts LoadOptions) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if opts.ConfigFile != "" {
		if err := parseJSON(cfg, opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	if opts.EnvFile != "" {
		err := godotenv.Load(opts.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", opts.EnvFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return cfg, nil
}

// Validate reports settings that make the CLI unusable.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("database path is empty")
	}
	if c.SafetyBackupDir == "" {
		return errors.New("safety backup directory is empty")
	}
	if c.Remote.Enabled && c.Remote.Bucket == "" && c.Remote.Dir == "" {
		return errors.New("remote backups enabled without a bucket or directory")
	}
	return nil
}
