package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
)

// jsonConfig is a DTO used only for unmarshalling. Empty values leave the
// current setting alone.
type jsonConfig struct {
	DatabasePath    string `json:"database_path"`
	ExportDir       string `json:"export_dir"`
	SafetyBackupDir string `json:"safety_backup_dir"`
	DeviceName      string `json:"device_name"`
	LogLevel        string `json:"log_level"`
	LogFormat       string `json:"log_format"`

	Remote *struct {
		Enabled      *bool    `json:"enabled"`
		Dir          string   `json:"dir"`
		Bucket       string   `json:"bucket"`
		Region       string   `json:"region"`
		BaseEndpoint string   `json:"endpoint"`
		UsePathStyle *bool    `json:"path_style"`
		AccessKey    string   `json:"access_key"`
		SecretKey    string   `json:"secret_key"`
		Prefix       string   `json:"prefix"`
		Timeout      Duration `json:"timeout"`
	} `json:"remote"`
}

func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.SafetyBackupDir, jc.SafetyBackupDir)
	setString(&cfg.DeviceName, jc.DeviceName)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if r := jc.Remote; r != nil {
		if r.Enabled != nil {
			cfg.Remote.Enabled = *r.Enabled
		}
		if r.UsePathStyle != nil {
			cfg.Remote.UsePathStyle = *r.UsePathStyle
		}
		setString(&cfg.Remote.Dir, r.Dir)
		setString(&cfg.Remote.Bucket, r.Bucket)
		setString(&cfg.Remote.Region, r.Region)
		setString(&cfg.Remote.BaseEndpoint, r.BaseEndpoint)
		setString(&cfg.Remote.AccessKey, r.AccessKey)
		setString(&cfg.Remote.SecretKey, r.SecretKey)
		setString(&cfg.Remote.Prefix, r.Prefix)
		if r.Timeout.Duration > 0 {
			cfg.Remote.Timeout = r.Timeout.Duration
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Duration accepts either a Go duration string ("30s") or integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	case nil:
		d.Duration = 0
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
