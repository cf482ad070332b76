package app

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL             string `yaml:"base_url"`
	RequestTimeoutSecs  int    `yaml:"request_timeout_seconds"`
	PollIntervalSecs    int    `yaml:"poll_interval_seconds"`
	DataDir             string `yaml:"data_dir"`
	LogFile             string `yaml:"log_file"`
	Theme               string `yaml:"theme"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:            "http://localhost:8000/api",
		RequestTimeoutSecs: 30,
		PollIntervalSecs:   2,
		DataDir:            DefaultDataDir(),
	}
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSecs) * time.Second
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	// Environment wins over file values.
	if v := os.Getenv("DOCCHAT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("DOCCHAT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DOCCHAT_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000/api"
	}
	if cfg.RequestTimeoutSecs <= 0 {
		cfg.RequestTimeoutSecs = 30
	}
	if cfg.PollIntervalSecs <= 0 {
		cfg.PollIntervalSecs = 2
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "docchat", "config.yml")
}

// DefaultDataDir prefers the XDG data dir and falls back to ~/.local/share.
func DefaultDataDir() string {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, "docchat")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "docchat")
	}
	return filepath.Join(os.TempDir(), "docchat")
}
