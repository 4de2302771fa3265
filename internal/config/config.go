package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Worker   WorkerConfig   `yaml:"worker"`
	Download DownloadConfig `yaml:"download"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"9614"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"5m"`
}

// StorageConfig holds filesystem storage configuration.
type StorageConfig struct {
	OutboxPath  string `yaml:"outbox_path" envconfig:"STORAGE_OUTBOX_PATH" default:"/data/outbox"`
	TempPath    string `yaml:"temp_path" envconfig:"STORAGE_TEMP_PATH" default:"/data/temp"`
	CookiesPath string `yaml:"cookies_path" envconfig:"STORAGE_COOKIES_PATH" default:"/data/cookies"`
	HistoryDB   string `yaml:"history_db" envconfig:"STORAGE_HISTORY_DB" default:"/data/history.db"`
}

// WorkerConfig holds worker pool configuration.
type WorkerConfig struct {
	Count        int           `yaml:"count" envconfig:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"WORKER_POLL_INTERVAL" default:"2s"`
}

// DownloadConfig holds media download configuration.
type DownloadConfig struct {
	MaxFileSize    int64         `yaml:"max_file_size" envconfig:"DOWNLOAD_MAX_FILE_SIZE" default:"52428800"` // 50MB
	ExtractTimeout time.Duration `yaml:"extract_timeout" envconfig:"DOWNLOAD_EXTRACT_TIMEOUT" default:"60s"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout" envconfig:"DOWNLOAD_FETCH_TIMEOUT" default:"10m"`
	PageSize       int           `yaml:"page_size" envconfig:"DOWNLOAD_PAGE_SIZE" default:"5"`
	HistoryLimit   int           `yaml:"history_limit" envconfig:"DOWNLOAD_HISTORY_LIMIT" default:"20"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Server.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	if c.Storage.OutboxPath == "" {
		return fmt.Errorf("STORAGE_OUTBOX_PATH is required")
	}
	if c.Storage.TempPath == "" {
		return fmt.Errorf("STORAGE_TEMP_PATH is required")
	}
	if c.Download.MaxFileSize <= 0 {
		return fmt.Errorf("DOWNLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Download.PageSize <= 0 {
		return fmt.Errorf("DOWNLOAD_PAGE_SIZE must be positive")
	}
	if c.Worker.Count <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
