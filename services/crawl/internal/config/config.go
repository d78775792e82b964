package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port              string `yaml:"port"`
	LogLevel          string `yaml:"logLevel"`
	DatabaseURL       string `yaml:"databaseURL"`
	RedisAddr         string `yaml:"redisAddr"`
	RedisPassword     string `yaml:"redisPassword"`
	CrawlSchedule     string `yaml:"crawlSchedule"`
	CrawlDelaySeconds int    `yaml:"crawlDelaySeconds"`
	RenderWaitSeconds int    `yaml:"renderWaitSeconds"`
	NavTimeoutSeconds int    `yaml:"navTimeoutSeconds"`
	LockTTLSeconds    int    `yaml:"lockTtlSeconds"`
	DisableHeadless   bool   `yaml:"disableHeadless"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("CRAWL_SCHEDULE"); v != "" {
		cfg.CrawlSchedule = v
	}
	if v := os.Getenv("CRAWL_DELAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CrawlDelaySeconds = n
		}
	}
	if v := os.Getenv("CRAWL_RENDER_WAIT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RenderWaitSeconds = n
		}
	}
	if v := os.Getenv("CRAWL_NAV_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NavTimeoutSeconds = n
		}
	}
	if v := os.Getenv("CRAWL_DISABLE_HEADLESS"); v == "true" {
		cfg.DisableHeadless = true
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.CrawlDelaySeconds < 0 {
		return errors.New("config: crawlDelaySeconds must not be negative")
	}
	return nil
}
