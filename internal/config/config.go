// Package config loads application settings from defaults, an optional YAML file,
// a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	GitHub   GitHubConfig
	Database DatabaseConfig
	HTTP     HTTPConfig
	Log      LogConfig
	Timezone string
	NodeID   int64
}

// GitHubConfig describes the repository being tracked and how to reach the API.
type GitHubConfig struct {
	Token          string
	Owner          string
	Repo           string
	BaseURL        string
	MaxRetries     int
	RetryBaseDelay time.Duration
	Timeout        time.Duration
}

// Configured reports whether token, owner and repository are all set.
func (g GitHubConfig) Configured() bool {
	return g.Token != "" && g.Owner != "" && g.Repo != ""
}

// FullName returns "owner/repo".
func (g GitHubConfig) FullName() string {
	return g.Owner + "/" + g.Repo
}

type DatabaseConfig struct {
	URL string
}

type HTTPConfig struct {
	Addr string
}

type LogConfig struct {
	Level string
}

// envBindings maps config keys to the environment variables operators already use.
var envBindings = map[string]string{
	"github.token":            "GITHUB_TOKEN",
	"github.owner":            "REPO_OWNER",
	"github.repo":             "REPO_NAME",
	"github.base_url":         "GITHUB_API_URL",
	"github.max_retries":      "GITHUB_MAX_RETRIES",
	"github.retry_base_delay": "GITHUB_RETRY_BASE_DELAY",
	"github.timeout":          "GITHUB_TIMEOUT",
	"database.url":            "DATABASE_URL",
	"http.addr":               "HTTP_ADDR",
	"log.level":               "LOG_LEVEL",
	"timezone":                "TIMEZONE",
	"node_id":                 "NODE_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.base_url", "https://api.github.com/")
	v.SetDefault("github.max_retries", 5)
	v.SetDefault("github.retry_base_delay", time.Second)
	v.SetDefault("github.timeout", 30*time.Second)
	v.SetDefault("database.url", "sqlite://employee_metrics.db")
	v.SetDefault("http.addr", ":5000")
	v.SetDefault("log.level", "info")
	v.SetDefault("timezone", "America/Mexico_City")
	v.SetDefault("node_id", 1)
}

// Load builds a Config. Precedence (low -> high): defaults, YAML file at path
// (skipped when empty), .env file, process environment.
func Load(path string) (Config, error) {
	// A missing .env is fine; the environment may be injected by the service manager.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	retryBaseDelay, err := duration(v, "github.retry_base_delay")
	if err != nil {
		return Config{}, err
	}
	timeout, err := duration(v, "github.timeout")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		GitHub: GitHubConfig{
			Token:          strings.TrimSpace(v.GetString("github.token")),
			Owner:          strings.TrimSpace(v.GetString("github.owner")),
			Repo:           strings.TrimSpace(v.GetString("github.repo")),
			BaseURL:        strings.TrimSpace(v.GetString("github.base_url")),
			MaxRetries:     v.GetInt("github.max_retries"),
			RetryBaseDelay: retryBaseDelay,
			Timeout:        timeout,
		},
		Database: DatabaseConfig{URL: strings.TrimSpace(v.GetString("database.url"))},
		HTTP:     HTTPConfig{Addr: v.GetString("http.addr")},
		Log:      LogConfig{Level: strings.ToLower(v.GetString("log.level"))},
		Timezone: v.GetString("timezone"),
		NodeID:   v.GetInt64("node_id"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that would make every command fail.
// Missing GitHub credentials are not an error here: updates fail closed instead.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database url must not be empty")
	}
	if c.GitHub.MaxRetries < 1 {
		return errors.New("github max retries must be at least 1")
	}
	if c.GitHub.RetryBaseDelay <= 0 {
		return errors.New("github retry base delay must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("node id %d out of range [0, 1023]", c.NodeID)
	}
	return nil
}

// duration reads a duration setting. Bare numbers are rejected: cast would read "2" as 2ns.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	switch raw := v.Get(key).(type) {
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return 0, fmt.Errorf("%s %q needs a unit such as \"s\" or \"ms\"", key, raw)
		}
	case int, int64, float64:
		return 0, fmt.Errorf("%s %v needs a unit such as \"s\" or \"ms\"", key, raw)
	}
	return v.GetDuration(key), nil
}
