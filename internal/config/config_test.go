package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.github.com/", cfg.GitHub.BaseURL)
	assert.Equal(t, 5, cfg.GitHub.MaxRetries)
	assert.Equal(t, time.Second, cfg.GitHub.RetryBaseDelay)
	assert.Equal(t, 30*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, "sqlite://employee_metrics.db", cfg.Database.URL)
	assert.Equal(t, ":5000", cfg.HTTP.Addr)
	assert.Equal(t, "America/Mexico_City", cfg.Timezone)
	assert.False(t, cfg.GitHub.Configured())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("GITHUB_TOKEN", " secret ")
	t.Setenv("REPO_OWNER", "acme")
	t.Setenv("REPO_NAME", "widgets")
	t.Setenv("GITHUB_RETRY_BASE_DELAY", "10ms")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.GitHub.Configured())
	assert.Equal(t, "secret", cfg.GitHub.Token)
	assert.Equal(t, "acme/widgets", cfg.GitHub.FullName())
	assert.Equal(t, 10*time.Millisecond, cfg.GitHub.RetryBaseDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	content := "github:\n  owner: from-file\n  repo: repo-file\nhttp:\n  addr: \":8080\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("REPO_NAME", "repo-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.GitHub.Owner)
	assert.Equal(t, "repo-env", cfg.GitHub.Repo)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REPO_OWNER=dotenv-owner\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("REPO_OWNER") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-owner", cfg.GitHub.Owner)
}

func TestValidate(t *testing.T) {
	base := Config{
		Database: DatabaseConfig{URL: "sqlite://x.db"},
		Timezone: "UTC",
		GitHub:   GitHubConfig{MaxRetries: 5, RetryBaseDelay: time.Second},
	}
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty database url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.GitHub.MaxRetries = -1 }, wantErr: true},
		{name: "zero retries", mutate: func(c *Config) { c.GitHub.MaxRetries = 0 }, wantErr: true},
		{name: "zero retry delay", mutate: func(c *Config) { c.GitHub.RetryBaseDelay = 0 }, wantErr: true},
		{name: "unknown timezone", mutate: func(c *Config) { c.Timezone = "Nowhere/Land" }, wantErr: true},
		{name: "node id too large", mutate: func(c *Config) { c.NodeID = 4096 }, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_DurationsNeedUnits(t *testing.T) {
	testCases := []struct {
		name    string
		env     string
		value   string
		wantErr bool
	}{
		{name: "retry delay without unit", env: "GITHUB_RETRY_BASE_DELAY", value: "2", wantErr: true},
		{name: "timeout without unit", env: "GITHUB_TIMEOUT", value: "30", wantErr: true},
		{name: "retry delay in seconds", env: "GITHUB_RETRY_BASE_DELAY", value: "2s"},
		{name: "timeout in milliseconds", env: "GITHUB_TIMEOUT", value: "1500ms"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			t.Setenv(tc.env, tc.value)

			_, err := Load("")
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "needs a unit")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad_ZeroRetriesRejected(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("GITHUB_MAX_RETRIES", "0")

	_, err := Load("")
	assert.ErrorContains(t, err, "at least 1")
}
