// Package config loads mcpkg settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"github.com/z58362026/mcp-packages/internal/clock"
	"github.com/z58362026/mcp-packages/internal/feishu"
)

const (
	keyFeishuAppID     = "feishu.app_id"
	keyFeishuAppSecret = "feishu.app_secret"
	keyFeishuBaseURL   = "feishu.base_url"
	keyGitHubToken     = "github.token"
	keyTimezone        = "timezone"
	keyHTTPTimeout     = "http_timeout"

	// DefaultHTTPTimeout bounds every outbound request.
	DefaultHTTPTimeout = 30 * time.Second
)

var (
	ErrFeishuCredentials = errors.New("FEISHU_APP_ID and FEISHU_APP_SECRET are not set")
	ErrGitHubToken       = errors.New("GITHUB_TOKEN (or GH_TOKEN) is not set")
)

// Config holds credentials and defaults for the collaborators.
type Config struct {
	FeishuAppID     string
	FeishuAppSecret string
	FeishuBaseURL   string
	GitHubToken     string
	Timezone        string
	HTTPTimeout     time.Duration

	// File is the config file that was read, empty when none was found.
	File string
}

// Load reads the config file at path, or searches .mcpkg/config.yaml in the
// project root and $HOME/.config/mcpkg/config.yaml when path is empty. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault(keyFeishuBaseURL, feishu.DefaultBaseURL)
	v.SetDefault(keyTimezone, clock.DefaultTimezone)
	v.SetDefault(keyHTTPTimeout, DefaultHTTPTimeout)

	bindings := map[string][]string{
		keyFeishuAppID:     {"FEISHU_APP_ID"},
		keyFeishuAppSecret: {"FEISHU_APP_SECRET"},
		keyFeishuBaseURL:   {"FEISHU_BASE_URL"},
		keyGitHubToken:     {"GITHUB_TOKEN", "GH_TOKEN"},
		keyTimezone:        {"LOCAL_TIMEZONE"},
		keyHTTPTimeout:     {"MCPKG_HTTP_TIMEOUT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := ProjectDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "mcpkg"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		FeishuAppID:     v.GetString(keyFeishuAppID),
		FeishuAppSecret: v.GetString(keyFeishuAppSecret),
		FeishuBaseURL:   v.GetString(keyFeishuBaseURL),
		GitHubToken:     v.GetString(keyGitHubToken),
		Timezone:        v.GetString(keyTimezone),
		HTTPTimeout:     v.GetDuration(keyHTTPTimeout),
		File:            v.ConfigFileUsed(),
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid http_timeout %q: must be positive", v.GetString(keyHTTPTimeout))
	}
	return cfg, nil
}

// HTTPClient returns a client carrying the configured timeout.
func (c *Config) HTTPClient() *http.Client {
	return &http.Client{Timeout: c.HTTPTimeout}
}

// ValidateFeishu reports whether the Feishu tools can be served.
func (c *Config) ValidateFeishu() error {
	if c.FeishuAppID == "" || c.FeishuAppSecret == "" {
		return ErrFeishuCredentials
	}
	return nil
}

// ValidateGitHub reports whether the GitHub tools can be served.
func (c *Config) ValidateGitHub() error {
	if c.GitHubToken == "" {
		return ErrGitHubToken
	}
	return nil
}
