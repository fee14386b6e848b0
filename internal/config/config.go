package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Defaults
const (
	DefaultOrg     = "department-of-veterans-affairs"
	DefaultAPIURL  = "https://api.github.com/"
	DefaultRetries = 3
)

// Environment variables that override file configuration
const (
	EnvConfig  = "ARM_CONFIG"
	EnvOrg     = "ARM_ORG"
	EnvAPIURL  = "ARM_API_URL"
	EnvRetries = "ARM_RETRIES"
	EnvLogFile = "ARM_LOG_FILE"
)

// AppConfig holds GitHub App credentials
type AppConfig struct {
	AppID          int64  `yaml:"app_id"`
	InstallationID int64  `yaml:"installation_id"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	PrivateKeyPath string `yaml:"private_key_path"`
}

// Configured reports whether enough app credentials are present to mint installation tokens
func (a AppConfig) Configured() bool {
	return a.AppID != 0 && a.InstallationID != 0 && a.PrivateKeyPath != ""
}

// Config represents the tool configuration
type Config struct {
	Org     string    `yaml:"org"`
	APIURL  string    `yaml:"api_url"`
	WebURL  string    `yaml:"web_url"`
	Retries int       `yaml:"retries"`
	LogFile string    `yaml:"log_file"`
	App     AppConfig `yaml:"app"`
}

// Overrides are values supplied on the command line. Empty fields are ignored.
type Overrides struct {
	ConfigPath string
	Org        string
	APIURL     string
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Org:     DefaultOrg,
		APIURL:  DefaultAPIURL,
		Retries: DefaultRetries,
		LogFile: DefaultLogFilePath(),
	}
}

// DefaultLogFilePath returns ~/.actions-runner-manager/logs/actions-runner-manager.log
func DefaultLogFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "actions-runner-manager.log"
	}
	return filepath.Join(homeDir, ".actions-runner-manager", "logs", "actions-runner-manager.log")
}

// DefaultConfigPath returns ~/.config/actions-runner-manager/config.yaml
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "actions-runner-manager", "config.yaml")
}

// Load builds the configuration from defaults, the config file, the environment
// and the given overrides, in increasing order of precedence.
func Load(overrides Overrides) (*Config, error) {
	cfg := Default()

	path, explicit := overrides.ConfigPath, overrides.ConfigPath != ""
	if !explicit {
		if envPath := os.Getenv(EnvConfig); envPath != "" {
			path, explicit = envPath, true
		} else {
			path = DefaultConfigPath()
		}
	}

	// Only the default config file is optional
	if path != "" {
		if err := cfg.readFile(path); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if overrides.Org != "" {
		cfg.Org = overrides.Org
	}
	if overrides.APIURL != "" {
		cfg.APIURL = overrides.APIURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if org := os.Getenv(EnvOrg); org != "" {
		c.Org = org
	}
	if apiURL := os.Getenv(EnvAPIURL); apiURL != "" {
		c.APIURL = apiURL
	}
	if logFile := os.Getenv(EnvLogFile); logFile != "" {
		c.LogFile = logFile
	}
	if retriesStr := os.Getenv(EnvRetries); retriesStr != "" {
		retries, err := strconv.Atoi(retriesStr)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvRetries, retriesStr, err)
		}
		c.Retries = retries
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Org) == "" {
		return fmt.Errorf("organization must not be empty")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute URL", c.APIURL)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	return nil
}

// BaseURL returns the API URL with a trailing slash, as go-github requires
func (c *Config) BaseURL() (*url.URL, error) {
	raw := c.APIURL
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return url.Parse(raw)
}

// HTMLURL returns the web URL repositories are browsed at.
// For api.github.com this is https://github.com; for GitHub Enterprise
// the /api/v3 suffix is removed from the API URL.
func (c *Config) HTMLURL() string {
	if c.WebURL != "" {
		return strings.TrimSuffix(c.WebURL, "/")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return "https://github.com"
	}
	if u.Host == "api.github.com" {
		return "https://github.com"
	}
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), "/api/v3")
	u.RawQuery = ""
	return strings.TrimSuffix(u.String(), "/")
}

// RepoURL returns the browsable URL of a repository in the configured organization
func (c *Config) RepoURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", c.HTMLURL(), c.Org, name)
}
