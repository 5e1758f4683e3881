// Package config provides YAML and environment configuration for running
// devpulse as a standalone binary.
//
// Every setting has a default, so a config file is optional. Example:
//
//	title: Acme
//	subtitle: Local stack
//	port: 3000
//	poll_interval: 10s
//
//	api:
//	  base_url: ${API_URL:-http://localhost:8080}
//	  timeout: 5s
//	  headers:
//	    Authorization: Bearer ${API_TOKEN}
//	  version_field: build.version
//
//	links:
//	  - name: Backend
//	    url: http://localhost:8080
//	  - name: Database
//	    url: localhost:5432
//
// Environment variables override the file: DEVPULSE_API_URL (or API_URL),
// DEVPULSE_PORT, DEVPULSE_POLL_INTERVAL, DEVPULSE_TIMEOUT and DEVPULSE_TITLE.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/devpulse"
)

const (
	defaultPort = 3000

	// minPollInterval keeps a typo like "10ms" from hammering the backend.
	minPollInterval = time.Second

	minTimeout = 100 * time.Millisecond
)

// Config is the root configuration structure.
//
// Use [Load] or [Parse] to create one; both apply defaults and environment
// overrides and validate the result.
type Config struct {
	// Title is the page heading. Defaults to "devpulse".
	Title string `yaml:"title"`

	// Subtitle is the line under the heading.
	// Defaults to "Development Environment".
	Subtitle string `yaml:"subtitle"`

	// Port is the landing page port. Defaults to 3000.
	Port int `yaml:"port"`

	// PollInterval is the time between poll cycles, e.g. "10s".
	// Defaults to 10s; must be at least 1s.
	PollInterval Duration `yaml:"poll_interval"`

	// API describes the backend to probe.
	API APIConfig `yaml:"api"`

	// Links are service addresses shown under the status widget.
	Links []LinkConfig `yaml:"links"`
}

// APIConfig describes the backend to probe.
type APIConfig struct {
	// BaseURL is the backend root, e.g. http://localhost:8080.
	// Supports ${VAR} and ${VAR:-default}.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each probe. Defaults to 5s.
	Timeout Duration `yaml:"timeout"`

	HealthPath  string `yaml:"health_path"`
	DBCheckPath string `yaml:"db_check_path"`
	InfoPath    string `yaml:"info_path"`

	// Headers are sent with every probe. Values support env substitution.
	Headers map[string]string `yaml:"headers"`

	// VersionField and EnvField are dot paths into the info call's JSON
	// body. They default to "version" and "env".
	VersionField string `yaml:"version_field"`
	EnvField     string `yaml:"env_field"`
}

// LinkConfig is a named service address.
type LinkConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part, present when a default was given
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file. An empty path yields the
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, then applies environment overrides
// and defaults, expands ${VAR} references and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.applyEnv(newEnv()); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newEnv returns a viper instance bound to the supported environment variables.
func newEnv() *viper.Viper {
	v := viper.New()
	_ = v.BindEnv("api_url", "DEVPULSE_API_URL", "API_URL")
	_ = v.BindEnv("port", "DEVPULSE_PORT")
	_ = v.BindEnv("poll_interval", "DEVPULSE_POLL_INTERVAL")
	_ = v.BindEnv("timeout", "DEVPULSE_TIMEOUT")
	_ = v.BindEnv("title", "DEVPULSE_TITLE")
	return v
}

// applyEnv overrides file values with the environment.
func (c *Config) applyEnv(v *viper.Viper) error {
	if v.IsSet("api_url") {
		c.API.BaseURL = v.GetString("api_url")
	}
	if v.IsSet("title") {
		c.Title = v.GetString("title")
	}
	if v.IsSet("port") {
		port, err := strconv.Atoi(strings.TrimSpace(v.GetString("port")))
		if err != nil {
			return fmt.Errorf("DEVPULSE_PORT: invalid port %q", v.GetString("port"))
		}
		c.Port = port
	}
	if v.IsSet("poll_interval") {
		d, err := time.ParseDuration(v.GetString("poll_interval"))
		if err != nil {
			return fmt.Errorf("DEVPULSE_POLL_INTERVAL: %w", err)
		}
		c.PollInterval = Duration(d)
	}
	if v.IsSet("timeout") {
		d, err := time.ParseDuration(v.GetString("timeout"))
		if err != nil {
			return fmt.Errorf("DEVPULSE_TIMEOUT: %w", err)
		}
		c.API.Timeout = Duration(d)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(devpulse.DefaultPollInterval)
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = devpulse.DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = Duration(devpulse.DefaultTimeout)
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.API.Timeout.Duration() < minTimeout {
		return fmt.Errorf("api.timeout must be at least %s, got %s", minTimeout, c.API.Timeout.Duration())
	}

	expanded, err := expandEnvVars(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	c.API.BaseURL = expanded
	if err := validateHTTPURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}

	for k, v := range c.API.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("api.headers[%s]: %w", k, err)
		}
		c.API.Headers[k] = expanded
	}

	for i := range c.Links {
		l := &c.Links[i]
		if l.Name == "" {
			return fmt.Errorf("links[%d]: name is required", i)
		}
		if l.URL == "" {
			return fmt.Errorf("links[%d] (%s): url is required", i, l.Name)
		}
		expanded, err := expandEnvVars(l.URL)
		if err != nil {
			return fmt.Errorf("links[%d] (%s): url: %w", i, l.Name, err)
		}
		l.URL = expanded
	}

	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url must have a host")
	}
	return nil
}
