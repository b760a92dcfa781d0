package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/filings-portal/internal/common"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	API         APIConfig            `toml:"api"`
	Dashboard   DashboardConfig      `toml:"dashboard"`
	MCP         MCPConfig            `toml:"mcp"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// APIConfig points at the filings backend.
type APIConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"` // Go duration, "0" disables the client timeout
}

// GetTimeout parses and returns the backend request timeout.
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DashboardConfig holds the selectable options and session limits.
type DashboardConfig struct {
	Tickers        []string `toml:"tickers"`
	Concepts       []string `toml:"concepts"`
	DefaultTicker  string   `toml:"default_ticker"`
	DefaultConcept string   `toml:"default_concept"`
	SessionTTL     string   `toml:"session_ttl"`
	MaxSessions    int      `toml:"max_sessions"`
	SettleWindow   string   `toml:"settle_window"`
}

// GetSessionTTL parses and returns how long an idle dashboard session lives.
func (c *DashboardConfig) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// GetSettleWindow returns how long a dashboard request waits for its fetches
// before responding with whatever state has landed.
func (c *DashboardConfig) GetSettleWindow() time.Duration {
	d, err := time.ParseDuration(c.SettleWindow)
	if err != nil || d <= 0 {
		return 1500 * time.Millisecond
	}
	return d
}

// MCPConfig toggles the /mcp endpoint.
type MCPConfig struct {
	Enabled bool `toml:"enabled"`
}

// IsDevMode returns true when running in the dev environment.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// BaseURL returns the portal's own base URL.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// Validate returns a list of configuration problems. Empty means valid.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if strings.TrimSpace(c.API.URL) == "" {
		issues = append(issues, "api.url is required (FILINGS_API_URL)")
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		issues = append(issues, fmt.Sprintf("api.timeout is not a valid duration: %q", c.API.Timeout))
	}
	if len(c.Dashboard.Tickers) == 0 {
		issues = append(issues, "dashboard.tickers must not be empty")
	} else if !slices.Contains(c.Dashboard.Tickers, c.Dashboard.DefaultTicker) {
		issues = append(issues, fmt.Sprintf("dashboard.default_ticker %q is not in dashboard.tickers", c.Dashboard.DefaultTicker))
	}
	if len(c.Dashboard.Concepts) == 0 {
		issues = append(issues, "dashboard.concepts must not be empty")
	} else if !slices.Contains(c.Dashboard.Concepts, c.Dashboard.DefaultConcept) {
		issues = append(issues, fmt.Sprintf("dashboard.default_concept %q is not in dashboard.concepts", c.Dashboard.DefaultConcept))
	}
	if c.Dashboard.MaxSessions <= 0 {
		issues = append(issues, "dashboard.max_sessions must be positive")
	}
	if d, err := time.ParseDuration(c.Dashboard.SettleWindow); err != nil || d <= 0 {
		issues = append(issues, fmt.Sprintf("dashboard.settle_window must be a positive duration: %q", c.Dashboard.SettleWindow))
	}
	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FILINGS_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FILINGS_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("FILINGS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FILINGS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if url := os.Getenv("FILINGS_API_URL"); url != "" {
		config.API.URL = url
	}
	if timeout := os.Getenv("FILINGS_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if ticker := os.Getenv("FILINGS_DEFAULT_TICKER"); ticker != "" {
		config.Dashboard.DefaultTicker = ticker
	}
	if settle := os.Getenv("FILINGS_SETTLE_WINDOW"); settle != "" {
		config.Dashboard.SettleWindow = settle
	}
	if mcp := os.Getenv("FILINGS_MCP_ENABLED"); mcp != "" {
		if b, err := strconv.ParseBool(mcp); err == nil {
			config.MCP.Enabled = b
		}
	}
	if level := os.Getenv("FILINGS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
