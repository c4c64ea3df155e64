package config

import (
	"os"
	"strings"
	"time"
)

// Config holds runtime settings for the TaskKeeper CLI.
//
// Fields:
//   - BaseURL: root URL of the task backend REST API.
//   - RequestTimeout: upper bound for every outgoing HTTP request.
//   - DataDir: directory holding the local SQLite database.
//   - LogLevel: slog level name (debug, info, warn, error).
//   - MetricsAddr: listen address of the /metrics endpoint; empty disables it.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DataDir        string
	LogLevel       string
	MetricsAddr    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:5000"
	c.RequestTimeout = 30 * time.Second
	c.DataDir = ".taskkeeper"
	c.LogLevel = "info"
}

// SecureTransport reports whether the backend is reached over HTTPS, which
// decides the Secure attribute of the session cookie.
func (c *Config) SecureTransport() bool {
	return strings.HasPrefix(strings.ToLower(c.BaseURL), "https://")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
