// Package config loads the adapter settings from environment variables
// (LEANIX_*), an optional YAML config file, and validates them.
package config

import (
	"flag"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffyaml"
	"go.uber.org/zap/zapcore"

	"github.com/robby/leanix-mcp/internal/lxerr"
)

// EnvVarPrefix prefixes every environment variable, e.g. LEANIX_API_TOKEN.
const EnvVarPrefix = "LEANIX"

// Defaults for optional settings.
const (
	DefaultPageSize = 50
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "info"
)

// Config contains the adapter settings.
type Config struct {
	Subdomain string        // Workspace subdomain: https://{subdomain}.leanix.net
	APIToken  string        // Technical user API token, exchanged for bearer tokens
	PageSize  int           // Default "first" for paginated fact sheet queries
	Timeout   time.Duration // HTTP timeout for token and GraphQL calls
	Workspace string        // Optional workspace name, used for web UI links
	LogLevel  string        // zap level name
}

// Load reads the configuration. Precedence: environment variables, then the
// YAML file at configFile (or LEANIX_CONFIG), then defaults.
// A missing config file is not an error. The result is validated.
func Load(configFile string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("leanix", flag.ContinueOnError)
	fs.StringVar(&cfg.Subdomain, "subdomain", "", "LeanIX workspace subdomain")
	fs.StringVar(&cfg.APIToken, "api-token", "", "LeanIX API token")
	fs.IntVar(&cfg.PageSize, "page-size", DefaultPageSize, "default page size for paginated queries")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "HTTP timeout")
	fs.StringVar(&cfg.Workspace, "workspace", "", "workspace name used for web UI links")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("config", "", "path to a YAML config file")

	var args []string
	if configFile != "" {
		args = []string{"-config", configFile}
	}

	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvVarPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parser),
		ff.WithAllowMissingConfigFile(true),
	)
	if err != nil {
		return cfg, lxerr.Configuration("config.Load", "could not parse configuration: %v", err)
	}

	cfg.Subdomain = strings.TrimSpace(cfg.Subdomain)
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)

	return cfg, cfg.Validate()
}

// Validate checks the required settings. All failures are configuration errors.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Subdomain) == "" {
		return lxerr.Configuration("config.Validate", "subdomain is required (set %s_SUBDOMAIN)", EnvVarPrefix)
	}
	if strings.TrimSpace(c.APIToken) == "" {
		return lxerr.Configuration("config.Validate", "API token is required (set %s_API_TOKEN)", EnvVarPrefix)
	}
	if c.PageSize <= 0 {
		return lxerr.Configuration("config.Validate", "page size must be positive, got %d", c.PageSize)
	}
	if c.Timeout < 0 {
		return lxerr.Configuration("config.Validate", "timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return lxerr.Configuration("config.Validate", "invalid log level %q", c.LogLevel)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
