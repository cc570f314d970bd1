// Package config loads forcelayout run configuration from TOML or YAML
// files and environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, then command-line flags (applied by the CLI).
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
	"github.com/matzehuels/forcelayout/pkg/optimize"
	"github.com/matzehuels/forcelayout/pkg/topology"
)

// Environment variables read by Load.
const (
	EnvRedisURL = "FORCELAYOUT_REDIS_URL"
	EnvCacheDir = "FORCELAYOUT_CACHE_DIR"
	EnvLogLevel = "FORCELAYOUT_LOG_LEVEL"
	EnvAddr     = "FORCELAYOUT_ADDR"
)

// Config contains all forcelayout configuration settings.
type Config struct {
	// Simulation holds the parameters of single runs and the frame, forces
	// and threshold used by sweeps. Its seed also seeds sweeps.
	Simulation fdp.Parameters `json:"simulation" toml:"simulation" yaml:"simulation"`

	// Topology selects the generated graph when no graph file is given.
	Topology TopologyConfig `json:"topology" toml:"topology" yaml:"topology"`

	// Sweep is the cooling-rate range of the optimizer.
	Sweep optimize.Range `json:"sweep" toml:"sweep" yaml:"sweep"`

	Cache   CacheConfig   `json:"cache" toml:"cache" yaml:"cache"`
	Server  ServerConfig  `json:"server" toml:"server" yaml:"server"`
	Logging LoggingConfig `json:"logging" toml:"logging" yaml:"logging"`
}

// TopologyConfig names a generated graph family and its size.
type TopologyConfig struct {
	Kind string `json:"kind" toml:"kind" yaml:"kind"`
	Size int    `json:"size" toml:"size" yaml:"size"`
}

// CacheConfig configures result caching.
type CacheConfig struct {
	// Disabled turns caching off entirely.
	Disabled bool `json:"disabled" toml:"disabled" yaml:"disabled"`

	// Dir overrides the file cache directory.
	Dir string `json:"dir,omitempty" toml:"dir" yaml:"dir,omitempty"`

	// RedisURL selects the Redis cache. Supports ${VAR} expansion.
	RedisURL string `json:"redis_url,omitempty" toml:"redis_url" yaml:"redis_url,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" toml:"addr" yaml:"addr"`

	// RequestTimeout bounds a single layout or sweep request.
	RequestTimeout time.Duration `json:"request_timeout" toml:"request_timeout" yaml:"request_timeout"`

	// MaxSampleSize bounds the sample size a sweep request may ask for.
	MaxSampleSize int `json:"max_sample_size" toml:"max_sample_size" yaml:"max_sample_size"`
}

// LoggingConfig configures log verbosity.
type LoggingConfig struct {
	// Level is one of "debug", "info" (default), "warn" or "error".
	Level string `json:"level" toml:"level" yaml:"level"`
}

// Default returns a Config with the interactive defaults.
func Default() *Config {
	return &Config{
		Simulation: fdp.DefaultParameters(),
		Topology:   TopologyConfig{Kind: string(topology.Ring), Size: 6},
		Sweep:      optimize.DefaultRange(),
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 5 * time.Minute,
			MaxSampleSize:  100,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load returns the defaults overlaid with the file at path (if path is not
// empty) and the environment. The file format follows the extension:
// .toml, .yaml or .yml. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg)
	cfg.Cache.RedisURL = expandEnvVars(cfg.Cache.RedisURL)
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path).WithField("config")
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path).WithField("config")
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path).WithField("config")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return errors.Field(errors.ErrCodeInvalidConfig, undecoded[0].String(), "unknown key in %s", path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path).WithField("config")
		}
	default:
		return errors.Field(errors.ErrCodeInvalidConfig, "config",
			"unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}
	return nil
}

// Validate checks every section and reports the first invalid field.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := c.Sweep.Validate(); err != nil {
		return err
	}
	if c.Topology.Kind != "" {
		if _, err := topology.ParseKind(c.Topology.Kind); err != nil {
			return err
		}
	}
	if c.Server.RequestTimeout < 0 {
		return errors.Field(errors.ErrCodeInvalidConfig, "request_timeout",
			"must be >= 0, got %v", c.Server.RequestTimeout)
	}
	if c.Server.MaxSampleSize < 0 {
		return errors.Field(errors.ErrCodeInvalidConfig, "max_sample_size",
			"must be >= 0, got %d", c.Server.MaxSampleSize)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.Field(errors.ErrCodeInvalidConfig, "level",
			"invalid log level %q (valid: debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvRedisURL); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
