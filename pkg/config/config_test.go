package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simulation.CoolingRate != fdp.DefaultCoolingRate {
		t.Errorf("CoolingRate = %g, want default", cfg.Simulation.CoolingRate)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "run.toml", `
[simulation]
width = 400
height = 300
mode = "iterations"
criterion = 250
cooling_rate = 0.02
delay = "20ms"
attractive = "d * d / k"
seed = 9

[topology]
kind = "grid"
size = 4

[sweep]
from = 0.01
to = 0.05
step = 0.01
sample_size = 8

[logging]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	s := cfg.Simulation
	if s.Width != 400 || s.Height != 300 || s.Mode != fdp.ModeIterations || s.Criterion != 250 {
		t.Errorf("simulation = %+v", s)
	}
	if s.Delay != 20*time.Millisecond {
		t.Errorf("Delay = %v, want 20ms", s.Delay)
	}
	if s.Seed != 9 || s.Attractive != "d * d / k" {
		t.Errorf("seed/attractive = %d/%q", s.Seed, s.Attractive)
	}
	if s.MaxIterations != fdp.DefaultMaxIterations {
		t.Errorf("unset keys should keep defaults, MaxIterations = %d", s.MaxIterations)
	}
	if cfg.Topology.Kind != "grid" || cfg.Topology.Size != 4 {
		t.Errorf("topology = %+v", cfg.Topology)
	}
	if cfg.Sweep.SampleSize != 8 || cfg.Sweep.To != 0.05 {
		t.Errorf("sweep = %+v", cfg.Sweep)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
simulation:
  width: 200
  height: 200
  criterion: 15
  cooling_rate: 0.05
  delay: 5ms
server:
  addr: ":9090"
  request_timeout: 30s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Simulation.Width != 200 || cfg.Simulation.CoolingRate != 0.05 {
		t.Errorf("simulation = %+v", cfg.Simulation)
	}
	if cfg.Simulation.Delay != 5*time.Millisecond {
		t.Errorf("Delay = %v", cfg.Simulation.Delay)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode errors.Code
	}{
		{"unknown toml key", "a.toml", "[simulation]\nwidht = 3\n", errors.ErrCodeInvalidConfig},
		{"unknown yaml key", "a.yaml", "simulation:\n  widht: 3\n", errors.ErrCodeInvalidConfig},
		{"bad toml", "a.toml", "[simulation\n", errors.ErrCodeInvalidConfig},
		{"bad format", "a.json", "{}", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Load() error = %v, want %s", err, tt.wantCode)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestUnknownTOMLKeyNamesField(t *testing.T) {
	_, err := Load(writeFile(t, "a.toml", "[simulation]\nwidht = 3\n"))
	if got := errors.GetField(err); got != "simulation.widht" {
		t.Errorf("field = %q, want simulation.widht", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad rate", func(c *Config) { c.Simulation.CoolingRate = 1 }, "cooling_rate"},
		{"bad range", func(c *Config) { c.Sweep.SampleSize = 0 }, "sample_size"},
		{"bad topology", func(c *Config) { c.Topology.Kind = "blob" }, "topology"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "level"},
		{"bad timeout", func(c *Config) { c.Server.RequestTimeout = -time.Second }, "request_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.IsConfig(err) {
				t.Fatalf("Validate() = %v, want config error", err)
			}
			if got := errors.GetField(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvRedisURL, "redis://${FL_TEST_HOST}:6379/0")
	t.Setenv("FL_TEST_HOST", "cache.internal")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvAddr, ":7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.RedisURL != "redis://cache.internal:6379/0" {
		t.Errorf("RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.Logging.Level != "warn" || cfg.Server.Addr != ":7070" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Logging, cfg.Server)
	}
}
