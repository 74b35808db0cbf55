package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Check.Device != "CPU" {
		t.Errorf("Check.Device = %q; want %q", cfg.Check.Device, "CPU")
	}

	if len(cfg.Check.Devices) != 2 || cfg.Check.Devices[1] != "ParallelCPU" {
		t.Errorf("Check.Devices = %v; want [CPU ParallelCPU]", cfg.Check.Devices)
	}

	if cfg.Check.Stepsize != 0.05 {
		t.Errorf("Check.Stepsize = %g; want 0.05", cfg.Check.Stepsize)
	}

	if cfg.Check.Threshold != 0.005 {
		t.Errorf("Check.Threshold = %g; want 0.005", cfg.Check.Threshold)
	}

	if cfg.Run.Format != "text" {
		t.Errorf("Run.Format = %q; want %q", cfg.Run.Format, "text")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v; want nil", err)
	}
}

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	checks := []struct {
		flag string
		want string
	}{
		{"check-device", "CPU"},
		{"check-devices", "[CPU,ParallelCPU]"},
		{"iterations", "10"},
		{"format", "text"},
		{"parallel-min-chunk-size", "8"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Check.Atol != defaults.Check.Atol {
		t.Errorf("Check.Atol = %g; want %g", cfg.Check.Atol, defaults.Check.Atol)
	}

	if cfg.Run.Iterations != defaults.Run.Iterations {
		t.Errorf("Run.Iterations = %d; want %d", cfg.Run.Iterations, defaults.Run.Iterations)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--seed=42",
		"--iterations=3",
		"--format=json",
		"--check-devices=ParallelCPU,CPU",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Run.Seed != 42 {
		t.Errorf("Run.Seed = %d; want 42", cfg.Run.Seed)
	}

	if cfg.Run.Iterations != 3 {
		t.Errorf("Run.Iterations = %d; want 3", cfg.Run.Iterations)
	}

	if cfg.Run.Format != "json" {
		t.Errorf("Run.Format = %q; want %q", cfg.Run.Format, "json")
	}

	if len(cfg.Check.Devices) != 2 || cfg.Check.Devices[0] != "ParallelCPU" {
		t.Errorf("Check.Devices = %v; want [ParallelCPU CPU]", cfg.Check.Devices)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OPCHECK_CHECK_ATOL", "0.01")
	t.Setenv("OPCHECK_PARALLEL_WORKERS", "3")

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Check.Atol != 0.01 {
		t.Errorf("Check.Atol = %g; want 0.01", cfg.Check.Atol)
	}

	if cfg.Parallel.Workers != 3 {
		t.Errorf("Parallel.Workers = %d; want 3", cfg.Parallel.Workers)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opcheck.yaml")

	content := "check:\n  device: ParallelCPU\n  threshold: 0.01\nrun:\n  iterations: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		ConfigFile: path,
		Defaults:   DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Check.Device != "ParallelCPU" {
		t.Errorf("Check.Device = %q; want %q", cfg.Check.Device, "ParallelCPU")
	}

	if cfg.Check.Threshold != 0.01 {
		t.Errorf("Check.Threshold = %g; want 0.01", cfg.Check.Threshold)
	}

	if cfg.Run.Iterations != 5 {
		t.Errorf("Run.Iterations = %d; want 5", cfg.Run.Iterations)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: filepath.Join(t.TempDir(), "missing.yaml"),
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no devices", func(c *Config) { c.Check.Devices = nil }},
		{"negative atol", func(c *Config) { c.Check.Atol = -1 }},
		{"zero stepsize", func(c *Config) { c.Check.Stepsize = 0 }},
		{"zero threshold", func(c *Config) { c.Check.Threshold = 0 }},
		{"zero iterations", func(c *Config) { c.Run.Iterations = 0 }},
		{"unknown format", func(c *Config) { c.Run.Format = "xml" }},
		{"negative workers", func(c *Config) { c.Parallel.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil; want error")
			}
		})
	}
}
