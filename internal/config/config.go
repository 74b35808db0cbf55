// Package config loads opcheck settings from defaults, flags, OPCHECK_*
// environment variables and an optional opcheck.yaml.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Check    CheckConfig    `mapstructure:"check"`
	Run      RunConfig      `mapstructure:"run"`
	Parallel ParallelConfig `mapstructure:"parallel"`
}

type CheckConfig struct {
	Device    string   `mapstructure:"device"`
	Devices   []string `mapstructure:"devices"`
	Atol      float64  `mapstructure:"atol"`
	Rtol      float64  `mapstructure:"rtol"`
	Stepsize  float64  `mapstructure:"stepsize"`
	Threshold float64  `mapstructure:"threshold"`
}

type RunConfig struct {
	Seed       uint64 `mapstructure:"seed"`
	Iterations int    `mapstructure:"iterations"`
	Format     string `mapstructure:"format"`
	FailFast   bool   `mapstructure:"fail_fast"`
}

type ParallelConfig struct {
	Workers      int `mapstructure:"workers"`
	MinChunkSize int `mapstructure:"min_chunk_size"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Check: CheckConfig{
			Device:    "CPU",
			Devices:   []string{"CPU", "ParallelCPU"},
			Atol:      1e-4,
			Rtol:      1e-4,
			Stepsize:  0.05,
			Threshold: 0.005,
		},
		Run: RunConfig{
			Seed:       0,
			Iterations: 10,
			Format:     "text",
			FailFast:   false,
		},
		Parallel: ParallelConfig{
			Workers:      0,
			MinChunkSize: 8,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("check-device", defaults.Check.Device, "Device reference and gradient checks run on")
	fs.StringSlice("check-devices", defaults.Check.Devices, "Devices compared by device checks; the first is the baseline")
	fs.Float64("check-atol", defaults.Check.Atol, "Absolute tolerance of reference and device checks")
	fs.Float64("check-rtol", defaults.Check.Rtol, "Relative tolerance of reference and device checks")
	fs.Float64("check-stepsize", defaults.Check.Stepsize, "Default central difference step of gradient checks")
	fs.Float64("check-threshold", defaults.Check.Threshold, "Default threshold of gradient checks")
	fs.Uint64("seed", defaults.Run.Seed, "Seed of the first iteration; iteration i uses seed+i")
	fs.Int("iterations", defaults.Run.Iterations, "Seeded iterations per case")
	fs.String("format", defaults.Run.Format, "Report format (text|json)")
	fs.Bool("fail-fast", defaults.Run.FailFast, "Stop at the first failing case")
	fs.Int("parallel-workers", defaults.Parallel.Workers, "Workers of the ParallelCPU device (0 = number of CPUs, at least 2)")
	fs.Int("parallel-min-chunk-size", defaults.Parallel.MinChunkSize, "Minimum elements per ParallelCPU worker")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("OPCHECK")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("opcheck")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects settings no check can run with.
func (c Config) Validate() error {
	switch {
	case len(c.Check.Devices) == 0:
		return fmt.Errorf("check.devices: at least one device required")
	case c.Check.Atol < 0 || c.Check.Rtol < 0:
		return fmt.Errorf("check tolerances must be non-negative")
	case c.Check.Stepsize <= 0:
		return fmt.Errorf("check.stepsize must be positive, got %g", c.Check.Stepsize)
	case c.Check.Threshold <= 0:
		return fmt.Errorf("check.threshold must be positive, got %g", c.Check.Threshold)
	case c.Run.Iterations < 1:
		return fmt.Errorf("run.iterations must be at least 1, got %d", c.Run.Iterations)
	case c.Run.Format != "text" && c.Run.Format != "json":
		return fmt.Errorf("run.format: unknown format %q", c.Run.Format)
	case c.Parallel.Workers < 0 || c.Parallel.MinChunkSize < 0:
		return fmt.Errorf("parallel settings must be non-negative")
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("check.device", c.Check.Device)
	v.SetDefault("check.devices", c.Check.Devices)
	v.SetDefault("check.atol", c.Check.Atol)
	v.SetDefault("check.rtol", c.Check.Rtol)
	v.SetDefault("check.stepsize", c.Check.Stepsize)
	v.SetDefault("check.threshold", c.Check.Threshold)
	v.SetDefault("run.seed", c.Run.Seed)
	v.SetDefault("run.iterations", c.Run.Iterations)
	v.SetDefault("run.format", c.Run.Format)
	v.SetDefault("run.fail_fast", c.Run.FailFast)
	v.SetDefault("parallel.workers", c.Parallel.Workers)
	v.SetDefault("parallel.min_chunk_size", c.Parallel.MinChunkSize)
}

// flagKeys maps config keys to the flags that set them.
var flagKeys = []struct{ key, flag string }{
	{"check.device", "check-device"},
	{"check.devices", "check-devices"},
	{"check.atol", "check-atol"},
	{"check.rtol", "check-rtol"},
	{"check.stepsize", "check-stepsize"},
	{"check.threshold", "check-threshold"},
	{"run.seed", "seed"},
	{"run.iterations", "iterations"},
	{"run.format", "format"},
	{"run.fail_fast", "fail-fast"},
	{"parallel.workers", "parallel-workers"},
	{"parallel.min_chunk_size", "parallel-min-chunk-size"},
}

// bindFlags binds every registered flag to its nested key, so flags, env
// and config file all address the same setting.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, b := range flagKeys {
		f := fs.Lookup(b.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return err
		}
	}
	return nil
}
