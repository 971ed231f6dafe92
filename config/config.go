// Package config loads mixer runtime configuration via viper: a typed
// struct with sane zero-value defaults, populated from a config file
// and/or environment variables under the MIXER_ prefix.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the mixer's runtime configuration. The host, reaper and
// engine packages do not read it themselves; the process that wires
// them together (cmd/mixerctl) passes its values in at construction.
// The engine's buffer frame count is fixed once the engine is built.
type Config struct {
	// BufferFrames is the per-tick frame count the MixerEngine is
	// built with. host.Host requests exactly this many frames from
	// the endpoint and fails to start if the endpoint grants a
	// different count.
	BufferFrames int `mapstructure:"buffer_frames"`
	// ReaperIdleTimeoutMS is loaded and defaulted but not read by
	// the reaper package: the Reaper waits on its condition
	// variable without a timeout until Submit or Stop wakes it.
	ReaperIdleTimeoutMS int `mapstructure:"reaper_idle_timeout_ms"`
	// ReaperMaxInFlightBatches is the maxPending passed to
	// reaper.New: how many submitted tasks may be outstanding
	// (not yet freed after the mixer's fence) before Submit blocks
	// the caller. It counts tasks, not batches.
	ReaperMaxInFlightBatches int64 `mapstructure:"reaper_max_in_flight_batches"`
	// LogLevel is a zap level name ("debug", "info", "warn", "error").
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the zero-value-safe defaults a mixer process starts
// with absent any config file or environment override.
func Default() Config {
	return Config{
		BufferFrames:             1024,
		ReaperIdleTimeoutMS:      500,
		ReaperMaxInFlightBatches: 8,
		LogLevel:                "info",
	}
}

// Load reads configuration from path (if non-empty) and from
// environment variables prefixed MIXER_, layered over Default().
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("mixer")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("buffer_frames", cfg.BufferFrames)
	v.SetDefault("reaper_idle_timeout_ms", cfg.ReaperIdleTimeoutMS)
	v.SetDefault("reaper_max_in_flight_batches", cfg.ReaperMaxInFlightBatches)
	v.SetDefault("log_level", cfg.LogLevel)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "config: reading %s", path)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: unmarshal")
	}
	return cfg, nil
}
