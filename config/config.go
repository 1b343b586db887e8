// SPDX-License-Identifier: MIT

// Package config loads draw, enforcement, logging and storage settings.
//
// Resolution order: Default, then an optional YAML file, then PYEMU_*
// environment variables, then Validate.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/aymanalz/pyemu/ensemble"
	"github.com/aymanalz/pyemu/logging"
)

// ErrInvalid indicates a setting outside its allowed values.
var ErrInvalid = errors.New("config: invalid setting")

// Settings is the complete configuration.
type Settings struct {
	Draw    DrawSettings    `yaml:"draw" envPrefix:"PYEMU_DRAW_"`
	Enforce EnforceSettings `yaml:"enforce" envPrefix:"PYEMU_ENFORCE_"`
	Logging LoggingSettings `yaml:"logging" envPrefix:"PYEMU_LOG_"`
	Store   StoreSettings   `yaml:"store" envPrefix:"PYEMU_STORE_"`
}

// DrawSettings configures ensemble draws.
type DrawSettings struct {
	// Distribution is "gaussian", "uniform" or "triangular".
	Distribution string `yaml:"distribution" env:"DISTRIBUTION"`

	// NumReals is the number of realizations drawn.
	NumReals int `yaml:"num_reals" env:"NUM_REALS"`

	// SigmaRange is how many standard deviations the bound interval spans.
	SigmaRange float64 `yaml:"sigma_range" env:"SIGMA_RANGE"`

	// GroupMode is "by_groups" or "whole".
	GroupMode string `yaml:"group_mode" env:"GROUP_MODE"`

	// Fill keeps non-sampled variables; nil uses the per-kind default.
	Fill *bool `yaml:"fill,omitempty" env:"FILL"`

	// Seed drives every draw; 0 selects the fixed default seed.
	Seed     uint64 `yaml:"seed" env:"SEED"`
	Parallel bool   `yaml:"parallel" env:"PARALLEL"`
}

// EnforceSettings configures bounds enforcement.
type EnforceSettings struct {
	// Policy is "reset", "scale" or "drop".
	Policy string `yaml:"policy" env:"POLICY"`
}

// LoggingSettings configures the logger.
type LoggingSettings struct {
	// Level is "trace", "debug", "info", "warn" or "error".
	Level string `yaml:"level" env:"LEVEL"`
}

// StoreSettings configures the ensemble database.
type StoreSettings struct {
	Path string `yaml:"path" env:"PATH"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Draw: DrawSettings{
			Distribution: ensemble.Gaussian.String(),
			NumReals:     100,
			SigmaRange:   ensemble.DefaultSigmaRange,
			GroupMode:    ensemble.DefaultGroupMode.String(),
		},
		Enforce: EnforceSettings{Policy: ensemble.DefaultPolicy.String()},
		Logging: LoggingSettings{Level: "info"},
		Store:   StoreSettings{Path: "ensembles.db"},
	}
}

// Load resolves settings from path (skipped when empty) and the process
// environment.
func Load(path string) (*Settings, error) {
	return load(path, env.Options{})
}

// LoadEnviron is Load with an explicit environment instead of the process one.
func LoadEnviron(path string, environ map[string]string) (*Settings, error) {
	return load(path, env.Options{Environment: environ})
}

func load(path string, opts env.Options) (*Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := s.decodeYAML(data); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(s, opts); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Settings) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// Validate checks every enumerated and numeric setting.
func (s *Settings) Validate() error {
	if _, err := ensemble.ParseDistribution(s.Draw.Distribution); err != nil {
		return fmt.Errorf("config: draw.distribution: %w: %w", ErrInvalid, err)
	}
	if _, err := ensemble.ParseGroupMode(s.Draw.GroupMode); err != nil {
		return fmt.Errorf("config: draw.group_mode: %w: %w", ErrInvalid, err)
	}
	if _, err := ensemble.ParsePolicy(s.Enforce.Policy); err != nil {
		return fmt.Errorf("config: enforce.policy: %w: %w", ErrInvalid, err)
	}
	if s.Draw.NumReals <= 0 {
		return fmt.Errorf("config: draw.num_reals must be positive, got %d: %w", s.Draw.NumReals, ErrInvalid)
	}
	if !(s.Draw.SigmaRange > 0) {
		return fmt.Errorf("config: draw.sigma_range must be positive, got %g: %w", s.Draw.SigmaRange, ErrInvalid)
	}
	switch strings.ToLower(strings.TrimSpace(s.Logging.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: logging.level %q: %w", s.Logging.Level, ErrInvalid)
	}

	return nil
}

// Distribution returns the configured draw distribution.
func (s *Settings) Distribution() (ensemble.Distribution, error) {
	return ensemble.ParseDistribution(s.Draw.Distribution)
}

// EnforcePolicy returns the configured enforcement policy.
func (s *Settings) EnforcePolicy() (ensemble.Policy, error) {
	return ensemble.ParsePolicy(s.Enforce.Policy)
}

// Logger builds the configured logger writing to w.
func (s *Settings) Logger(w io.Writer) *slog.Logger {
	return logging.NewLogger(s.Logging.Level, w)
}

// DrawOptions maps the draw settings to ensemble options; extra options are
// appended and win over the settings.
func (s *Settings) DrawOptions(extra ...ensemble.Option) ([]ensemble.Option, error) {
	mode, err := ensemble.ParseGroupMode(s.Draw.GroupMode)
	if err != nil {
		return nil, err
	}
	if !(s.Draw.SigmaRange > 0) {
		return nil, fmt.Errorf("config: draw.sigma_range %g: %w", s.Draw.SigmaRange, ErrInvalid)
	}
	opts := []ensemble.Option{
		ensemble.WithSigmaRange(s.Draw.SigmaRange),
		ensemble.WithGroupMode(mode),
		ensemble.WithSeed(s.Draw.Seed),
		ensemble.WithParallel(s.Draw.Parallel),
	}
	if s.Draw.Fill != nil {
		opts = append(opts, ensemble.WithFill(*s.Draw.Fill))
	}

	return append(opts, extra...), nil
}
