// Package config loads graphbuild settings: built-in defaults, then an
// optional YAML file, then GRAPHBUILD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graphbuilder/pkg/logging"
	"github.com/dd0wney/cluso-graphbuilder/pkg/validation"
)

// Config is the complete graphbuild configuration
type Config struct {
	Runtime     RuntimeConfig      `yaml:"runtime"`
	Limits      LimitsConfig       `yaml:"limits"`
	Constraints []ConstraintConfig `yaml:"constraints"`
}

// RuntimeConfig controls logging and output
type RuntimeConfig struct {
	LogLevel string `yaml:"log_level" env:"GRAPHBUILD_LOG_LEVEL"`
	// Strict starts from validation.DefaultLimits; set limits override it
	Strict   bool `yaml:"strict" env:"GRAPHBUILD_STRICT"`
	Compress bool `yaml:"compress" env:"GRAPHBUILD_COMPRESS"`
}

// LimitsConfig mirrors validation.Limits. Zero disables a bound.
type LimitsConfig struct {
	MaxLabels            int    `yaml:"max_labels" env:"GRAPHBUILD_MAX_LABELS"`
	MaxLabelLength       int    `yaml:"max_label_length" env:"GRAPHBUILD_MAX_LABEL_LENGTH"`
	MaxProperties        int    `yaml:"max_properties" env:"GRAPHBUILD_MAX_PROPERTIES"`
	MaxPropertyKeyLength int    `yaml:"max_property_key_length" env:"GRAPHBUILD_MAX_PROPERTY_KEY_LENGTH"`
	MaxValueDepth        int    `yaml:"max_value_depth" env:"GRAPHBUILD_MAX_VALUE_DEPTH"`
	LabelPattern         string `yaml:"label_pattern" env:"GRAPHBUILD_LABEL_PATTERN"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{LogLevel: "info"},
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	// constraints are file-only, so env is applied per section
	if err := env.Parse(&cfg.Runtime); err != nil {
		return nil, fmt.Errorf("failed to parse runtime env: %w", err)
	}
	if err := env.Parse(&cfg.Limits); err != nil {
		return nil, fmt.Errorf("failed to parse limits env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("config")

	cv.OneOf("runtime.log_level", strings.ToLower(c.Runtime.LogLevel), logLevels)

	cv.NonNegative("limits.max_labels", c.Limits.MaxLabels).
		NonNegative("limits.max_label_length", c.Limits.MaxLabelLength).
		NonNegative("limits.max_properties", c.Limits.MaxProperties).
		NonNegative("limits.max_property_key_length", c.Limits.MaxPropertyKeyLength).
		NonNegative("limits.max_value_depth", c.Limits.MaxValueDepth).
		MaxInt("limits.max_value_depth", c.Limits.MaxValueDepth, validation.MaxValueNesting)

	cv.When(c.Limits.LabelPattern != "", func(cv *validation.ConfigValidator) {
		cv.Custom("limits.label_pattern", func() error {
			_, err := regexp.Compile(c.Limits.LabelPattern)
			return err
		})
	})

	for i := range c.Constraints {
		c.Constraints[i].validate(cv, fmt.Sprintf("constraints[%d]", i))
	}

	return cv.Validate()
}

// LogLevel returns the parsed runtime log level
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Runtime.LogLevel)
}

// BuilderLimits turns the limits section into validation.Limits. It assumes
// Validate passed.
func (c *Config) BuilderLimits() validation.Limits {
	var limits validation.Limits
	if c.Runtime.Strict {
		limits = validation.DefaultLimits()
	}

	override := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	override(&limits.MaxLabels, c.Limits.MaxLabels)
	override(&limits.MaxLabelLength, c.Limits.MaxLabelLength)
	override(&limits.MaxProperties, c.Limits.MaxProperties)
	override(&limits.MaxPropertyKeyLength, c.Limits.MaxPropertyKeyLength)
	override(&limits.MaxValueDepth, c.Limits.MaxValueDepth)

	if c.Limits.LabelPattern != "" {
		limits.LabelPattern = regexp.MustCompile(c.Limits.LabelPattern)
	}
	return limits
}
