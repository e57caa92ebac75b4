// Package config loads the YAML configuration of the chainer command.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gokanproof/pkg/chainer"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

var validate = validator.New()

// Config is the complete command configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Batch   BatchConfig   `yaml:"batch"`
}

// EngineConfig holds search parameters.
type EngineConfig struct {
	Depth           int  `yaml:"depth" validate:"gte=0,lte=64"`
	Rounds          int  `yaml:"rounds" validate:"gte=0,lte=1024"`
	MaxArity        int  `yaml:"max_arity" validate:"gte=1,lte=8"`
	Lemmas          bool `yaml:"lemmas"`
	MaxControlDepth int  `yaml:"max_control_depth" validate:"gte=0"`
}

// StoreConfig locates the knowledge base.
type StoreConfig struct {
	// KnowledgeBase is a YAML knowledge-base file loaded at startup
	KnowledgeBase string `yaml:"kb"`

	// DB is a BadgerDB directory; when set, derived judgments persist
	DB string `yaml:"db"`

	SyncWrites bool `yaml:"sync_writes"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`

	// Trace logs every search event at debug level
	Trace bool `yaml:"trace"`
}

// MetricsConfig controls the Prometheus endpoint and span export.
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`

	// Traces selects the span exporter
	Traces string `yaml:"traces" validate:"oneof=none stdout otlp"`

	OTLPEndpoint string `yaml:"otlp_endpoint" validate:"omitempty,hostname_port"`
}

// BatchConfig controls concurrent query evaluation.
type BatchConfig struct {
	Workers int `yaml:"workers" validate:"gte=1,lte=256"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Depth:           3,
			Rounds:          1,
			MaxArity:        1,
			Lemmas:          true,
			MaxControlDepth: 64,
		},
		Store: StoreConfig{SyncWrites: true},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{Traces: "none"},
		Batch:   BatchConfig{Workers: 4},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Chainer returns the engine configuration for these settings.
func (e EngineConfig) Chainer(logger *slog.Logger, tracer chainer.Tracer) *chainer.Config {
	return &chainer.Config{
		MaxArity:        e.MaxArity,
		Lemmas:          e.Lemmas,
		MaxControlDepth: e.MaxControlDepth,
		Tracer:          tracer,
		Logger:          logger,
	}
}

// Logger builds a logger writing to w.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
