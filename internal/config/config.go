// Package config loads go-motion command configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v11"
)

// Config is the preview server configuration.
type Config struct {
	Port         int     `env:"MOTION_PORT" envDefault:"8080"`
	Dir          string  `env:"MOTION_DIR"`
	ModelFile    string  `env:"MOTION_MODEL"`
	FPS          float64 `env:"MOTION_FPS" envDefault:"30"`
	LogLevel     string  `env:"MOTION_LOG_LEVEL" envDefault:"info"`
	Strict       bool    `env:"MOTION_STRICT"`
	LoopBehavior string  `env:"MOTION_LOOP_BEHAVIOR" envDefault:"v2"`
	BuiltIn      bool    `env:"MOTION_BUILTIN" envDefault:"true"`
	Blink        bool    `env:"MOTION_BLINK" envDefault:"true"`
	Breath       bool    `env:"MOTION_BREATH" envDefault:"true"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process
// environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges the env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("MOTION_PORT %d out of range", c.Port))
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		errs = append(errs, fmt.Errorf("MOTION_FPS %v out of range", c.FPS))
	}
	if c.LoopBehavior != "v1" && c.LoopBehavior != "v2" {
		errs = append(errs, fmt.Errorf("MOTION_LOOP_BEHAVIOR must be v1 or v2, got %q", c.LoopBehavior))
	}
	if !c.BuiltIn && c.Dir == "" {
		errs = append(errs, errors.New("MOTION_DIR is required when MOTION_BUILTIN is false"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
