package main

import (
	"encoding"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the daemon configuration.
type Config struct {
	// Bus is the I2C bus name or number. Empty selects the first
	// available bus.
	Bus string `toml:"bus"`
	// Name identifies this instance in logs.
	Name string `toml:"name"`
	// Rate is the demo pattern frame rate in frames per second.
	Rate int `toml:"rate"`
	// Pattern is the demo pattern to run: "pulse" or "spiral".
	Pattern string `toml:"pattern"`
	// StopTimeout bounds the final drain on shutdown.
	StopTimeout TOMLDuration `toml:"stop_timeout"`
}

// DefaultConfig is the configuration used when no file is given.
var DefaultConfig = Config{
	Name:        "piglow",
	Rate:        30,
	Pattern:     "pulse",
	StopTimeout: TOMLDuration(5 * time.Second),
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Rate <= 0 {
		return errors.Errorf("rate must be positive, got %d", c.Rate)
	}
	switch c.Pattern {
	case "pulse", "spiral":
	default:
		return errors.Errorf("unknown pattern %q", c.Pattern)
	}
	return nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader on top of the defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
