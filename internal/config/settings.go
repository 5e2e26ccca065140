// Package config resolves the driver settings from defaults, an optional TOML
// file, UWB_* environment variables and command line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/uwbpose/internal/monitoring"
	"github.com/banshee-data/uwbpose/internal/pozyx"
	"github.com/banshee-data/uwbpose/internal/serialport"
)

// DefaultPath is the settings file read when --config is not given.
const DefaultPath = "uwb-localizer.toml"

// DefaultAnchorsPath is the anchor layout read when no argument is given.
const DefaultAnchorsPath = "PozyxConfig.yaml"

// ErrInvalidConfig is wrapped by every settings validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Settings holds the resolved driver settings.
type Settings struct {
	// Port is the tag's serial device; empty means auto-discover.
	Port      string
	BaudRate  int
	Algorithm string
	Dimension string
	HeightMM  int
	HeightAsZ bool
	Persist   bool
	// Interval between polls; zero polls back to back.
	Interval time.Duration
	// Cycles stops the driver after that many polls; zero runs forever.
	Cycles   int
	Listen   string
	LogLevel string
	Simulate bool
}

// Default returns the settings used when nothing overrides them.
func Default() Settings {
	return Settings{
		BaudRate:  serialport.DefaultBaudRate,
		Algorithm: pozyx.AlgorithmUWBOnly.String(),
		Dimension: pozyx.Dimension2D.String(),
		HeightMM:  1000,
		LogLevel:  "info",
	}
}

// Validate checks every field and wraps failures in ErrInvalidConfig.
func (s *Settings) Validate() error {
	if s.BaudRate <= 0 {
		return invalid("baud_rate must be positive, got %d", s.BaudRate)
	}
	if _, err := pozyx.ParseAlgorithm(s.Algorithm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := pozyx.ParseDimension(s.Dimension); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if s.HeightMM < 0 {
		return invalid("height_mm must be non-negative, got %d", s.HeightMM)
	}
	if s.Interval < 0 {
		return invalid("interval must be non-negative, got %s", s.Interval)
	}
	if s.Cycles < 0 {
		return invalid("cycles must be non-negative, got %d", s.Cycles)
	}
	if _, err := monitoring.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// GetAlgorithm returns the parsed algorithm, or UWB_ONLY when unset or invalid.
func (s *Settings) GetAlgorithm() pozyx.Algorithm {
	a, err := pozyx.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return pozyx.AlgorithmUWBOnly
	}
	return a
}

// GetDimension returns the parsed dimension, or 2D when unset or invalid.
func (s *Settings) GetDimension() pozyx.Dimension {
	d, err := pozyx.ParseDimension(s.Dimension)
	if err != nil {
		return pozyx.Dimension2D
	}
	return d
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
