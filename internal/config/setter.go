package config

import (
	"fmt"
	"strconv"
	"time"
)

// configSetter applies a value only when the matching flag was not set on
// the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag string, value *string, dst *string) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setDuration(flag string, value *string, dst *time.Duration) error {
	if value == nil || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, flag, err)
	}
	*dst = d
	return nil
}

// Environment values arrive as strings; an empty string means unset.

func (s *configSetter) setStringFromEnv(flag, value string, dst *string) {
	if value == "" {
		return
	}
	s.setString(flag, &value, dst)
}

func (s *configSetter) setIntFromEnv(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, flag, err)
	}
	*dst = i
	return nil
}

func (s *configSetter) setBoolFromEnv(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, flag, err)
	}
	*dst = b
	return nil
}

func (s *configSetter) setDurationFromEnv(flag, value string, dst *time.Duration) error {
	if value == "" {
		return nil
	}
	return s.setDuration(flag, &value, dst)
}
