package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// File mirrors Settings as written in TOML. Absent keys stay nil so they do
// not override defaults; durations are strings like "250ms".
type File struct {
	Port      *string `toml:"port"`
	BaudRate  *int    `toml:"baud_rate"`
	Algorithm *string `toml:"algorithm"`
	Dimension *string `toml:"dimension"`
	HeightMM  *int    `toml:"height_mm"`
	HeightAsZ *bool   `toml:"height_as_z"`
	Persist   *bool   `toml:"persist"`
	Interval  *string `toml:"interval"`
	Cycles    *int    `toml:"cycles"`
	Listen    *string `toml:"listen"`
	LogLevel  *string `toml:"log_level"`
	Simulate  *bool   `toml:"simulate"`
}

// LoadFile reads a TOML settings file. Unknown keys are rejected.
func LoadFile(path string) (File, error) {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	dec := toml.NewDecoder(bytes.NewReader(b)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return File{}, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, path, strict.String())
		}
		return File{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return f, nil
}

// ApplyFile copies the values present in f into s, skipping any whose flag
// is in changed.
func ApplyFile(s *Settings, f File, changed map[string]bool) error {
	set := newConfigSetter(changed)

	set.setString("port", f.Port, &s.Port)
	set.setInt("baud", f.BaudRate, &s.BaudRate)
	set.setString("algorithm", f.Algorithm, &s.Algorithm)
	set.setString("dimension", f.Dimension, &s.Dimension)
	set.setInt("height", f.HeightMM, &s.HeightMM)
	set.setBool("height-as-z", f.HeightAsZ, &s.HeightAsZ)
	set.setBool("persist", f.Persist, &s.Persist)
	if err := set.setDuration("interval", f.Interval, &s.Interval); err != nil {
		return err
	}
	set.setInt("cycles", f.Cycles, &s.Cycles)
	set.setString("listen", f.Listen, &s.Listen)
	set.setString("log-level", f.LogLevel, &s.LogLevel)
	set.setBool("simulate", f.Simulate, &s.Simulate)
	return nil
}

// FileExists reports whether p names an existing file.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
