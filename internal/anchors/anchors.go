// Package anchors loads the fixed UWB anchor layout from a YAML file.
package anchors

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Anchor is one fixed reference beacon. Coordinates are millimetres in the
// positioning frame.
type Anchor struct {
	ID   int
	Flag int
	X    float64
	Y    float64
	Z    float64
}

var (
	// ErrMissingField is wrapped by ConfigError when a required key is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrOutOfRange is wrapped by ConfigError when an id or flag does not fit
	// the tag's 16 bit network id or 8 bit flag.
	ErrOutOfRange = errors.New("value out of range")
)

// ConfigError reports why an anchor file could not be loaded.
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	msg := "anchor config"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Field != "" {
		msg += ": " + e.Field
	}
	return msg + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// file mirrors the document; pointers tell absent keys from zero values.
type file struct {
	Anchors *[]entry `yaml:"anchors"`
}

type entry struct {
	ID          *int         `yaml:"id"`
	Flag        *int         `yaml:"flag"`
	Coordinates *coordinates `yaml:"coordinates"`
}

type coordinates struct {
	X *float64 `yaml:"x"`
	Y *float64 `yaml:"y"`
	Z *float64 `yaml:"z"`
}

// Load reads the anchor file at path. Anchors keep file order.
func Load(path string) ([]Anchor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	list, err := Parse(data)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return list, nil
}

// Parse decodes an anchor document held in memory.
func Parse(data []byte) ([]Anchor, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("parse: %w", err)}
	}
	if doc.Anchors == nil {
		return nil, &ConfigError{Field: "anchors", Err: ErrMissingField}
	}

	list := make([]Anchor, 0, len(*doc.Anchors))
	for i, e := range *doc.Anchors {
		a, field := e.anchor()
		if field != "" {
			return nil, &ConfigError{Field: fmt.Sprintf("anchors[%d].%s", i, field), Err: ErrMissingField}
		}
		if a.ID < 0 || a.ID > 0xffff {
			return nil, &ConfigError{Field: fmt.Sprintf("anchors[%d].id", i), Err: fmt.Errorf("%w: %#x", ErrOutOfRange, a.ID)}
		}
		if a.Flag < 0 || a.Flag > 0xff {
			return nil, &ConfigError{Field: fmt.Sprintf("anchors[%d].flag", i), Err: fmt.Errorf("%w: %d", ErrOutOfRange, a.Flag)}
		}
		list = append(list, a)
	}
	return list, nil
}

// anchor converts e, or names the first missing field.
func (e entry) anchor() (Anchor, string) {
	switch {
	case e.ID == nil:
		return Anchor{}, "id"
	case e.Flag == nil:
		return Anchor{}, "flag"
	case e.Coordinates == nil:
		return Anchor{}, "coordinates"
	case e.Coordinates.X == nil:
		return Anchor{}, "coordinates.x"
	case e.Coordinates.Y == nil:
		return Anchor{}, "coordinates.y"
	case e.Coordinates.Z == nil:
		return Anchor{}, "coordinates.z"
	}
	return Anchor{
		ID:   *e.ID,
		Flag: *e.Flag,
		X:    *e.Coordinates.X,
		Y:    *e.Coordinates.Y,
		Z:    *e.Coordinates.Z,
	}, ""
}
