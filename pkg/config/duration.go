package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from integer milliseconds
// (the unit of the reference configuration) or from a Go duration string.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Ms builds a Duration from milliseconds.
func Ms(ms int64) Duration {
	return Duration(time.Duration(ms) * time.Millisecond)
}

// MarshalJSON encodes the duration as a Go duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a number of milliseconds or a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return d.fromMillis(n.String())
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be milliseconds or a duration string: %w", err)
	}
	return d.parse(s)
}

// MarshalYAML encodes the duration as a Go duration string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts a number of milliseconds or a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	if value.Tag == "!!int" || value.Tag == "!!float" {
		return d.fromMillis(value.Value)
	}
	return d.parse(value.Value)
}

func (d *Duration) fromMillis(s string) error {
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid milliseconds %q: %w", s, err)
	}
	*d = Duration(time.Duration(ms * float64(time.Millisecond)))
	return nil
}

func (d *Duration) parse(s string) error {
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return d.fromMillis(s)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}
