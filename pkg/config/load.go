package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Load reads a JSON or YAML configuration file over the reference defaults and validates it.
// The format is chosen by extension (.json, .yaml, .yml).
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, domain.ErrConfigMissing
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext over the reference defaults and validates it.
// Slices in data replace the defaults; maps are merged key by key.
func Parse(data []byte, ext string) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.ErrConfigMissing
	}

	cfg := Default()
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml", "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TTL returns the ledger expiration derived from tracking.persistence.expirationDays.
func (c *Config) TTL() time.Duration {
	days := c.Tracking.Persistence.ExpirationDays
	if days <= 0 {
		return domain.DefaultTTL
	}
	return time.Duration(days) * 24 * time.Hour
}

// ConsentRequired reports whether the redirect step is gated on consent.
func (c *Config) ConsentRequired() bool {
	return c.Privacy.Enabled
}
