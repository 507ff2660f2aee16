package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoSectors         = errors.New("at least one sector is required")
	ErrEmptySectorName   = errors.New("sector name is empty")
	ErrDuplicateSector   = errors.New("duplicate sector name")
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

type Config struct {
	Log      LogConfig      `yaml:"log" toml:"log"`
	Identity IdentityConfig `yaml:"identity" toml:"identity"`
	Prefabs  PrefabConfig   `yaml:"prefabs" toml:"prefabs"`
	// Sectors lists the pools of the manager in insertion order.
	// The first one is the default sector.
	Sectors []SectorConfig `yaml:"sectors" toml:"sectors"`
}

type LogConfig struct {
	Level    string `yaml:"level" toml:"level"`
	Encoding string `yaml:"encoding" toml:"encoding"` // "json" or "console"
}

type IdentityConfig struct {
	FirstID uint64 `yaml:"first_id" toml:"first_id"`
}

type PrefabConfig struct {
	Paths []string `yaml:"paths" toml:"paths"`
}

type SectorConfig struct {
	Name string `yaml:"name" toml:"name"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Identity: IdentityConfig{
			FirstID: 1,
		},
		Sectors: []SectorConfig{{Name: "default"}},
	}
}

// Load reads the file at path over Default. The format follows the extension:
// .yaml / .yml or .toml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Sectors) == 0 {
		return ErrNoSectors
	}
	seen := make(map[string]struct{}, len(c.Sectors))
	for i, s := range c.Sectors {
		if s.Name == "" {
			return fmt.Errorf("%w: sectors[%d]", ErrEmptySectorName, i)
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateSector, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// SectorNames returns the configured sector names in order.
func (c *Config) SectorNames() []string {
	names := make([]string, 0, len(c.Sectors))
	for _, s := range c.Sectors {
		names = append(names, s.Name)
	}
	return names
}
