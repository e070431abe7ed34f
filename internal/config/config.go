// Package config loads sixelbridged's TOML configuration, generalizing the
// teacher's ad hoc topLevelConfig/commandConfig structs (previously declared
// directly in main.go) into a loadable, testable unit.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/hnw/sixelbridge/pubsub"
)

// defaultMaxDimension mirrors internal/sixel's own implementation maximum;
// it is the zero-value fallback for Decode.MaxWidth/MaxHeight so operators
// only need to set them to shrink the bound, never to reach it.
const defaultMaxDimension = 16384

// CommandDefinition is one [[commands]] entry.
type CommandDefinition struct {
	pubsub.ReplyConfig
	Keyword       string   `toml:"keyword"`
	Command       string   `toml:"command"`
	Aliases       []string `toml:"aliases"`
	Timeout       int      `toml:"timeout"`
	LegacyDecoder bool     `toml:"legacy_decoder"`
}

// DecodeLimits bounds the SIXEL decoder's resource usage; spec.md leaves
// these as "implementation-defined constants" so they are made
// operator-configurable here.
type DecodeLimits struct {
	MaxWidth  int `toml:"max_width"`
	MaxHeight int `toml:"max_height"`
}

// Config is the top-level, TOML-decoded sixelbridged configuration.
type Config struct {
	pubsub.Config
	NumWorkers int                  `toml:"num_workers"`
	Decode     DecodeLimits         `toml:"decode"`
	Commands   []*CommandDefinition `toml:"commands"`
}

// Load decodes the TOML file at path, applying defaults for any field left
// unset, exactly as main.go's toml.DecodeFile("config.toml", &config) did.
func Load(path string) (*Config, error) {
	cfg := &Config{NumWorkers: 1}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Decode.MaxWidth <= 0 {
		cfg.Decode.MaxWidth = defaultMaxDimension
	}
	if cfg.Decode.MaxHeight <= 0 {
		cfg.Decode.MaxHeight = defaultMaxDimension
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	return cfg, nil
}
