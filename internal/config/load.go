package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// envPrefix is the prefix for environment variable overrides.
// PLACE_MEDIA_MAX_IMAGES -> media.max_images
const envPrefix = "PLACE_"

// Load builds the configuration from layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file (skipped when path is empty or missing)
//  3. Environment variables with the PLACE_ prefix (highest priority)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
			log.Debug().Str("path", path).Msg("Config file loaded")
		} else {
			log.Debug().Str("path", path).Msg("Config file not found, using defaults")
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Dedicated model knob alongside the generic PLACE_ overrides.
	if model := os.Getenv("PLACE_GEMINI_MODEL"); model != "" {
		cfg.Inference.Model = model
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envTransform maps PLACE_MEDIA_MAX_IMAGES to media.max_images. The first
// underscore separates the section; the rest stays joined as the field name.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, field, found := strings.Cut(s, "_")
	if !found {
		return section
	}
	return section + "." + field
}
