// Package config provides layered configuration for the place analysis
// pipeline: built-in defaults, an optional YAML file, and environment
// variable overrides, in that order of precedence.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the analysis pipeline.
type Config struct {
	Media     MediaConfig     `koanf:"media"`
	Inference InferenceConfig `koanf:"inference"`
	Cache     CacheConfig     `koanf:"cache"`
}

// MediaConfig controls remote media fetching and normalization.
type MediaConfig struct {
	// FetchTimeout bounds a single image download.
	FetchTimeout time.Duration `koanf:"fetch_timeout" validate:"gt=0"`

	// MaxBytes is the maximum accepted payload size for one image.
	MaxBytes int64 `koanf:"max_bytes" validate:"gt=0"`

	// MaxImages caps how many image URLs one request may analyze.
	MaxImages int `koanf:"max_images" validate:"gte=1,lte=5"`

	// Concurrency bounds in-flight fetch+normalize pipelines per request.
	Concurrency int `koanf:"concurrency" validate:"gte=1,lte=10"`

	// MinDimension and MaxDimension bound accepted pixel dimensions.
	MinDimension int `koanf:"min_dimension" validate:"gt=0"`
	MaxDimension int `koanf:"max_dimension" validate:"gtfield=MinDimension"`

	// TargetDimension is the maximum output dimension after normalization.
	// Larger images are scaled down; smaller images are never upscaled.
	TargetDimension int `koanf:"target_dimension" validate:"gt=0"`
}

// InferenceConfig controls the external model call.
type InferenceConfig struct {
	// Model is the Gemini model ID. Overridable via PLACE_GEMINI_MODEL.
	Model string `koanf:"model" validate:"required"`

	// MaxAttempts is the total attempt budget, including the first call.
	MaxAttempts int `koanf:"max_attempts" validate:"gte=1,lte=5"`

	// InitialBackoff is the delay before the first retry; it doubles per retry.
	InitialBackoff time.Duration `koanf:"initial_backoff" validate:"gt=0"`

	// Timeout bounds a single model call.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// CacheConfig controls the two cache tiers and the confidence-tiered TTLs.
type CacheConfig struct {
	// LocalCapacity bounds the in-process tier's entry count.
	LocalCapacity int `koanf:"local_capacity" validate:"gte=1"`

	// LocalTTL caps how long an entry may stay in the in-process tier.
	LocalTTL time.Duration `koanf:"local_ttl" validate:"gt=0"`

	// Dir is the shared-tier storage directory. Empty selects an
	// in-memory store (useful for one-shot CLI runs and tests).
	Dir string `koanf:"dir"`

	// Confidence thresholds selecting the TTL tier.
	LowThreshold  float64 `koanf:"low_threshold" validate:"gte=0,lte=1"`
	HighThreshold float64 `koanf:"high_threshold" validate:"gte=0,lte=1,gtfield=LowThreshold"`

	// TTL per confidence tier. Low-confidence results are cheap to retry
	// and likely to improve on re-analysis, so they expire sooner.
	LowTTL  time.Duration `koanf:"low_ttl" validate:"gt=0"`
	MidTTL  time.Duration `koanf:"mid_ttl" validate:"gt=0"`
	HighTTL time.Duration `koanf:"high_ttl" validate:"gt=0"`
}

// Default returns a Config with all default values. These are applied first,
// then overridden by the config file and environment variables.
func Default() *Config {
	return &Config{
		Media: MediaConfig{
			FetchTimeout:    10 * time.Second,
			MaxBytes:        10 << 20, // 10 MB
			MaxImages:       3,
			Concurrency:     3,
			MinDimension:    100,
			MaxDimension:    10000,
			TargetDimension: 1024,
		},
		Inference: InferenceConfig{
			Model:          "gemini-3-flash-preview",
			MaxAttempts:    3,
			InitialBackoff: 1 * time.Second,
			Timeout:        60 * time.Second,
		},
		Cache: CacheConfig{
			LocalCapacity: 1024,
			LocalTTL:      5 * time.Minute,
			Dir:           "",
			LowThreshold:  0.5,
			HighThreshold: 0.8,
			LowTTL:        6 * time.Hour,
			MidTTL:        72 * time.Hour,
			HighTTL:       14 * 24 * time.Hour,
		},
	}
}

// Validate checks the configuration against its struct-tag constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
