// Package analyzer orchestrates the full place-analysis pipeline: cache
// lookup, text cleaning, concurrent media processing, model inference,
// confidence composition, and cache write-back.
package analyzer

import (
	"time"

	"github.com/fpang/place-analyzer/internal/inference"
	"github.com/fpang/place-analyzer/internal/media"
)

// ContentInput is one social post to analyze.
type ContentInput struct {
	// SourceURL identifies the post itself, not its media.
	SourceURL   string   `json:"sourceUrl"`
	Text        string   `json:"text"`
	Description string   `json:"description,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
	Platform    string   `json:"platform,omitempty"`
}

// Options tunes a single analysis run.
type Options struct {
	// EnableImageAnalysis toggles the media pipeline. When false the run is
	// text-only and image URLs are ignored.
	EnableImageAnalysis bool
	// MaxImages overrides the configured per-post image cap when between 1
	// and 5. Zero means use the configured default.
	MaxImages int
	// BypassCache forces a fresh analysis and overwrites the cached entry.
	BypassCache bool
}

// DefaultOptions returns the standard run options with image analysis on.
func DefaultOptions() Options {
	return Options{EnableImageAnalysis: true}
}

// Metadata records how the result was produced, for observability and for
// judging a cached result's provenance later.
type Metadata struct {
	RequestID         string                   `json:"requestId"`
	CacheHit          bool                     `json:"cacheHit"`
	ImagesProvided    int                      `json:"imagesProvided"`
	ImagesAnalyzed    int                      `json:"imagesAnalyzed"`
	MediaFailures     []media.Failure          `json:"mediaFailures,omitempty"`
	AvgImageQuality   float64                  `json:"avgImageQuality"`
	TextQuality       float64                  `json:"textQuality"`
	ConfidenceFactors map[string]float64       `json:"confidenceFactors"`
	ModelAttempts     int                      `json:"modelAttempts"`
	FallbackState     string                   `json:"fallbackState"`
	FallbackReason    string                   `json:"fallbackReason,omitempty"`
	StageDurations    map[string]time.Duration `json:"stageDurations,omitempty"`
	AnalyzedAt        time.Time                `json:"analyzedAt"`
}

// Result is the final analysis output. It is what gets serialized into the
// cache, so all fields must round-trip through JSON.
type Result struct {
	Place           inference.PlaceInfo `json:"place"`
	FinalConfidence float64             `json:"finalConfidence"`
	Degraded        bool                `json:"degraded"`
	Metadata        Metadata            `json:"metadata"`
}
