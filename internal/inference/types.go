package inference

import (
	"github.com/fpang/place-analyzer/internal/media"
	"github.com/fpang/place-analyzer/internal/textnorm"
)

// Request is the input for one analysis attempt: cleaned text plus zero or
// more normalized images. It is built fresh per request and never reused.
type Request struct {
	Text     textnorm.CleanedText
	Images   []*media.NormalizedImage
	Platform string
}

// PlaceInfo is the validated, typed result parsed from the model response.
// Name is required; every other field is explicitly nullable. The model is
// instructed to return null rather than guess, and absent values stay nil
// instead of being defaulted.
type PlaceInfo struct {
	Name            string   `json:"name"`
	Address         *string  `json:"address"`
	Categories      []string `json:"categories"`
	BusinessHours   *string  `json:"businessHours"`
	Phone           *string  `json:"phone"`
	Keywords        []string `json:"keywords"`
	Description     string   `json:"description"`
	ModelConfidence float64  `json:"confidence"`
}

// FieldCompleteness returns the fraction of PlaceInfo fields the model filled
// in, in [0,1]. It is an observability signal for the confidence breakdown.
func (p *PlaceInfo) FieldCompleteness() float64 {
	filled := 0
	total := 7

	if p.Name != "" {
		filled++
	}
	if p.Address != nil && *p.Address != "" {
		filled++
	}
	if len(p.Categories) > 0 {
		filled++
	}
	if p.BusinessHours != nil && *p.BusinessHours != "" {
		filled++
	}
	if p.Phone != nil && *p.Phone != "" {
		filled++
	}
	if len(p.Keywords) > 0 {
		filled++
	}
	if p.Description != "" {
		filled++
	}

	return float64(filled) / float64(total)
}
