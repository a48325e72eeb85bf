package media

import "math"

// QualityScorer produces a heuristic evidence-quality score for an image.
// It is a monotonic confidence signal, not a correctness oracle, and is kept
// behind an interface so the constants can be tuned or the heuristic replaced
// without touching the orchestration.
type QualityScorer interface {
	// Score rates the image by its original dimensions and raw byte size,
	// returning a value in [0,1].
	Score(width, height, byteSize int) float64
}

// heuristicScorer is the default QualityScorer: a weighted sum of resolution,
// compression-ratio plausibility, and aspect-ratio normality.
type heuristicScorer struct {
	resolutionWeight  float64
	compressionWeight float64
	aspectWeight      float64
}

// DefaultScorer returns the default heuristic scorer.
func DefaultScorer() QualityScorer {
	return &heuristicScorer{
		resolutionWeight:  0.5,
		compressionWeight: 0.3,
		aspectWeight:      0.2,
	}
}

// referencePixels is the full-score resolution reference (1920x1080).
const referencePixels = 1920.0 * 1080.0

func (s *heuristicScorer) Score(width, height, byteSize int) float64 {
	if width <= 0 || height <= 0 || byteSize <= 0 {
		return 0
	}

	pixels := float64(width) * float64(height)

	resolution := pixels / referencePixels
	if resolution > 1 {
		resolution = 1
	}

	score := s.resolutionWeight*resolution +
		s.compressionWeight*compressionPlausibility(float64(byteSize)/pixels) +
		s.aspectWeight*aspectNormality(width, height)

	return clamp01(score)
}

// compressionPlausibility rates bytes-per-pixel. Compressed photos typically
// land between 0.05 and 2.0 bpp; both over-compression (detail loss) and
// implausibly high density (non-photographic content) are penalized.
func compressionPlausibility(bpp float64) float64 {
	switch {
	case bpp < 0.02:
		return 0
	case bpp < 0.05:
		return (bpp - 0.02) / 0.03
	case bpp <= 2.0:
		return 1
	case bpp <= 8.0:
		return 1 - (bpp-2.0)/6.0
	default:
		return 0
	}
}

// aspectNormality penalizes extreme aspect ratios: full score up to 2:1,
// declining linearly to zero at 5:1.
func aspectNormality(width, height int) float64 {
	long := math.Max(float64(width), float64(height))
	short := math.Min(float64(width), float64(height))
	ratio := long / short
	switch {
	case ratio <= 2:
		return 1
	case ratio >= 5:
		return 0
	default:
		return 1 - (ratio-2)/3
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
