// Package confidence combines the model's self-reported confidence with
// independently computed process signals into one final score. The
// combination is a fixed weighted formula, not a learned model, so identical
// inputs always produce identical output.
package confidence

// Factor names recorded in the breakdown map.
const (
	FactorModelConfidence   = "model_confidence"
	FactorImageBonus        = "image_bonus"
	FactorTextBonus         = "text_bonus"
	FactorAvgImageQuality   = "avg_image_quality"
	FactorFieldCompleteness = "field_completeness"
)

// Bonus caps and weights.
const (
	imageBonusPerImage = 0.1
	imageBonusCap      = 0.2
	textBonusWeight    = 0.1
)

// Compose derives the final confidence score and its factor breakdown.
// Base is the model's own confidence; image evidence adds up to +0.2
// (0.1 per image), text quality adds up to +0.1. The sum is clamped to [0,1].
//
// avgImageQuality and fieldCompleteness do not move the score directly; they
// are recorded in the breakdown for observability and downstream penalty
// decisions.
func Compose(modelConfidence float64, imageCount int, avgImageQuality, textQuality, fieldCompleteness float64) (float64, map[string]float64) {
	imageBonus := float64(imageCount) * imageBonusPerImage
	if imageBonus > imageBonusCap {
		imageBonus = imageBonusCap
	}
	textBonus := clamp01(textQuality) * textBonusWeight

	final := clamp01(clamp01(modelConfidence) + imageBonus + textBonus)

	factors := map[string]float64{
		FactorModelConfidence:   clamp01(modelConfidence),
		FactorImageBonus:        imageBonus,
		FactorTextBonus:         textBonus,
		FactorAvgImageQuality:   clamp01(avgImageQuality),
		FactorFieldCompleteness: clamp01(fieldCompleteness),
	}

	return final, factors
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
