package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	// Decoder registrations for the format allow-list.
	_ "image/gif"
	_ "image/png"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/fpang/place-analyzer/internal/config"
)

// GPSCoordinate is a decoded EXIF GPS position.
type GPSCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NormalizedImage is a validated image in the canonical shape the inference
// API expects: flat truecolor JPEG, at most TargetDimension on the long edge.
// The pixel buffer lives for one request only; only derived metadata may
// outlive it in the cache.
type NormalizedImage struct {
	// SourceURL is the URL the raw bytes came from.
	SourceURL string

	// Data is the canonical JPEG encoding.
	Data []byte

	Width    int
	Height   int
	ByteSize int

	// Format is the canonical output format, always "jpeg".
	Format string

	// SourceFormat is the decoded input format (jpeg, png, gif, webp).
	SourceFormat string

	// QualityScore is the heuristic evidence-quality signal in [0,1].
	QualityScore float64

	// Identity is a hash of the raw downloaded bytes, not the URL, so a URL
	// whose backing image changed produces a different identity.
	Identity string

	// Best-effort EXIF metadata; nil when absent or unparseable.
	CaptureTime *time.Time
	GPS         *GPSCoordinate
}

// MIMEType returns the canonical payload MIME type.
func (n *NormalizedImage) MIMEType() string { return "image/jpeg" }

// supportedFormats is the decode allow-list.
var supportedFormats = map[string]struct{}{
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

// jpegQuality is the canonical re-encode quality.
const jpegQuality = 85

// Normalizer converts raw downloaded bytes into a NormalizedImage.
type Normalizer interface {
	Normalize(raw []byte) (*NormalizedImage, error)
}

// ImageNormalizer validates, flattens, and resizes images, and extracts
// best-effort EXIF metadata and a heuristic quality score.
type ImageNormalizer struct {
	minDimension    int
	maxDimension    int
	targetDimension int
	scorer          QualityScorer
}

// NewImageNormalizer creates a normalizer. scorer may be nil, which selects
// the default heuristic scorer.
func NewImageNormalizer(cfg config.MediaConfig, scorer QualityScorer) *ImageNormalizer {
	if scorer == nil {
		scorer = DefaultScorer()
	}
	return &ImageNormalizer{
		minDimension:    cfg.MinDimension,
		maxDimension:    cfg.MaxDimension,
		targetDimension: cfg.TargetDimension,
		scorer:          scorer,
	}
}

// Normalize decodes and validates raw image bytes, composites alpha onto
// white, promotes indexed/greyscale to truecolor, downscales to the target
// dimension (never upscales), and re-encodes as JPEG.
func (n *ImageNormalizer) Normalize(raw []byte) (*NormalizedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &ValidationError{Kind: ValidationUndecodable, Err: err}
	}
	if _, ok := supportedFormats[format]; !ok {
		return nil, &ValidationError{Kind: ValidationUnsupportedFormat, Detail: format}
	}

	bounds := img.Bounds()
	srcWidth, srcHeight := bounds.Dx(), bounds.Dy()
	if srcWidth < n.minDimension || srcHeight < n.minDimension {
		return nil, &ValidationError{
			Kind:   ValidationTooSmall,
			Detail: fmt.Sprintf("%dx%d below minimum %dx%d", srcWidth, srcHeight, n.minDimension, n.minDimension),
		}
	}
	if srcWidth > n.maxDimension || srcHeight > n.maxDimension {
		return nil, &ValidationError{
			Kind:   ValidationTooLarge,
			Detail: fmt.Sprintf("%dx%d above maximum %dx%d", srcWidth, srcHeight, n.maxDimension, n.maxDimension),
		}
	}

	outWidth, outHeight := fitDimensions(srcWidth, srcHeight, n.targetDimension)

	// Composite onto a white truecolor canvas. This flattens alpha and
	// promotes paletted/greyscale inputs in a single pass.
	canvas := image.NewRGBA(image.Rect(0, 0, outWidth, outHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	if outWidth == srcWidth && outHeight == srcHeight {
		draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, &ValidationError{Kind: ValidationUndecodable, Err: fmt.Errorf("re-encode: %w", err)}
	}

	normalized := &NormalizedImage{
		Data:         buf.Bytes(),
		Width:        outWidth,
		Height:       outHeight,
		ByteSize:     buf.Len(),
		Format:       "jpeg",
		SourceFormat: format,
		QualityScore: n.scorer.Score(srcWidth, srcHeight, len(raw)),
		Identity:     fmt.Sprintf("%016x", xxhash.Sum64(raw)),
	}

	// EXIF extraction is best-effort: a missing or unparseable block yields
	// nil fields, never a normalization failure.
	captureTime, gps := extractMetadata(raw)
	normalized.CaptureTime = captureTime
	normalized.GPS = gps

	log.Debug().
		Str("source_format", format).
		Int("src_width", srcWidth).
		Int("src_height", srcHeight).
		Int("out_width", outWidth).
		Int("out_height", outHeight).
		Int("out_bytes", buf.Len()).
		Float64("quality", normalized.QualityScore).
		Msg("Image normalized")

	return normalized, nil
}

// fitDimensions scales (width, height) down to fit within target on the long
// edge, preserving aspect ratio. Dimensions at or below target pass through.
func fitDimensions(width, height, target int) (int, int) {
	if width <= target && height <= target {
		return width, height
	}
	if width > height {
		return target, int(float64(height) * float64(target) / float64(width))
	}
	return int(float64(width) * float64(target) / float64(height)), target
}
