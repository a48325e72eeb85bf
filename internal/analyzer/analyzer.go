package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/place-analyzer/internal/cache"
	"github.com/fpang/place-analyzer/internal/confidence"
	"github.com/fpang/place-analyzer/internal/config"
	"github.com/fpang/place-analyzer/internal/inference"
	"github.com/fpang/place-analyzer/internal/media"
	"github.com/fpang/place-analyzer/internal/textnorm"
)

// MediaBatcher processes a bounded batch of image URLs.
type MediaBatcher interface {
	Process(ctx context.Context, urls []string, maxImages int) media.BatchResult
}

// PlaceInferrer runs one multimodal inference request.
type PlaceInferrer interface {
	Analyze(ctx context.Context, req inference.Request) (*inference.PlaceInfo, int, error)
}

// Analyzer runs the pipeline end to end. Construct with New.
type Analyzer struct {
	batch    MediaBatcher
	inferrer PlaceInferrer
	cache    *cache.Manager
	cfg      config.MediaConfig
}

// New wires an Analyzer. A nil cache disables caching entirely.
func New(batch MediaBatcher, inferrer PlaceInferrer, cacheMgr *cache.Manager, cfg config.MediaConfig) *Analyzer {
	return &Analyzer{
		batch:    batch,
		inferrer: inferrer,
		cache:    cacheMgr,
		cfg:      cfg,
	}
}

// Analyze processes one post. The happy path is cache check, text cleaning
// and media processing, one model call, confidence composition, cache write.
// Media failures degrade the result rather than failing it; only an empty
// input or an exhausted model call returns an error.
func (a *Analyzer) Analyze(ctx context.Context, input ContentInput, opts Options) (*Result, error) {
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Str("source", input.SourceURL).Logger()

	imageURLs := a.effectiveImageURLs(input, opts)
	if strings.TrimSpace(input.Text) == "" &&
		strings.TrimSpace(input.Description) == "" &&
		len(input.Hashtags) == 0 &&
		len(imageURLs) == 0 {
		return nil, &Error{Kind: InvalidInput, Message: "post has no text, hashtags, or usable images"}
	}

	key := cache.Key(input.SourceURL, input.Platform, input.Text, imageURLs)
	if a.cache != nil && !opts.BypassCache {
		if data, ok := a.cache.Get(ctx, key); ok {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.Metadata.CacheHit = true
				logger.Info().Str("place", cached.Place.Name).Msg("Returning cached analysis")
				return &cached, nil
			}
			logger.Warn().Msg("Cached entry undecodable, re-analyzing")
			a.cache.Invalidate(ctx, key)
		}
	}

	durations := make(map[string]time.Duration)

	// Media runs concurrently with text cleaning. Text cleaning is pure and
	// cheap, but the batch spends its whole time on the network.
	mediaStart := time.Now()
	batchCh := make(chan media.BatchResult, 1)
	go func() {
		batchCh <- a.batch.Process(ctx, imageURLs, a.maxImages(opts))
	}()

	textStart := time.Now()
	cleaned := textnorm.Clean(input.Text, input.Description, input.Hashtags)
	durations["text"] = time.Since(textStart)

	batch := <-batchCh
	durations["media"] = time.Since(mediaStart)

	outcome := assessFallback(batch)
	if outcome.State != StateNormal {
		logger.Warn().
			Str("state", string(outcome.State)).
			Str("reason", outcome.Reason).
			Msg("Media degradation")
	}

	if batch.AllFailed() && cleaned.Body == "" && len(cleaned.Hashtags) == 0 {
		return nil, &Error{Kind: InvalidInput, Message: "all images failed and the post has no text to fall back on"}
	}

	req := inference.Request{
		Text:     cleaned,
		Images:   batch.Images,
		Platform: input.Platform,
	}

	inferStart := time.Now()
	place, attempts, err := a.inferrer.Analyze(ctx, req)
	durations["inference"] = time.Since(inferStart)
	if err != nil {
		return nil, &Error{Kind: InferenceFailed, Message: "model analysis did not produce a usable result", Err: err}
	}

	final, factors := confidence.Compose(
		place.ModelConfidence,
		len(batch.Images),
		batch.AverageQuality(),
		cleaned.Richness,
		place.FieldCompleteness(),
	)
	if outcome.Penalty > 0 {
		factors["media_failure_penalty"] = -outcome.Penalty
		final -= outcome.Penalty
		if final < 0 {
			final = 0
		}
	}

	result := &Result{
		Place:           *place,
		FinalConfidence: final,
		Degraded:        outcome.State == StateTotalMediaFailure,
		Metadata: Metadata{
			RequestID:         requestID,
			ImagesProvided:    len(input.ImageURLs),
			ImagesAnalyzed:    batch.Succeeded,
			MediaFailures:     batch.Failures,
			AvgImageQuality:   batch.AverageQuality(),
			TextQuality:       cleaned.Richness,
			ConfidenceFactors: factors,
			ModelAttempts:     attempts,
			FallbackState:     string(outcome.State),
			FallbackReason:    outcome.Reason,
			StageDurations:    durations,
			AnalyzedAt:        time.Now().UTC(),
		},
	}

	if a.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			a.cache.Put(ctx, key, data, final)
		} else {
			logger.Warn().Err(err).Msg("Result not cacheable")
		}
	}

	logger.Info().
		Str("place", place.Name).
		Float64("confidence", final).
		Bool("degraded", result.Degraded).
		Int("images_analyzed", batch.Succeeded).
		Msg("Analysis complete")

	return result, nil
}

// effectiveImageURLs applies the image-analysis toggle.
func (a *Analyzer) effectiveImageURLs(input ContentInput, opts Options) []string {
	if !opts.EnableImageAnalysis {
		return nil
	}
	return input.ImageURLs
}

// maxImages resolves the per-run image cap against the configured default.
func (a *Analyzer) maxImages(opts Options) int {
	if opts.MaxImages >= 1 && opts.MaxImages <= 5 {
		return opts.MaxImages
	}
	return a.cfg.MaxImages
}
