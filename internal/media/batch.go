package media

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Failure records one image that could not be fetched or normalized.
type Failure struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// BatchResult aggregates the outcome of one media batch. Invariants:
// Succeeded == len(Images), Succeeded + len(Failures) == Attempted, and
// Attempted == min(len(urls), maxImages).
type BatchResult struct {
	Images    []*NormalizedImage
	Attempted int
	Succeeded int
	Failures  []Failure
}

// AllFailed reports the "media unavailable" signal: images were attempted
// and none survived. This is what triggers the text-only fallback path.
func (r BatchResult) AllFailed() bool {
	return r.Attempted > 0 && r.Succeeded == 0
}

// AverageQuality returns the mean quality score of the surviving images,
// or 0 when none survived.
func (r BatchResult) AverageQuality() float64 {
	if len(r.Images) == 0 {
		return 0
	}
	var sum float64
	for _, img := range r.Images {
		sum += img.QualityScore
	}
	return sum / float64(len(r.Images))
}

// BatchProcessor fans fetch+normalize out over a bounded set of URLs. Each
// item's failure is isolated; the batch itself never hard-fails because some
// images failed.
type BatchProcessor struct {
	fetcher     Fetcher
	normalizer  Normalizer
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given concurrency cap.
func NewBatchProcessor(fetcher Fetcher, normalizer Normalizer, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 3
	}
	return &BatchProcessor{
		fetcher:     fetcher,
		normalizer:  normalizer,
		concurrency: concurrency,
	}
}

// Process fetches and normalizes the first maxImages URLs under the
// concurrency cap. Completion order across URLs is unordered; each result
// carries its SourceURL as the only ordering guarantee.
func (p *BatchProcessor) Process(ctx context.Context, urls []string, maxImages int) BatchResult {
	if maxImages > 0 && len(urls) > maxImages {
		urls = urls[:maxImages]
	}

	result := BatchResult{Attempted: len(urls)}
	if len(urls) == 0 {
		return result
	}

	start := time.Now()
	log.Debug().
		Int("attempted", result.Attempted).
		Int("concurrency", p.concurrency).
		Msg("Starting media batch")

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.concurrency)
	)

	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			sem <- struct{}{}        // Acquire semaphore
			defer func() { <-sem }() // Release semaphore

			img, err := p.processOne(ctx, url)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("url", url).Msg("Media item failed, continuing batch")
				result.Failures = append(result.Failures, Failure{URL: url, Kind: failureKind(err)})
				return
			}
			result.Images = append(result.Images, img)
			result.Succeeded++
		}(url)
	}
	wg.Wait()

	log.Info().
		Int("attempted", result.Attempted).
		Int("succeeded", result.Succeeded).
		Int("failed", len(result.Failures)).
		Dur("duration", time.Since(start)).
		Msg("Media batch complete")

	return result
}

func (p *BatchProcessor) processOne(ctx context.Context, url string) (*NormalizedImage, error) {
	raw, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	img, err := p.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	img.SourceURL = url
	return img, nil
}

// failureKind maps an item error to its reason kind for the batch record.
// HTTP status failures carry the status code, e.g. "http_404".
func failureKind(err error) string {
	var dl *DownloadError
	if errors.As(err, &dl) {
		if dl.Kind == DownloadHTTPStatus {
			return fmt.Sprintf("http_%d", dl.StatusCode)
		}
		return string(dl.Kind)
	}
	var val *ValidationError
	if errors.As(err, &val) {
		return string(val.Kind)
	}
	return "unknown"
}
