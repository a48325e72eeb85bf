package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fpang/place-analyzer/internal/cache"
	"github.com/fpang/place-analyzer/internal/config"
	"github.com/fpang/place-analyzer/internal/inference"
	"github.com/fpang/place-analyzer/internal/media"
)

type stubBatcher struct {
	result  media.BatchResult
	gotURLs []string
	gotMax  int
	calls   int
}

func (s *stubBatcher) Process(ctx context.Context, urls []string, maxImages int) media.BatchResult {
	s.calls++
	s.gotURLs = urls
	s.gotMax = maxImages
	return s.result
}

type stubInferrer struct {
	place    *inference.PlaceInfo
	attempts int
	err      error
	calls    int
	gotReq   inference.Request
}

func (s *stubInferrer) Analyze(ctx context.Context, req inference.Request) (*inference.PlaceInfo, int, error) {
	s.calls++
	s.gotReq = req
	if s.err != nil {
		return nil, s.attempts, s.err
	}
	return s.place, s.attempts, nil
}

func testMediaConfig() config.MediaConfig {
	return config.MediaConfig{MaxImages: 3, Concurrency: 3}
}

func testManager() *cache.Manager {
	return cache.NewManager(cache.NewMemoryStore(), config.CacheConfig{
		LocalCapacity: 16,
		LocalTTL:      time.Minute,
		LowThreshold:  0.5,
		HighThreshold: 0.8,
		LowTTL:        time.Hour,
		MidTTL:        time.Hour,
		HighTTL:       time.Hour,
	})
}

func goodPlace() *inference.PlaceInfo {
	return &inference.PlaceInfo{
		Name:            "Blue Bottle Coffee",
		Categories:      []string{"cafe"},
		Keywords:        []string{"coffee"},
		Description:     "Specialty coffee shop.",
		ModelConfidence: 0.8,
	}
}

func postInput() ContentInput {
	return ContentInput{
		SourceURL: "https://instagram.com/p/abc",
		Text:      "best pour-over in town #BlueBottle #coffee",
		ImageURLs: []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg"},
		Platform:  "instagram",
	}
}

func TestAnalyzeFullSuccess(t *testing.T) {
	batch := &stubBatcher{result: media.BatchResult{
		Images: []*media.NormalizedImage{
			{SourceURL: "https://cdn.example.com/1.jpg", QualityScore: 0.9},
			{SourceURL: "https://cdn.example.com/2.jpg", QualityScore: 0.7},
		},
		Attempted: 2,
		Succeeded: 2,
	}}
	inf := &stubInferrer{place: goodPlace(), attempts: 1}
	a := New(batch, inf, testManager(), testMediaConfig())

	res, err := a.Analyze(context.Background(), postInput(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Place.Name != "Blue Bottle Coffee" {
		t.Errorf("place name = %q", res.Place.Name)
	}
	if res.Degraded {
		t.Error("fully successful run marked degraded")
	}
	if res.Metadata.FallbackState != string(StateNormal) {
		t.Errorf("fallback state = %s, want normal", res.Metadata.FallbackState)
	}
	if res.Metadata.ImagesAnalyzed != 2 || res.Metadata.ImagesProvided != 2 {
		t.Errorf("images analyzed/provided = %d/%d, want 2/2",
			res.Metadata.ImagesAnalyzed, res.Metadata.ImagesProvided)
	}
	// Two surviving images grant the full image bonus on top of the model's
	// own confidence.
	if res.FinalConfidence <= res.Place.ModelConfidence {
		t.Errorf("final confidence %v not lifted above model confidence %v",
			res.FinalConfidence, res.Place.ModelConfidence)
	}
	if len(inf.gotReq.Images) != 2 {
		t.Errorf("inference received %d images, want 2", len(inf.gotReq.Images))
	}
}

func TestAnalyzePartialMediaFailure(t *testing.T) {
	batch := &stubBatcher{result: media.BatchResult{
		Images:    []*media.NormalizedImage{{QualityScore: 0.8}},
		Attempted: 2,
		Succeeded: 1,
		Failures:  []media.Failure{{URL: "https://cdn.example.com/2.jpg", Kind: "http_404"}},
	}}
	inf := &stubInferrer{place: goodPlace(), attempts: 1}
	a := New(batch, inf, nil, testMediaConfig())

	res, err := a.Analyze(context.Background(), postInput(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Metadata.FallbackState != string(StatePartialMediaFailure) {
		t.Errorf("fallback state = %s, want partial_media_failure", res.Metadata.FallbackState)
	}
	if res.Degraded {
		t.Error("partial failure must not mark the result degraded")
	}
	penalty, ok := res.Metadata.ConfidenceFactors["media_failure_penalty"]
	if !ok || penalty != -0.1 {
		t.Errorf("media_failure_penalty factor = %v, %v; want -0.1 recorded", penalty, ok)
	}
	if len(res.Metadata.MediaFailures) != 1 {
		t.Errorf("media failures = %d, want 1", len(res.Metadata.MediaFailures))
	}
}

func TestAnalyzeTotalMediaFailureDegrades(t *testing.T) {
	batch := &stubBatcher{result: media.BatchResult{
		Attempted: 2,
		Failures: []media.Failure{
			{URL: "https://cdn.example.com/1.jpg", Kind: "timeout"},
			{URL: "https://cdn.example.com/2.jpg", Kind: "http_500"},
		},
	}}
	inf := &stubInferrer{place: goodPlace(), attempts: 1}
	a := New(batch, inf, nil, testMediaConfig())

	res, err := a.Analyze(context.Background(), postInput(), DefaultOptions())
	if err != nil {
		t.Fatalf("text-only fallback should succeed: %v", err)
	}

	if !res.Degraded {
		t.Error("total media failure must mark the result degraded")
	}
	if res.Metadata.FallbackState != string(StateTotalMediaFailure) {
		t.Errorf("fallback state = %s", res.Metadata.FallbackState)
	}
	if len(inf.gotReq.Images) != 0 {
		t.Errorf("degraded run sent %d images to inference, want 0", len(inf.gotReq.Images))
	}
	if _, ok := res.Metadata.ConfidenceFactors["media_failure_penalty"]; ok {
		t.Error("total failure should not stack a partial-failure penalty")
	}
}

func TestDegradedConfidenceNeverExceedsImageBacked(t *testing.T) {
	inf := &stubInferrer{place: goodPlace(), attempts: 1}

	degradedBatch := &stubBatcher{result: media.BatchResult{
		Attempted: 1,
		Failures:  []media.Failure{{URL: "https://cdn.example.com/1.jpg", Kind: "timeout"}},
	}}
	withImage := &stubBatcher{result: media.BatchResult{
		Images:    []*media.NormalizedImage{{QualityScore: 0.5}},
		Attempted: 1,
		Succeeded: 1,
	}}

	input := postInput()
	input.ImageURLs = input.ImageURLs[:1]

	degraded, err := New(degradedBatch, inf, nil, testMediaConfig()).
		Analyze(context.Background(), input, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	backed, err := New(withImage, inf, nil, testMediaConfig()).
		Analyze(context.Background(), input, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if degraded.FinalConfidence > backed.FinalConfidence {
		t.Errorf("degraded confidence %v exceeds image-backed confidence %v",
			degraded.FinalConfidence, backed.FinalConfidence)
	}
}

func TestAnalyzeEmptyInputFailsFast(t *testing.T) {
	batch := &stubBatcher{}
	inf := &stubInferrer{place: goodPlace()}
	a := New(batch, inf, nil, testMediaConfig())

	_, err := a.Analyze(context.Background(), ContentInput{SourceURL: "https://x.com/p/1"}, DefaultOptions())

	var aErr *Error
	if !errors.As(err, &aErr) || aErr.Kind != InvalidInput {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	if batch.calls != 0 || inf.calls != 0 {
		t.Error("empty input must not reach the media or inference stages")
	}
}

func TestAnalyzeAllFailedWithNoTextErrors(t *testing.T) {
	batch := &stubBatcher{result: media.BatchResult{
		Attempted: 1,
		Failures:  []media.Failure{{URL: "https://cdn.example.com/1.jpg", Kind: "timeout"}},
	}}
	inf := &stubInferrer{place: goodPlace()}
	a := New(batch, inf, nil, testMediaConfig())

	input := ContentInput{
		SourceURL: "https://x.com/p/1",
		ImageURLs: []string{"https://cdn.example.com/1.jpg"},
	}
	_, err := a.Analyze(context.Background(), input, DefaultOptions())

	var aErr *Error
	if !errors.As(err, &aErr) || aErr.Kind != InvalidInput {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	if inf.calls != 0 {
		t.Error("nothing analyzable should never reach inference")
	}
}

func TestAnalyzeInferenceFailureWrapped(t *testing.T) {
	batch := &stubBatcher{result: media.BatchResult{Attempted: 0}}
	infErr := &inference.Error{Kind: inference.ServiceUnavailable, Attempts: 3}
	inf := &stubInferrer{err: infErr, attempts: 3}
	a := New(batch, inf, nil, testMediaConfig())

	input := ContentInput{SourceURL: "https://x.com/p/1", Text: "nice place"}
	_, err := a.Analyze(context.Background(), input, DefaultOptions())

	var aErr *Error
	if !errors.As(err, &aErr) || aErr.Kind != InferenceFailed {
		t.Fatalf("expected inference_failed, got %v", err)
	}
	var inner *inference.Error
	if !errors.As(err, &inner) || inner.Kind != inference.ServiceUnavailable {
		t.Error("underlying inference error not preserved in the chain")
	}
}

func TestAnalyzeCacheHitSkipsPipeline(t *testing.T) {
	batch := &stubBatcher{result: media.BatchResult{
		Images:    []*media.NormalizedImage{{QualityScore: 0.9}},
		Attempted: 1,
		Succeeded: 1,
	}}
	inf := &stubInferrer{place: goodPlace(), attempts: 1}
	a := New(batch, inf, testManager(), testMediaConfig())
	ctx := context.Background()

	input := postInput()
	input.ImageURLs = input.ImageURLs[:1]

	first, err := a.Analyze(ctx, input, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if first.Metadata.CacheHit {
		t.Error("first run must be a miss")
	}

	second, err := a.Analyze(ctx, input, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !second.Metadata.CacheHit {
		t.Error("second run should be served from cache")
	}
	if inf.calls != 1 || batch.calls != 1 {
		t.Errorf("pipeline ran %d/%d times, want once", inf.calls, batch.calls)
	}
	if second.FinalConfidence != first.FinalConfidence {
		t.Errorf("cached confidence %v differs from original %v",
			second.FinalConfidence, first.FinalConfidence)
	}
}

func TestAnalyzeBypassCache(t *testing.T) {
	batch := &stubBatcher{result: media.BatchResult{}}
	inf := &stubInferrer{place: goodPlace(), attempts: 1}
	a := New(batch, inf, testManager(), testMediaConfig())
	ctx := context.Background()

	input := ContentInput{SourceURL: "https://x.com/p/1", Text: "nice spot"}
	opts := DefaultOptions()

	if _, err := a.Analyze(ctx, input, opts); err != nil {
		t.Fatal(err)
	}
	opts.BypassCache = true
	if _, err := a.Analyze(ctx, input, opts); err != nil {
		t.Fatal(err)
	}
	if inf.calls != 2 {
		t.Errorf("bypass run still used the cache; inference calls = %d", inf.calls)
	}
}

func TestAnalyzeImageToggleAndCap(t *testing.T) {
	batch := &stubBatcher{result: media.BatchResult{}}
	inf := &stubInferrer{place: goodPlace(), attempts: 1}
	a := New(batch, inf, nil, testMediaConfig())
	ctx := context.Background()

	opts := DefaultOptions()
	opts.EnableImageAnalysis = false
	if _, err := a.Analyze(ctx, postInput(), opts); err != nil {
		t.Fatal(err)
	}
	if len(batch.gotURLs) != 0 {
		t.Errorf("image analysis disabled but %d URLs were processed", len(batch.gotURLs))
	}

	opts = DefaultOptions()
	opts.MaxImages = 5
	if _, err := a.Analyze(ctx, postInput(), opts); err != nil {
		t.Fatal(err)
	}
	if batch.gotMax != 5 {
		t.Errorf("per-run cap = %d, want 5", batch.gotMax)
	}

	opts.MaxImages = 99 // out of range, fall back to config
	if _, err := a.Analyze(ctx, postInput(), opts); err != nil {
		t.Fatal(err)
	}
	if batch.gotMax != 3 {
		t.Errorf("out-of-range cap resolved to %d, want configured 3", batch.gotMax)
	}
}
