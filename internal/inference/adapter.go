package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/place-analyzer/internal/config"
	"github.com/fpang/place-analyzer/internal/jsonutil"
)

// maxDescriptionRunes bounds the description field of a parsed result.
const maxDescriptionRunes = 500

// generateFunc matches the Gemini SDK's GenerateContent signature so tests
// can substitute the model.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Adapter turns one Request into exactly one multimodal prompt, calls the
// model with bounded retries, and validates the JSON response into PlaceInfo.
type Adapter struct {
	generate       generateFunc
	model          string
	maxAttempts    int
	initialBackoff time.Duration
	timeout        time.Duration
}

// NewAdapter creates an adapter backed by the given Gemini client.
func NewAdapter(client *genai.Client, cfg config.InferenceConfig) *Adapter {
	return &Adapter{
		generate:       client.Models.GenerateContent,
		model:          cfg.Model,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		timeout:        cfg.Timeout,
	}
}

// NewGeminiClient creates a Gemini API client using the provided HTTP client,
// so the pipeline's outbound calls share one bounded connection pool.
func NewGeminiClient(ctx context.Context, apiKey string, httpClient *http.Client) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// Analyze runs the inference call with retry and backoff. Only rate-limit,
// transient-unavailable, and timeout failures are retried; auth and
// malformed-request failures fail immediately. Returns the parsed PlaceInfo
// and the number of attempts made.
func (a *Adapter) Analyze(ctx context.Context, req Request) (*PlaceInfo, int, error) {
	contents := buildContents(req)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	backoff := a.initialBackoff
	for attempt := 1; ; attempt++ {
		log.Debug().
			Str("model", a.model).
			Int("attempt", attempt).
			Int("image_count", len(req.Images)).
			Msg("Calling model for place analysis")

		callStart := time.Now()
		resp, err := a.callOnce(ctx, contents, cfg)
		duration := time.Since(callStart)

		if err == nil {
			place, parseErr := a.parseResponse(resp)
			if parseErr != nil {
				parseErr.Attempts = attempt
				log.Error().Err(parseErr).Dur("duration", duration).Msg("Model response failed validation")
				return nil, attempt, parseErr
			}
			log.Info().
				Str("place", place.Name).
				Int("attempts", attempt).
				Dur("duration", duration).
				Msg("Place analysis complete")
			return place, attempt, nil
		}

		infErr := classify(err)
		infErr.Attempts = attempt
		if !infErr.Retryable() || attempt >= a.maxAttempts {
			log.Error().
				Err(infErr).
				Str("kind", string(infErr.Kind)).
				Int("attempts", attempt).
				Msg("Place analysis failed")
			return nil, attempt, infErr
		}

		log.Warn().
			Str("kind", string(infErr.Kind)).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Retryable model failure, backing off")

		if err := sleepCtx(ctx, backoff); err != nil {
			timeoutErr := &Error{Kind: Timeout, Message: "request abandoned during backoff", Attempts: attempt, Err: err}
			return nil, attempt, timeoutErr
		}
		backoff *= 2
	}
}

// callOnce performs a single model call under the per-call timeout.
func (a *Adapter) callOnce(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.generate(callCtx, a.model, contents, cfg)
}

// parseResponse extracts and validates PlaceInfo from the model response.
// A missing or empty name is a hard InvalidResponse failure; no placeholder
// name is ever synthesized.
func (a *Adapter) parseResponse(resp *genai.GenerateContentResponse) (*PlaceInfo, *Error) {
	if resp == nil {
		return nil, &Error{Kind: InvalidResponse, Message: "empty response from model"}
	}

	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return nil, &Error{Kind: InvalidResponse, Message: "response contained no text"}
	}

	place, err := jsonutil.Parse[PlaceInfo](raw)
	if err != nil {
		return nil, &Error{Kind: InvalidResponse, Message: "response is not valid JSON", Err: err}
	}

	place.Name = strings.TrimSpace(place.Name)
	if place.Name == "" {
		return nil, &Error{Kind: InvalidResponse, Message: "required field name is missing or empty"}
	}

	if runes := []rune(place.Description); len(runes) > maxDescriptionRunes {
		place.Description = string(runes[:maxDescriptionRunes])
	}
	if place.ModelConfidence < 0 {
		place.ModelConfidence = 0
	}
	if place.ModelConfidence > 1 {
		place.ModelConfidence = 1
	}

	return &place, nil
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
