// Package jsonutil extracts and parses JSON from model responses that may be
// wrapped in markdown code fences or embedded in surrounding prose.
package jsonutil

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// StripFences removes ```json ... ``` or ``` ... ``` wrapping from text.
// Returns the content between the fences, or the original text unchanged when
// no fences are present.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}

	return strings.Join(lines[1:end], "\n")
}

// Extract returns the JSON object or array embedded in text. It locates the
// first { or [ and pairs it with the last matching } or ].
func Extract(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON content found")
	}

	start := objIdx
	closer := "}"
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start = arrIdx
		closer = "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("no closing %s found", closer)
	}

	return text[:end+1], nil
}

// Parse strips markdown fences from a raw model response, extracts the JSON
// payload, and unmarshals it into T.
func Parse[T any](raw string) (T, error) {
	var zero T

	jsonStr, err := Extract(StripFences(raw))
	if err != nil {
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		preview := jsonStr
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return result, nil
}
