// Package textnorm deterministically cleans post text and extracts hashtags,
// keywords, and location hints. It performs no I/O and never calls the model;
// its outputs are prompt context and secondary confidence signals.
package textnorm

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// CleanedText is the deterministic text-processing result for one post.
type CleanedText struct {
	// Body is the whitespace-collapsed post text plus description.
	Body string `json:"body"`

	// Hashtags are deduplicated case-insensitively; the casing of the
	// first occurrence is kept for display.
	Hashtags []string `json:"hashtags"`

	// Keywords are the highest-signal non-stopword tokens from Body.
	Keywords []string `json:"keywords"`

	// LocationHints are gazetteer tokens found in the text or hashtags.
	LocationHints []string `json:"locationHints"`

	// Richness scores how much usable text evidence the post carries, in
	// [0,1]. It is a confidence signal, not a linguistic quality measure.
	Richness float64 `json:"richness"`
}

var (
	hashtagPattern    = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// maxKeywords bounds the keyword list. More keywords add prompt noise, not
// signal.
const maxKeywords = 10

// Clean normalizes the post text and extracts hashtags, keywords, and
// location hints. Empty input yields an empty CleanedText, never an error.
func Clean(text, description string, hashtags []string) CleanedText {
	body := strings.TrimSpace(text)
	if desc := strings.TrimSpace(description); desc != "" {
		if body != "" {
			body += " "
		}
		body += desc
	}
	body = whitespacePattern.ReplaceAllString(body, " ")

	tags := dedupeHashtags(append(extractHashtags(body), hashtags...))
	keywords := extractKeywords(body)
	hints := extractLocationHints(body, tags)

	return CleanedText{
		Body:          body,
		Hashtags:      tags,
		Keywords:      keywords,
		LocationHints: hints,
		Richness:      richness(body, tags, keywords),
	}
}

// extractHashtags returns #-prefixed tokens from the text, without the prefix.
func extractHashtags(text string) []string {
	matches := hashtagPattern.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.TrimPrefix(m, "#"))
	}
	return tags
}

// dedupeHashtags removes duplicates case-insensitively, keeping the casing of
// the first occurrence.
func dedupeHashtags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// extractKeywords picks the most frequent non-stopword tokens of length >= 3.
// Frequency ties break toward longer tokens, then lexicographic order so the
// result is deterministic.
func extractKeywords(body string) []string {
	counts := make(map[string]int)
	for _, tok := range tokenize(body) {
		tok = strings.ToLower(tok)
		if len([]rune(tok)) < 3 || isStopword(tok) {
			continue
		}
		counts[tok]++
	}

	keywords := make([]string, 0, len(counts))
	for tok := range counts {
		keywords = append(keywords, tok)
	}
	sort.Slice(keywords, func(i, j int) bool {
		a, b := keywords[i], keywords[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// tokenize splits text on anything that is not a letter, digit, or underscore.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// richness combines body length, hashtag count, and keyword count into a
// [0,1] text-evidence score.
func richness(body string, tags, keywords []string) float64 {
	if body == "" && len(tags) == 0 {
		return 0
	}

	// 200 runes of body text is treated as fully rich.
	lengthScore := float64(len([]rune(body))) / 200
	if lengthScore > 1 {
		lengthScore = 1
	}
	tagScore := float64(len(tags)) / 5
	if tagScore > 1 {
		tagScore = 1
	}
	keywordScore := float64(len(keywords)) / float64(maxKeywords)

	score := 0.5*lengthScore + 0.25*tagScore + 0.25*keywordScore
	if score > 1 {
		score = 1
	}
	return score
}
