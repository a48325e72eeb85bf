package textnorm

import "strings"

// gazetteer lists administrative-region and venue-locality tokens matched
// against post text and hashtags. Matching is purely additive: a hit becomes
// a location hint in the prompt, a miss changes nothing.
var gazetteer = map[string]struct{}{
	// Cities commonly tagged on the supported platforms.
	"seoul": {}, "busan": {}, "incheon": {}, "daegu": {}, "jeju": {},
	"tokyo": {}, "osaka": {}, "kyoto": {}, "fukuoka": {},
	"singapore": {}, "bangkok": {}, "taipei": {}, "hongkong": {},
	"newyork": {}, "london": {}, "paris": {}, "sydney": {},
	"losangeles": {}, "sanfrancisco": {}, "chicago": {}, "vancouver": {},

	// District/venue suffix words that often anchor a place mention.
	"downtown": {}, "district": {}, "station": {}, "avenue": {}, "street": {},
	"plaza": {}, "square": {}, "market": {}, "beach": {}, "harbor": {},
	"village": {}, "temple": {}, "park": {},
}

// multiWordRegions are gazetteer entries that appear as spaced phrases in
// body text ("new york") but as joined tokens in hashtags ("#newyork").
var multiWordRegions = []string{
	"new york", "los angeles", "san francisco", "hong kong",
}

// extractLocationHints scans tokens and hashtags against the gazetteer.
// Results are deduplicated lowercase tokens in first-seen order.
func extractLocationHints(body string, hashtags []string) []string {
	seen := make(map[string]struct{})
	var hints []string

	add := func(hint string) {
		if _, ok := seen[hint]; ok {
			return
		}
		seen[hint] = struct{}{}
		hints = append(hints, hint)
	}

	lowerBody := strings.ToLower(body)
	for _, phrase := range multiWordRegions {
		if strings.Contains(lowerBody, phrase) {
			add(strings.ReplaceAll(phrase, " ", ""))
		}
	}

	for _, tok := range tokenize(lowerBody) {
		if _, ok := gazetteer[tok]; ok {
			add(tok)
		}
	}
	for _, tag := range hashtags {
		tag = strings.ToLower(tag)
		if _, ok := gazetteer[tag]; ok {
			add(tag)
		}
	}

	return hints
}
