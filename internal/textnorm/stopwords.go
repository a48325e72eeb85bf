package textnorm

// stopwords are tokens excluded from keyword extraction. The list covers the
// high-frequency English function words that dominate social-media captions.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"was": {}, "are": {}, "but": {}, "not": {}, "you": {}, "your": {},
	"our": {}, "out": {}, "all": {}, "any": {}, "can": {}, "had": {},
	"has": {}, "have": {}, "her": {}, "his": {}, "him": {}, "its": {},
	"one": {}, "she": {}, "they": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "those": {}, "too": {}, "very": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "who": {}, "will": {}, "would": {},
	"about": {}, "after": {}, "again": {}, "also": {}, "been": {}, "before": {},
	"being": {}, "between": {}, "both": {}, "each": {}, "few": {}, "from": {},
	"here": {}, "how": {}, "into": {}, "just": {}, "more": {}, "most": {},
	"now": {}, "only": {}, "other": {}, "over": {}, "some": {}, "such": {},
	"than": {}, "today": {}, "under": {}, "until": {}, "while": {},
}

func isStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}
