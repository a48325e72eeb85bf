package textnorm

import (
	"reflect"
	"testing"
)

func TestCleanEmptyInput(t *testing.T) {
	got := Clean("", "", nil)
	if got.Body != "" {
		t.Errorf("Body = %q, want empty", got.Body)
	}
	if len(got.Hashtags) != 0 || len(got.Keywords) != 0 || len(got.LocationHints) != 0 {
		t.Errorf("expected empty extraction, got %+v", got)
	}
	if got.Richness != 0 {
		t.Errorf("Richness = %v, want 0", got.Richness)
	}
}

func TestCleanCollapsesWhitespace(t *testing.T) {
	got := Clean("amazing   coffee\n\nhere", "great  vibes", nil)
	want := "amazing coffee here great vibes"
	if got.Body != want {
		t.Errorf("Body = %q, want %q", got.Body, want)
	}
}

func TestHashtagExtraction(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		provided []string
		expected []string
	}{
		{
			name:     "from text",
			text:     "lunch at #BlueBottle #coffee",
			expected: []string{"BlueBottle", "coffee"},
		},
		{
			name:     "case-insensitive dedup keeps first casing",
			text:     "#Coffee #COFFEE #coffee",
			expected: []string{"Coffee"},
		},
		{
			name:     "provided tags merged after text tags",
			text:     "#brunch spot",
			provided: []string{"Brunch", "weekend"},
			expected: []string{"brunch", "weekend"},
		},
		{
			name:     "prefix stripped from provided tags",
			provided: []string{"#seoul"},
			expected: []string{"seoul"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.text, "", tt.provided)
			if !reflect.DeepEqual(got.Hashtags, tt.expected) {
				t.Errorf("Hashtags = %v, want %v", got.Hashtags, tt.expected)
			}
		})
	}
}

func TestKeywordExtraction(t *testing.T) {
	got := Clean("coffee coffee coffee pastry pastry ambiance the and for", "", nil)

	if len(got.Keywords) == 0 {
		t.Fatal("expected keywords, got none")
	}
	if got.Keywords[0] != "coffee" {
		t.Errorf("top keyword = %q, want coffee", got.Keywords[0])
	}
	if got.Keywords[1] != "pastry" {
		t.Errorf("second keyword = %q, want pastry", got.Keywords[1])
	}
	for _, kw := range got.Keywords {
		if isStopword(kw) {
			t.Errorf("stopword %q leaked into keywords", kw)
		}
	}
}

func TestKeywordDeterminism(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta alpha beta"
	first := Clean(text, "", nil)
	for i := 0; i < 5; i++ {
		again := Clean(text, "", nil)
		if !reflect.DeepEqual(first.Keywords, again.Keywords) {
			t.Fatalf("keyword order not deterministic: %v vs %v", first.Keywords, again.Keywords)
		}
	}
}

func TestLocationHints(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		hashtags []string
		expected []string
	}{
		{
			name:     "city in text",
			text:     "best ramen in Tokyo ever",
			expected: []string{"tokyo"},
		},
		{
			name:     "hint from hashtag",
			text:     "weekend trip",
			hashtags: []string{"Seoul"},
			expected: []string{"seoul"},
		},
		{
			name:     "multi-word region",
			text:     "walking around New York all day",
			expected: []string{"newyork"},
		},
		{
			name:     "venue suffix token",
			text:     "hidden gem near the station",
			expected: []string{"station"},
		},
		{
			name:     "no hints",
			text:     "great food and service",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.text, "", tt.hashtags)
			if !reflect.DeepEqual(got.LocationHints, tt.expected) {
				t.Errorf("LocationHints = %v, want %v", got.LocationHints, tt.expected)
			}
		})
	}
}

func TestRichnessBounds(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "wonderful restaurant experience "
	}
	rich := Clean(long, "", []string{"食", "tags", "more", "even", "five"})
	if rich.Richness < 0 || rich.Richness > 1 {
		t.Errorf("Richness = %v, want within [0,1]", rich.Richness)
	}

	sparse := Clean("ok", "", nil)
	if sparse.Richness >= rich.Richness {
		t.Errorf("sparse richness %v should be below rich %v", sparse.Richness, rich.Richness)
	}
}
