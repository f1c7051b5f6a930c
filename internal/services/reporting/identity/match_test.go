package identity

import "testing"

func TestClosestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		word       string
		candidates []string
		cutoff     float64
		want       string
		wantOK     bool
	}{
		{name: "exact", word: "apple", candidates: []string{"ape", "apple", "peach"}, cutoff: 0.6, want: "apple", wantOK: true},
		{name: "typo", word: "wilsen", candidates: []string{"wilson", "gladys"}, cutoff: 0.8, want: "wilson", wantOK: true},
		{name: "below cutoff", word: "xyz", candidates: []string{"abc"}, cutoff: 0.5},
		{name: "no candidates", word: "abc", candidates: nil, cutoff: 0.1},
		{name: "tie prefers greatest", word: "ab", candidates: []string{"ac", "ad"}, cutoff: 0.5, want: "ad", wantOK: true},
		{name: "empty strings match", word: "", candidates: []string{""}, cutoff: 0.9, want: "", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ClosestMatch(tt.word, tt.candidates, tt.cutoff)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("ClosestMatch(%q) = (%q, %v), want (%q, %v)", tt.word, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClosestMatchCutoffIsInclusive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word, candidate string
		ratio           float64
	}{
		{"abcd", "bcde", 0.75},
		{"wilsen", "wilson", 10.0 / 12.0},
		{"gladys", "gladys", 1},
	}
	for _, tt := range tests {
		if _, ok := ClosestMatch(tt.word, []string{tt.candidate}, tt.ratio); !ok {
			t.Errorf("ClosestMatch(%q, %q) rejected at cutoff %v", tt.word, tt.candidate, tt.ratio)
		}
		if _, ok := ClosestMatch(tt.word, []string{tt.candidate}, tt.ratio+1e-9); ok {
			t.Errorf("ClosestMatch(%q, %q) accepted above cutoff %v", tt.word, tt.candidate, tt.ratio)
		}
	}
}
