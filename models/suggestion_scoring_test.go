package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMatchScoreBoundaries(t *testing.T) {
	movement := decimal.RequireFromString("-100.00")

	cases := []struct {
		name      string
		candidate string
		wantScore int
		wantOk    bool
	}{
		{"exact", "100.00", ScoreExact, true},
		{"sub-cent difference is exact", "100.004", ScoreExact, true},
		{"one cent off is tolerant", "100.01", ScoreTolerant, true},
		{"inside tolerance", "100.04", ScoreTolerant, true},
		{"tolerance boundary included", "100.05", ScoreTolerant, true},
		{"outside tolerance", "100.06", 0, false},
		{"below amount inside tolerance", "99.96", ScoreTolerant, true},
		{"below amount outside tolerance", "99.94", 0, false},
	}

	for _, tc := range cases {
		candidate := decimal.RequireFromString(tc.candidate)
		score, ok := matchScore(movement, candidate)
		if ok != tc.wantOk {
			t.Errorf("%s: matchScore(%s, %s) ok = %v, want %v", tc.name, movement, candidate, ok, tc.wantOk)
			continue
		}
		if score != tc.wantScore {
			t.Errorf("%s: matchScore(%s, %s) = %d, want %d", tc.name, movement, candidate, score, tc.wantScore)
		}
	}
}

func TestMatchScoreIncomingMovement(t *testing.T) {
	// Positive movements compare against the same absolute amount.
	movement := decimal.RequireFromString("250.00")
	score, ok := matchScore(movement, decimal.RequireFromString("250.00"))
	if !ok || score != ScoreExact {
		t.Fatalf("matchScore(250.00, 250.00) = %d, %v; want %d, true", score, ok, ScoreExact)
	}
}

func TestSuggestionWindow(t *testing.T) {
	movementDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	from, to := suggestionWindow(movementDate)

	wantFrom := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)

	if !from.Equal(wantFrom) {
		t.Errorf("window from = %s, want %s", from, wantFrom)
	}
	if !to.Equal(wantTo) {
		t.Errorf("window to = %s, want %s", to, wantTo)
	}
}

func TestScoreCandidatesDropsOutOfTolerance(t *testing.T) {
	movement := decimal.RequireFromString("-100.00")
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := []candidateRow{
		{ID: 1, Date: day, Amount: decimal.RequireFromString("100.00")},
		{ID: 2, Date: day, Amount: decimal.RequireFromString("100.04")},
		{ID: 3, Date: day, Amount: decimal.RequireFromString("100.06")},
	}

	suggestions := scoreCandidates(movement, MovementMatchTypeExpense, rows)
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}
	if suggestions[0].SuggestionId != 1 || suggestions[0].MatchScore != ScoreExact {
		t.Errorf("first suggestion = %+v, want id 1 score %d", suggestions[0], ScoreExact)
	}
	if suggestions[1].SuggestionId != 2 || suggestions[1].MatchScore != ScoreTolerant {
		t.Errorf("second suggestion = %+v, want id 2 score %d", suggestions[1], ScoreTolerant)
	}
	for _, s := range suggestions {
		if s.Type != MovementMatchTypeExpense {
			t.Errorf("suggestion %d type = %s, want %s", s.SuggestionId, s.Type, MovementMatchTypeExpense)
		}
	}
}

func TestAppendFallbackDedupsById(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("250.00")

	suggestions := []*Suggestion{
		{SuggestionId: 7, Type: MovementMatchTypeInvoice, Date: day, Amount: amount, MatchScore: ScoreExact},
	}
	fallback := []candidateRow{
		{ID: 7, Date: day, Amount: amount},
		{ID: 8, Date: day, Amount: amount},
		{ID: 9, Date: day, Amount: amount},
	}

	suggestions = appendFallback(suggestions, fallback)
	if len(suggestions) != 3 {
		t.Fatalf("got %d suggestions, want 3 (id 7 deduplicated)", len(suggestions))
	}
	if suggestions[0].MatchScore != ScoreExact {
		t.Errorf("tolerant hit lost its score: %+v", suggestions[0])
	}
	for _, s := range suggestions[1:] {
		if s.MatchScore != ScoreFallback {
			t.Errorf("fallback suggestion %d score = %d, want %d", s.SuggestionId, s.MatchScore, ScoreFallback)
		}
	}
}

func TestSortSuggestionsDeterministic(t *testing.T) {
	older := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("10.00")

	suggestions := []*Suggestion{
		{SuggestionId: 4, Date: older, Amount: amount, MatchScore: ScoreFallback},
		{SuggestionId: 3, Date: older, Amount: amount, MatchScore: ScoreExact},
		{SuggestionId: 2, Date: newer, Amount: amount, MatchScore: ScoreTolerant},
		{SuggestionId: 1, Date: older, Amount: amount, MatchScore: ScoreExact},
	}

	sortSuggestions(suggestions)

	wantOrder := []int{1, 3, 2, 4}
	for i, want := range wantOrder {
		if suggestions[i].SuggestionId != want {
			t.Fatalf("position %d = id %d, want %d (full order: %v)", i, suggestions[i].SuggestionId, want, ids(suggestions))
		}
	}
}

func ids(suggestions []*Suggestion) []int {
	out := make([]int, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.SuggestionId
	}
	return out
}
