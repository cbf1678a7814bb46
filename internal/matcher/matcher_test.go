package matcher

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/easeaico/kindred/internal/types"
)

func axisCorpus() []types.CorpusEntry {
	return []types.CorpusEntry{
		{ID: "A", Topic: "cooking", Embedding: []float32{1, 0, 0}},
		{ID: "B", Topic: "gardening", Embedding: []float32{0, 1, 0}},
	}
}

func TestLoadFiltersUnusableEmbeddings(t *testing.T) {
	engine := NewEngine(0.7, 5)
	retained := engine.Load([]types.CorpusEntry{
		{ID: "ok", Embedding: []float32{1, 0}},
		{ID: "missing"},
		{ID: "empty", Embedding: []float32{}},
		{ID: "nan", Embedding: []float32{float32(math.NaN()), 1}},
	})
	if retained != 1 {
		t.Fatalf("expected 1 retained entry, got %d", retained)
	}
	if _, ok := engine.Entry("missing"); ok {
		t.Fatal("entry without embedding should have been dropped")
	}
	if _, ok := engine.Entry("ok"); !ok {
		t.Fatal("valid entry should have been retained")
	}
}

func TestFindMatchesAboveThreshold(t *testing.T) {
	engine := NewEngine(0.7, 5)
	engine.Load(axisCorpus())

	matches := engine.FindMatches([]float32{1, 0, 0}, "")
	if len(matches) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(matches))
	}
	if matches[0].ChatID != "A" {
		t.Fatalf("expected match A, got %q", matches[0].ChatID)
	}
	if math.Abs(matches[0].Similarity-1.0) > 1e-9 {
		t.Fatalf("expected similarity 1.0, got %v", matches[0].Similarity)
	}
}

func TestFindMatchesTieBreakByIngestionOrder(t *testing.T) {
	engine := NewEngine(0.5, 5)
	engine.Load(axisCorpus())

	// Equidistant from both axes: similarities are equal, so corpus order wins.
	matches := engine.FindMatches([]float32{0.6, 0.6, 0}, "")
	if len(matches) != 2 {
		t.Fatalf("expected both entries above threshold 0.5, got %d", len(matches))
	}
	if matches[0].ChatID != "A" || matches[1].ChatID != "B" {
		t.Fatalf("equal similarities must preserve ingestion order, got %q then %q",
			matches[0].ChatID, matches[1].ChatID)
	}
	if math.Abs(matches[0].Similarity-matches[1].Similarity) > 1e-9 {
		t.Fatalf("expected equal similarities, got %v and %v",
			matches[0].Similarity, matches[1].Similarity)
	}
}

func TestFindMatchesHighThresholdExcludesBoth(t *testing.T) {
	engine := NewEngine(0.8, 5)
	engine.Load(axisCorpus())

	if matches := engine.FindMatches([]float32{0.6, 0.6, 0}, ""); len(matches) != 0 {
		t.Fatalf("expected no matches above 0.8, got %d", len(matches))
	}
}

func TestFindMatchesNeverReturnsExcludedID(t *testing.T) {
	engine := NewEngine(0.0, 10)
	engine.Load(axisCorpus())

	for _, match := range engine.FindMatches([]float32{1, 0, 0}, "A") {
		if match.ChatID == "A" {
			t.Fatal("excluded id must never appear in results")
		}
	}
}

func TestFindMatchesRespectsMaxMatches(t *testing.T) {
	var entries []types.CorpusEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, types.CorpusEntry{
			ID:        fmt.Sprintf("chat_%d", i),
			Embedding: []float32{1, float32(i) * 0.01},
		})
	}
	engine := NewEngine(0.5, 3)
	engine.Load(entries)

	matches := engine.FindMatches([]float32{1, 0}, "")
	if len(matches) != 3 {
		t.Fatalf("expected result truncated to 3, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Similarity > matches[i-1].Similarity {
			t.Fatalf("result not sorted descending at index %d", i)
		}
	}
	for _, match := range matches {
		if match.Similarity < 0.5 {
			t.Fatalf("match %q below threshold: %v", match.ChatID, match.Similarity)
		}
	}
}

func TestFindMatchesInvalidQueryReturnsEmpty(t *testing.T) {
	engine := NewEngine(0.7, 5)
	engine.Load(axisCorpus())

	if matches := engine.FindMatches(nil, ""); matches != nil {
		t.Fatalf("expected empty result for nil query, got %v", matches)
	}
	if matches := engine.FindMatches([]float32{float32(math.NaN())}, ""); matches != nil {
		t.Fatalf("expected empty result for NaN query, got %v", matches)
	}
}

func TestFindMatchesSkipsZeroMagnitudeEntries(t *testing.T) {
	engine := NewEngine(0.0, 5)
	engine.Load([]types.CorpusEntry{
		{ID: "zero", Embedding: []float32{0, 0, 0}},
		{ID: "ok", Embedding: []float32{1, 0, 0}},
	})

	matches := engine.FindMatches([]float32{1, 0, 0}, "")
	if len(matches) != 1 || matches[0].ChatID != "ok" {
		t.Fatalf("zero-magnitude entry should be skipped, got %+v", matches)
	}
}

func TestGenerateMatchReason(t *testing.T) {
	cases := []struct {
		name    string
		summary *types.Summary
		want    string
	}{
		{
			name: "topics and style fill both slots",
			summary: &types.Summary{
				Topics:             []string{"cooking", "baking", "grilling"},
				CommunicationStyle: "curious",
				PersonalityTraits:  []string{"detailed"},
			},
			want: "85% match - shared interest in cooking and baking and similar curious communication style",
		},
		{
			name:    "traits only",
			summary: &types.Summary{PersonalityTraits: []string{"practical", "patient"}},
			want:    "85% match - both practical and patient",
		},
		{
			name:    "empty summary falls back",
			summary: &types.Summary{},
			want:    "85% match - similar conversation patterns",
		},
		{
			name:    "nil summary falls back",
			summary: nil,
			want:    "85% match - similar conversation patterns",
		},
	}
	for _, tc := range cases {
		got := GenerateMatchReason(tc.summary, 0.85)
		if got != tc.want {
			t.Fatalf("%s:\n got %q\nwant %q", tc.name, got, tc.want)
		}
		if strings.TrimSpace(got) == "" {
			t.Fatalf("%s: reason must never be empty", tc.name)
		}
	}
}

func TestGenerateMatchReasonRoundsPercentage(t *testing.T) {
	if got := GenerateMatchReason(nil, 0.706); !strings.HasPrefix(got, "71% match") {
		t.Fatalf("expected 71%% prefix, got %q", got)
	}
	if got := GenerateMatchReason(nil, 1.0); !strings.HasPrefix(got, "100% match") {
		t.Fatalf("expected 100%% prefix, got %q", got)
	}
}

func TestTestMatch(t *testing.T) {
	engine := NewEngine(0.7, 5)
	engine.Load([]types.CorpusEntry{
		{ID: "A", Embedding: []float32{1, 0}},
		{ID: "B", Embedding: []float32{1, 0.01}, Summary: &types.Summary{Topics: []string{"cooking"}}},
		{ID: "C", Embedding: []float32{0, 1}},
	})

	pair, ok := engine.TestMatch("A", "B")
	if !ok {
		t.Fatal("expected pair result for known ids")
	}
	if !pair.IsMatch {
		t.Fatalf("near-identical vectors should match at 0.7, got similarity %v", pair.Similarity)
	}
	if !strings.Contains(pair.Reason, "cooking") {
		t.Fatalf("reason should use the second entry's summary, got %q", pair.Reason)
	}

	pair, ok = engine.TestMatch("A", "C")
	if !ok {
		t.Fatal("expected pair result for known ids")
	}
	if pair.IsMatch {
		t.Fatalf("orthogonal vectors should not match, got similarity %v", pair.Similarity)
	}

	if _, ok := engine.TestMatch("A", "nope"); ok {
		t.Fatal("expected not-found for unknown id")
	}
}

func TestStats(t *testing.T) {
	engine := NewEngine(0.7, 5)
	engine.Load([]types.CorpusEntry{
		{ID: "A", Embedding: []float32{1}, Summary: &types.Summary{
			Topics:             []string{"cooking", "baking"},
			CommunicationStyle: "curious",
		}},
		{ID: "B", Embedding: []float32{1}, Summary: &types.Summary{
			Topics:             []string{"cooking", "gardening"},
			CommunicationStyle: "direct",
		}},
		{ID: "C", Embedding: []float32{1}},
	})

	stats := engine.Stats()
	if stats.TotalChats != 3 {
		t.Fatalf("expected 3 chats, got %d", stats.TotalChats)
	}
	if stats.UniqueTopics != 3 {
		t.Fatalf("expected 3 unique topics, got %d", stats.UniqueTopics)
	}
	if stats.UniqueStyles != 2 {
		t.Fatalf("expected 2 unique styles, got %d", stats.UniqueStyles)
	}
}

func TestSetThreshold(t *testing.T) {
	engine := NewEngine(0.7, 5)

	if err := engine.SetThreshold(0.5); err != nil {
		t.Fatalf("valid threshold rejected: %v", err)
	}
	if got := engine.Threshold(); got != 0.5 {
		t.Fatalf("expected threshold 0.5, got %v", got)
	}

	for _, bad := range []float64{-0.1, 1.1, 2} {
		if err := engine.SetThreshold(bad); err == nil {
			t.Fatalf("expected rejection for threshold %v", bad)
		}
		if !types.IsValidation(engine.SetThreshold(bad)) {
			t.Fatalf("expected ValidationError for threshold %v", bad)
		}
		if got := engine.Threshold(); got != 0.5 {
			t.Fatalf("rejected threshold must not change state, got %v", got)
		}
	}
}
