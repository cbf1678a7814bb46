// Package matcher ranks corpus conversations against a query embedding.
package matcher

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/easeaico/kindred/internal/types"
	"github.com/easeaico/kindred/internal/vectormath"
)

// Engine holds a read-only snapshot of the corpus and ranks candidates by
// cosine similarity. Load replaces the snapshot wholesale; there is no
// incremental mutation.
type Engine struct {
	mu         sync.RWMutex
	entries    []types.CorpusEntry
	threshold  float64
	maxMatches int
}

// NewEngine returns an Engine with the given similarity threshold and
// result limit.
func NewEngine(threshold float64, maxMatches int) *Engine {
	if maxMatches <= 0 {
		maxMatches = 5
	}
	return &Engine{threshold: threshold, maxMatches: maxMatches}
}

// Load replaces the corpus snapshot. Entries without a usable embedding are
// dropped with a warning; ingestion order of the rest is preserved because it
// breaks similarity ties. Returns the retained count.
func (e *Engine) Load(entries []types.CorpusEntry) int {
	retained := make([]types.CorpusEntry, 0, len(entries))
	for _, entry := range entries {
		if !vectormath.IsUsable(entry.Embedding) {
			slog.Warn("corpus entry has no usable embedding, skipping", "chat_id", entry.ID)
			continue
		}
		retained = append(retained, entry)
	}

	e.mu.Lock()
	e.entries = retained
	e.mu.Unlock()

	slog.Info("corpus loaded", "total", len(entries), "retained", len(retained))
	return len(retained)
}

// FindMatches ranks every corpus entry other than excludeID against query.
// Entries at or above the threshold come back sorted by similarity
// descending, ties in ingestion order, truncated to the match limit. A
// missing or malformed query is a caller contract violation that yields an
// empty result, never an error: matching is best-effort.
func (e *Engine) FindMatches(query []float32, excludeID string) []types.MatchCandidate {
	if !vectormath.IsUsable(query) {
		slog.Warn("invalid query embedding provided to FindMatches")
		return nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var candidates []types.MatchCandidate
	for _, entry := range e.entries {
		if excludeID != "" && entry.ID == excludeID {
			continue
		}

		similarity, err := vectormath.CosineSimilarity(query, entry.Embedding)
		if err != nil {
			slog.Warn("failed to score corpus entry", "chat_id", entry.ID, "error", err.Error())
			continue
		}
		if similarity < e.threshold {
			continue
		}

		candidates = append(candidates, types.MatchCandidate{
			ChatID:      entry.ID,
			Similarity:  similarity,
			Topic:       entry.Topic,
			Summary:     entry.Summary,
			MatchReason: GenerateMatchReason(entry.Summary, similarity),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > e.maxMatches {
		candidates = candidates[:e.maxMatches]
	}
	return candidates
}

// GenerateMatchReason renders a human explanation for a match: a rounded
// percentage plus up to two clauses picked in fixed priority order (topics,
// style, traits). Always non-empty, even for a nil summary.
func GenerateMatchReason(summary *types.Summary, similarity float64) string {
	simPercent := int(math.Round(similarity * 100))

	var reasons []string
	if summary != nil {
		if len(summary.Topics) > 0 {
			reasons = append(reasons, "shared interest in "+joinFirstTwo(summary.Topics))
		}
		if summary.CommunicationStyle != "" {
			reasons = append(reasons, "similar "+summary.CommunicationStyle+" communication style")
		}
		if len(summary.PersonalityTraits) > 0 {
			reasons = append(reasons, "both "+joinFirstTwo(summary.PersonalityTraits))
		}
	}

	reasonText := "similar conversation patterns"
	if len(reasons) > 0 {
		if len(reasons) > 2 {
			reasons = reasons[:2]
		}
		reasonText = strings.Join(reasons, " and ")
	}
	return fmt.Sprintf("%d%% match - %s", simPercent, reasonText)
}

func joinFirstTwo(items []string) string {
	if len(items) > 2 {
		items = items[:2]
	}
	return strings.Join(items, " and ")
}

// PairMatch is the result of probing two corpus entries against each other.
type PairMatch struct {
	ChatID1    string
	ChatID2    string
	Similarity float64
	IsMatch    bool
	Reason     string
}

// TestMatch scores two corpus entries against each other. The second return
// is false when either id is unknown or the pair cannot be scored.
func (e *Engine) TestMatch(idA, idB string) (PairMatch, bool) {
	a, okA := e.Entry(idA)
	b, okB := e.Entry(idB)
	if !okA || !okB {
		return PairMatch{}, false
	}

	similarity, err := vectormath.CosineSimilarity(a.Embedding, b.Embedding)
	if err != nil {
		slog.Warn("failed to score pair", "chat_id_1", idA, "chat_id_2", idB, "error", err.Error())
		return PairMatch{}, false
	}

	e.mu.RLock()
	threshold := e.threshold
	e.mu.RUnlock()

	return PairMatch{
		ChatID1:    idA,
		ChatID2:    idB,
		Similarity: similarity,
		IsMatch:    similarity >= threshold,
		Reason:     GenerateMatchReason(b.Summary, similarity),
	}, true
}

// Entry looks up a retained corpus entry by id.
func (e *Engine) Entry(id string) (types.CorpusEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return types.CorpusEntry{}, false
}

// Stats aggregates the loaded corpus.
type Stats struct {
	TotalChats   int
	UniqueTopics int
	UniqueStyles int
	Topics       []string
	Styles       []string
}

// Stats returns corpus size and the distinct topics and communication styles
// seen across summaries.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	topics := make(map[string]struct{})
	styles := make(map[string]struct{})
	var topicList, styleList []string
	for _, entry := range e.entries {
		if entry.Summary == nil {
			continue
		}
		for _, topic := range entry.Summary.Topics {
			if _, seen := topics[topic]; !seen {
				topics[topic] = struct{}{}
				topicList = append(topicList, topic)
			}
		}
		if style := entry.Summary.CommunicationStyle; style != "" {
			if _, seen := styles[style]; !seen {
				styles[style] = struct{}{}
				styleList = append(styleList, style)
			}
		}
	}

	return Stats{
		TotalChats:   len(e.entries),
		UniqueTopics: len(topics),
		UniqueStyles: len(styles),
		Topics:       topicList,
		Styles:       styleList,
	}
}

// SetThreshold updates the similarity threshold. Out-of-range values are
// rejected and the previous threshold is kept.
func (e *Engine) SetThreshold(value float64) error {
	if value < 0 || value > 1 {
		return types.NewValidationError("threshold must be between 0 and 1, got %v", value)
	}
	e.mu.Lock()
	e.threshold = value
	e.mu.Unlock()
	slog.Info("similarity threshold updated", "threshold", value)
	return nil
}

// Threshold returns the current similarity threshold.
func (e *Engine) Threshold() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threshold
}
