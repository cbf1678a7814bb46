package summary

import (
	"strings"

	"github.com/easeaico/kindred/internal/types"
)

// BuildEmbeddingText assembles the text that gets embedded for a summary.
// Fields are rendered in a fixed order as "Label: comma-joined values";
// absent fields are skipped so two summaries with the same content always
// embed the same text.
func BuildEmbeddingText(s *types.Summary) string {
	if s == nil {
		return ""
	}

	var parts []string
	appendList := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		parts = append(parts, label+": "+strings.Join(items, ", "))
	}

	appendList("Topics", s.Topics)
	appendList("Interests", s.Interests)
	appendList("Traits", s.PersonalityTraits)
	if s.CommunicationStyle != "" {
		parts = append(parts, "Style: "+s.CommunicationStyle)
	}
	appendList("Values", s.Values)
	if s.OneSentenceSummary != "" {
		parts = append(parts, "Summary: "+s.OneSentenceSummary)
	}

	return strings.Join(parts, ". ")
}
