package summary

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/easeaico/kindred/internal/types"
)

// DepthUnknown replaces any conversation_depth value outside the known set.
const DepthUnknown = "unknown"

var knownDepths = map[string]bool{
	"surface":  true,
	"medium":   true,
	"detailed": true,
}

// resolvedSchema validates decoded summary JSON before it is trusted.
var resolvedSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	stringList := func() *jsonschema.Schema {
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}}
	}
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"topics":               stringList(),
			"interests":            stringList(),
			"personality_traits":   stringList(),
			"communication_style":  {Type: "string"},
			"values":               stringList(),
			"conversation_depth":   {Type: "string"},
			"question_types":       stringList(),
			"one_sentence_summary": {Type: "string"},
		},
	}
	return schema.Resolve(nil)
})

// Parse extracts the JSON object from raw model output, validates its shape,
// and returns the normalized summary. Models occasionally wrap the object in
// prose or code fences, so everything outside the outermost braces is
// discarded first.
func Parse(raw string) (*types.Summary, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(clean), &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse summary json: %w", err)
	}

	schema, err := resolvedSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve summary schema: %w", err)
	}
	if err := schema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("summary json failed validation: %w", err)
	}

	var result types.Summary
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	Normalize(&result)
	return &result, nil
}

// Normalize canonicalizes field values in place: depth is lowercased and
// mapped to "unknown" when outside the known set, blank list items are
// dropped.
func Normalize(s *types.Summary) {
	if s.ConversationDepth != "" {
		depth := strings.ToLower(strings.TrimSpace(s.ConversationDepth))
		if !knownDepths[depth] {
			depth = DepthUnknown
		}
		s.ConversationDepth = depth
	}
	s.Topics = dropBlank(s.Topics)
	s.Interests = dropBlank(s.Interests)
	s.PersonalityTraits = dropBlank(s.PersonalityTraits)
	s.Values = dropBlank(s.Values)
	s.QuestionTypes = dropBlank(s.QuestionTypes)
	s.CommunicationStyle = strings.TrimSpace(s.CommunicationStyle)
	s.OneSentenceSummary = strings.TrimSpace(s.OneSentenceSummary)
}

func dropBlank(items []string) []string {
	if len(items) == 0 {
		return items
	}
	kept := items[:0]
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return kept
}

// Fallback is the deterministic summary substituted when the model's output
// cannot be parsed. topic may be empty when the conversation has no known
// topic yet.
func Fallback(topic string) *types.Summary {
	topics := []string{"general conversation"}
	oneSentence := "General conversation"
	if topic != "" {
		topics = []string{topic}
		oneSentence = "Conversation about " + topic
	}
	return &types.Summary{
		Topics:             topics,
		Interests:          []string{},
		PersonalityTraits:  []string{"conversational"},
		CommunicationStyle: "friendly",
		Values:             []string{},
		ConversationDepth:  "medium",
		QuestionTypes:      []string{"general"},
		OneSentenceSummary: oneSentence,
	}
}
