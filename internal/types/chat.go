// Package types holds the shared conversation and matching data model.
package types

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Conversation is the active session driven by the orchestrator.
type Conversation struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	Summary   *Summary  `json:"summary,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Summary is the structured extraction the matcher embeds and explains
// matches with. Every field is optional; consumers must tolerate zero values.
type Summary struct {
	Topics             []string `json:"topics,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	PersonalityTraits  []string `json:"personality_traits,omitempty"`
	CommunicationStyle string   `json:"communication_style,omitempty"`
	Values             []string `json:"values,omitempty"`
	ConversationDepth  string   `json:"conversation_depth,omitempty"`
	QuestionTypes      []string `json:"question_types,omitempty"`
	OneSentenceSummary string   `json:"one_sentence_summary,omitempty"`
}

// CorpusEntry is one prior conversation in the matching corpus.
type CorpusEntry struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
	Summary   *Summary  `json:"summary,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// MatchCandidate is a ranked match against the corpus. Derived, never stored.
type MatchCandidate struct {
	ChatID      string   `json:"chatId"`
	Similarity  float64  `json:"similarity"`
	Topic       string   `json:"topic,omitempty"`
	Summary     *Summary `json:"summary,omitempty"`
	MatchReason string   `json:"matchReason"`
}

// TokenUsage is completion token accounting reported by the model provider.
type TokenUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}
