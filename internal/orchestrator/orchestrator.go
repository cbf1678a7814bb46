// Package orchestrator owns the active conversation and drives it through
// the message, summary, embedding, and matching pipeline.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/kindred/internal/llm"
	"github.com/easeaico/kindred/internal/matcher"
	"github.com/easeaico/kindred/internal/summary"
	"github.com/easeaico/kindred/internal/types"
)

// Completer produces an assistant reply for a conversation history.
type Completer interface {
	Complete(ctx context.Context, messages []types.Message, opts llm.Options) (*llm.Completion, error)
}

// Summarizer produces the structured summary for a conversation.
type Summarizer interface {
	Summarize(ctx context.Context, messages []types.Message, topicHint string) (*types.Summary, error)
}

// Embedder converts summary text into a vector.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
}

// MatchFinder is the orchestrator-facing subset of the match engine.
type MatchFinder interface {
	FindMatches(query []float32, excludeID string) []types.MatchCandidate
	Entry(id string) (types.CorpusEntry, bool)
	Stats() matcher.Stats
}

// Exchange describes one completed user/assistant turn.
type Exchange struct {
	UserMessage       string
	AssistantResponse string
	MessageCount      int
}

// SendResult is what SendMessage returns on success.
type SendResult struct {
	Response     string
	MessageCount int
	Usage        types.TokenUsage
}

// Snapshot is the conversation state handed to the presentation layer.
type Snapshot struct {
	ID           string
	Messages     []types.Message
	MessageCount int
	Summary      *types.Summary
	HasEmbedding bool
}

// Orchestrator drives exactly one conversation at a time. SendMessage is
// single-flight: the sending flag is compare-and-swapped, so a second call
// while one is in flight is rejected, never queued.
type Orchestrator struct {
	completer  Completer
	summarizer Summarizer
	embedder   Embedder
	matcher    MatchFinder

	sending atomic.Bool

	mu        sync.Mutex
	current   *types.Conversation
	onMessage func(Exchange)
	onMatches func([]types.MatchCandidate)
}

// New wires the pipeline and starts the first conversation.
func New(completer Completer, summarizer Summarizer, embedder Embedder, matchFinder MatchFinder) *Orchestrator {
	o := &Orchestrator{
		completer:  completer,
		summarizer: summarizer,
		embedder:   embedder,
		matcher:    matchFinder,
	}
	o.StartNewChat()
	return o
}

// StartNewChat discards the active conversation and begins a fresh one.
// Returns the new conversation id.
func (o *Orchestrator) StartNewChat() string {
	id := "chat_" + uuid.NewString()
	o.mu.Lock()
	o.current = &types.Conversation{ID: id}
	o.mu.Unlock()
	slog.Info("started new chat", "chat_id", id)
	return id
}

// Reset is equivalent to StartNewChat.
func (o *Orchestrator) Reset() {
	o.StartNewChat()
}

// SetMessageHook registers the callback invoked after every completed
// exchange. Single slot: a later registration replaces the earlier one.
func (o *Orchestrator) SetMessageHook(hook func(Exchange)) {
	o.mu.Lock()
	o.onMessage = hook
	o.mu.Unlock()
}

// SetMatchFoundHook registers the callback invoked when the pipeline finds
// at least one match. Single slot, replace semantics.
func (o *Orchestrator) SetMatchFoundHook(hook func([]types.MatchCandidate)) {
	o.mu.Lock()
	o.onMatches = hook
	o.mu.Unlock()
}

// SendMessage appends the user message, obtains the assistant reply, then
// runs summarize, embed, and match. Both messages stay appended even when a
// later pipeline stage fails; the failure still propagates to the caller so
// nothing downstream silently disappears. The sending flag is released on
// every exit path.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) (*SendResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, types.NewValidationError("message cannot be empty")
	}
	if !o.sending.CompareAndSwap(false, true) {
		return nil, types.NewValidationError("already processing a message, please wait")
	}
	defer o.sending.Store(false)

	o.appendMessage(types.RoleUser, trimmed)

	completion, err := o.completer.Complete(ctx, o.messages(), llm.Options{})
	if err != nil {
		slog.Error("failed to complete message", "error", err.Error())
		return nil, err
	}

	count := o.appendMessage(types.RoleAssistant, completion.Content)

	o.mu.Lock()
	onMessage := o.onMessage
	o.mu.Unlock()
	if onMessage != nil {
		onMessage(Exchange{
			UserMessage:       trimmed,
			AssistantResponse: completion.Content,
			MessageCount:      count,
		})
	}

	if err := o.updateSummaryAndCheckMatches(ctx); err != nil {
		slog.Error("summary pipeline failed after exchange", "error", err.Error())
		return nil, err
	}

	return &SendResult{
		Response:     completion.Content,
		MessageCount: count,
		Usage:        completion.Usage,
	}, nil
}

// updateSummaryAndCheckMatches summarizes the conversation, embeds the
// summary text, stores both on the session in one step, and notifies the
// match hook when the corpus yields candidates.
func (o *Orchestrator) updateSummaryAndCheckMatches(ctx context.Context) error {
	sum, err := o.summarizer.Summarize(ctx, o.messages(), "")
	if err != nil {
		return err
	}

	embeddingText := summary.BuildEmbeddingText(sum)
	vector, err := o.embedder.EmbedDocument(ctx, embeddingText)
	if err != nil {
		return err
	}

	// Summary and embedding are replaced together; a session never holds a
	// new summary with a stale vector.
	o.mu.Lock()
	o.current.Summary = sum
	o.current.Embedding = vector
	id := o.current.ID
	onMatches := o.onMatches
	o.mu.Unlock()

	matches := o.matcher.FindMatches(vector, id)
	if len(matches) > 0 {
		slog.Info("found matches for current chat", "chat_id", id, "count", len(matches))
		if onMatches != nil {
			onMatches(matches)
		}
	}
	return nil
}

// CurrentChat returns a copy of the conversation state for rendering.
func (o *Orchestrator) CurrentChat() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	messages := make([]types.Message, len(o.current.Messages))
	copy(messages, o.current.Messages)
	return Snapshot{
		ID:           o.current.ID,
		Messages:     messages,
		MessageCount: len(messages),
		Summary:      o.current.Summary,
		HasEmbedding: len(o.current.Embedding) > 0,
	}
}

// FormattedConversation renders the current transcript as plain text.
func (o *Orchestrator) FormattedConversation() string {
	return summary.FormatConversation(o.messages())
}

// MatcherStats exposes corpus aggregates for display.
func (o *Orchestrator) MatcherStats() matcher.Stats {
	return o.matcher.Stats()
}

// ReplayResult is the outcome of replaying a corpus entry through matching.
type ReplayResult struct {
	ChatID  string
	Topic   string
	Summary *types.Summary
	Matches []types.MatchCandidate
}

// TestWithExistingChat runs an existing corpus entry's embedding through the
// matcher, excluding the entry itself.
func (o *Orchestrator) TestWithExistingChat(chatID string) (*ReplayResult, error) {
	entry, ok := o.matcher.Entry(chatID)
	if !ok {
		return nil, fmt.Errorf("chat %s not found in corpus", chatID)
	}
	return &ReplayResult{
		ChatID:  chatID,
		Topic:   entry.Topic,
		Summary: entry.Summary,
		Matches: o.matcher.FindMatches(entry.Embedding, chatID),
	}, nil
}

func (o *Orchestrator) appendMessage(role, content string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current.Messages = append(o.current.Messages, types.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	return len(o.current.Messages)
}

func (o *Orchestrator) messages() []types.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	messages := make([]types.Message, len(o.current.Messages))
	copy(messages, o.current.Messages)
	return messages
}
