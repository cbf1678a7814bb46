// Package summary turns a conversation into the structured summary the
// matcher embeds and compares.
package summary

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync/atomic"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/easeaico/kindred/internal/types"
	"github.com/easeaico/kindred/internal/utils"
)

const (
	summarizerAppName = "kindred_summarizer"
	summarizerUserID  = "chat_summarizer"
)

// summaryInstruction asks the model for the matching-oriented extraction and
// nothing but the JSON object.
const summaryInstruction = `You are a conversation analyst for a matchmaking system.
Analyze the conversation you are given and extract a structured summary used to match similar conversations.

Extract:
1. Main topics discussed
2. Specific interests or hobbies mentioned
3. Communication style traits (curious, detailed, practical, etc.)
4. Any values or priorities that come through
5. The types of questions asked (practical, theoretical, personal)

Output requirements:
- conversation_depth must be one of: surface, medium, detailed
- one_sentence_summary is a brief description of what the conversation was about
- Return a valid JSON object that matches the output schema
- Do not include any extra keys or text outside the JSON object`

// ChatSummarizer generates structured summaries with an ADK llmagent.
type ChatSummarizer struct {
	agent          agent.Agent
	runner         summarizerRunner
	sessionService session.Service
	counter        uint64
}

type summarizerRunner interface {
	Run(ctx context.Context, userID, sessionID string, msg *genai.Content, cfg agent.RunConfig) iter.Seq2[*session.Event, error]
}

// NewChatSummarizer builds the summarizer agent on a Gemini model.
func NewChatSummarizer(ctx context.Context, apiKey, modelName string) (*ChatSummarizer, error) {
	summarizerModel, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("failed to create summarizer model", "error", err)
		return nil, fmt.Errorf("failed to create summarizer model: %w", err)
	}

	llmAgent, err := llmagent.New(llmagent.Config{
		Name:            "chat_summarizer",
		Description:     "structured conversation summarizer for matchmaking",
		Model:           summarizerModel,
		Instruction:     summaryInstruction,
		OutputSchema:    summaryOutputSchema(),
		IncludeContents: llmagent.IncludeContentsNone,
	})
	if err != nil {
		slog.Error("failed to create summarizer agent", "error", err)
		return nil, fmt.Errorf("failed to create summarizer agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        summarizerAppName,
		Agent:          llmAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer runner: %w", err)
	}

	return &ChatSummarizer{
		agent:          llmAgent,
		runner:         r,
		sessionService: sessionService,
	}, nil
}

// Summarize extracts a structured summary for the conversation. Model and
// transport failures surface as UpstreamError; a response that is not valid
// summary JSON degrades to the deterministic fallback instead. topicHint
// seeds the fallback and may be empty.
func (s *ChatSummarizer) Summarize(ctx context.Context, messages []types.Message, topicHint string) (*types.Summary, error) {
	conversation := FormatConversation(messages)

	sessID := fmt.Sprintf("summary-%d", atomic.AddUint64(&s.counter, 1))
	if _, err := s.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   summarizerAppName,
		UserID:    summarizerUserID,
		SessionID: sessID,
	}); err != nil {
		if _, getErr := s.sessionService.Get(ctx, &session.GetRequest{
			AppName:   summarizerAppName,
			UserID:    summarizerUserID,
			SessionID: sessID,
		}); getErr != nil {
			return nil, fmt.Errorf("failed to create summarizer session: %w", err)
		}
	}

	msg := genai.NewContentFromText(conversation, "user")
	events := s.runner.Run(ctx, summarizerUserID, sessID, msg, agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	})

	var last string
	for event, err := range events {
		if err != nil {
			return nil, types.NewUpstreamError("summarization", err)
		}
		if event == nil || event.Content == nil {
			continue
		}
		if event.Author == "user" {
			continue
		}
		text := strings.TrimSpace(utils.ExtractContentText(event.Content))
		if text == "" {
			continue
		}
		last = text
		if event.IsFinalResponse() {
			break
		}
	}
	if last == "" {
		return nil, types.NewUpstreamError("summarization", fmt.Errorf("empty summary response"))
	}

	result, err := Parse(last)
	if err != nil {
		slog.Warn("failed to parse summary JSON, using fallback", "error", err.Error())
		return Fallback(topicHint), nil
	}
	return result, nil
}

// FormatConversation renders messages as the summarizer's input text.
func FormatConversation(messages []types.Message) string {
	var sb strings.Builder
	for i, msg := range messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := "User"
		if msg.Role == types.RoleAssistant {
			label = "Assistant"
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
	}
	return sb.String()
}

func summaryOutputSchema() *genai.Schema {
	stringList := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"topics":              stringList(),
			"interests":           stringList(),
			"personality_traits":  stringList(),
			"communication_style": {Type: genai.TypeString},
			"values":              stringList(),
			"conversation_depth": {
				Type: genai.TypeString,
				Enum: []string{"surface", "medium", "detailed"},
			},
			"question_types":       stringList(),
			"one_sentence_summary": {Type: genai.TypeString},
		},
		Required: []string{"one_sentence_summary"},
	}
}
