// Package llm wraps the OpenAI chat completion API behind the conversation
// data model.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/easeaico/kindred/internal/types"
)

// DefaultSystemPrompt steers the assistant side of a conversation.
const DefaultSystemPrompt = "You are a helpful, conversational AI assistant. Engage naturally with the user about their topic of interest."

// Options tune a single completion request. Zero fields fall back to the
// client defaults.
type Options struct {
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}

// Completion is the assistant reply plus provider metadata.
type Completion struct {
	Content string
	Usage   types.TokenUsage
	Model   string
}

// Client is a chat completion client for one configured model.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewClient creates a completion client.
func NewClient(apiKey, model string, maxTokens int, temperature float64) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}
	if maxTokens <= 0 {
		maxTokens = 300
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client:      &client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// Complete sends the conversation history (roles and content only) prefixed
// with a system prompt and returns the assistant reply. Transport failures
// and malformed responses surface as UpstreamError.
func (c *Client) Complete(ctx context.Context, messages []types.Message, opts Options) (*Completion, error) {
	params := c.buildParams(messages, opts)

	resp, err := c.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		slog.Error("failed to call chat completion API", "error", err.Error())
		return nil, types.NewUpstreamError("chat completion", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, types.NewUpstreamError("chat completion", fmt.Errorf("response has no choices"))
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, types.NewUpstreamError("chat completion", fmt.Errorf("response message has no content"))
	}

	return &Completion{
		Content: content,
		Model:   resp.Model,
		Usage: types.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (c *Client) buildParams(messages []types.Message, opts Options) *openai.ChatCompletionNewParams {
	maxTokens := c.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	temperature := c.temperature
	if opts.Temperature > 0 {
		temperature = opts.Temperature
	}
	systemPrompt := DefaultSystemPrompt
	if opts.SystemPrompt != "" {
		systemPrompt = opts.SystemPrompt
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    convertMessages(systemPrompt, messages),
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
	}
	return &params
}

// convertMessages maps conversation messages to OpenAI message params,
// stripping timestamps.
func convertMessages(systemPrompt string, messages []types.Message) []openai.ChatCompletionMessageParamUnion {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if systemPrompt != "" {
		converted = append(converted, openai.SystemMessage(systemPrompt))
	}
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleAssistant:
			converted = append(converted, openai.AssistantMessage(msg.Content))
		default:
			converted = append(converted, openai.UserMessage(msg.Content))
		}
	}
	return converted
}
