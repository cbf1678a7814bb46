// Package embedding converts summary text into vectors for similarity search.
package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/easeaico/kindred/internal/types"
)

// GenAIEmbedder produces embeddings with the Gemini embedding API. The
// output dimensionality is fixed at construction; all vectors in a corpus
// must share it to be comparable.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
	dims   int
}

// NewGenAIEmbedder creates the embedder.
func NewGenAIEmbedder(ctx context.Context, apiKey, modelName string, dims int) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is required for embeddings")
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	if dims <= 0 {
		dims = 768
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GenAIEmbedder{
		client: client,
		model:  modelName,
		dims:   dims,
	}, nil
}

// EmbedQuery embeds text for use as a search query.
func (e *GenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, "RETRIEVAL_QUERY")
}

// EmbedDocument embeds text for storage in the corpus.
func (e *GenAIEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, "RETRIEVAL_DOCUMENT")
}

func (e *GenAIEmbedder) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType:             taskType,
		OutputDimensionality: func() *int32 { v := int32(e.dims); return &v }(),
	})
	if err != nil {
		return nil, types.NewUpstreamError("embedding", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, types.NewUpstreamError("embedding", fmt.Errorf("empty embedding response"))
	}

	values := resp.Embeddings[0].Values
	if len(values) == e.dims {
		return values, nil
	}
	if len(values) > e.dims {
		slog.Warn("embedding dimensions exceed target, truncating", "actual", len(values), "target", e.dims, "model", e.model)
		return values[:e.dims], nil
	}
	return nil, types.NewUpstreamError("embedding", fmt.Errorf("embedding dimensions mismatch: got %d want %d", len(values), e.dims))
}
