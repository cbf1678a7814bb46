// Package config loads configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds runtime settings.
type Config struct {
	OpenAIAPIKey        string
	GoogleAPIKey        string
	ChatModel           string
	SummaryModel        string
	EmbeddingModel      string
	EmbeddingDim        int
	CorpusPath          string
	SimilarityThreshold float64
	MaxMatches          int
	MaxTokens           int
	Temperature         float64
}

// Load reads env vars, applies defaults, and validates required fields.
func Load() Config {
	cfg := Config{
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		ChatModel:      os.Getenv("CHAT_MODEL"),
		SummaryModel:   os.Getenv("SUMMARY_MODEL"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),
		CorpusPath:     os.Getenv("CORPUS_PATH"),
	}

	cfg.EmbeddingDim = getEnvInt("EMBEDDING_DIM", 768)
	cfg.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", 0.7)
	cfg.MaxMatches = getEnvInt("MAX_MATCHES", 5)
	cfg.MaxTokens = getEnvInt("MAX_TOKENS", 300)
	cfg.Temperature = getEnvFloat("TEMPERATURE", 0.7)

	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = "gemini-2.5-flash"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-004"
	}
	if cfg.CorpusPath == "" {
		cfg.CorpusPath = "chats.json"
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}
	if cfg.GoogleAPIKey == "" {
		log.Fatal("GOOGLE_API_KEY environment variable is required (used for summaries and embeddings)")
	}

	return cfg
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}
