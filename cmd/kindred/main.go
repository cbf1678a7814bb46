// Package main is the entry point for the interactive matchmaking chat.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/easeaico/kindred/internal/config"
	"github.com/easeaico/kindred/internal/corpus"
	"github.com/easeaico/kindred/internal/embedding"
	"github.com/easeaico/kindred/internal/llm"
	"github.com/easeaico/kindred/internal/matcher"
	"github.com/easeaico/kindred/internal/orchestrator"
	"github.com/easeaico/kindred/internal/summary"
	"github.com/easeaico/kindred/internal/tui"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	// The terminal is owned by the TUI; slog goes to a file instead.
	logFile, err := os.OpenFile("kindred.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err == nil {
		defer logFile.Close()
		slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))
	}

	store := corpus.NewStore(cfg.CorpusPath)
	entries, err := store.Load()
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}

	engine := matcher.NewEngine(cfg.SimilarityThreshold, cfg.MaxMatches)
	engine.Load(entries)

	completer, err := llm.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.MaxTokens, cfg.Temperature)
	if err != nil {
		log.Fatalf("failed to create completion client: %v", err)
	}
	summarizer, err := summary.NewChatSummarizer(ctx, cfg.GoogleAPIKey, cfg.SummaryModel)
	if err != nil {
		log.Fatalf("failed to create summarizer: %v", err)
	}
	embedder, err := embedding.NewGenAIEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}

	orch := orchestrator.New(completer, summarizer, embedder, engine)

	program := tea.NewProgram(tui.New(orch), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("failed to run chat interface: %v", err)
	}
}
