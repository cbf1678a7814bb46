// Package main summarizes and embeds corpus entries that are missing them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/easeaico/kindred/internal/config"
	"github.com/easeaico/kindred/internal/corpus"
	"github.com/easeaico/kindred/internal/embedding"
	"github.com/easeaico/kindred/internal/summary"
)

func main() {
	_ = godotenv.Load()

	force := flag.Bool("force", false, "re-summarize and re-embed every entry")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	store := corpus.NewStore(cfg.CorpusPath)
	entries, err := store.Load()
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("corpus is empty, nothing to do")
		return
	}

	summarizer, err := summary.NewChatSummarizer(ctx, cfg.GoogleAPIKey, cfg.SummaryModel)
	if err != nil {
		log.Fatalf("failed to create summarizer: %v", err)
	}
	embedder, err := embedding.NewGenAIEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}

	var summarized, embedded, skipped, failed int
	for i := range entries {
		entry := &entries[i]

		if entry.Summary == nil || *force {
			s, err := summarizer.Summarize(ctx, entry.Messages, entry.Topic)
			if err != nil {
				fmt.Printf("  %s: summarization failed: %v\n", entry.ID, err)
				failed++
				continue
			}
			entry.Summary = s
			summarized++
		}

		if len(entry.Embedding) > 0 && !*force {
			skipped++
			continue
		}
		vector, err := embedder.EmbedDocument(ctx, summary.BuildEmbeddingText(entry.Summary))
		if err != nil {
			fmt.Printf("  %s: embedding failed: %v\n", entry.ID, err)
			failed++
			continue
		}
		entry.Embedding = vector
		embedded++
		fmt.Printf("  %s (%q): embedded %d dimensions\n", entry.ID, entry.Topic, len(vector))
	}

	if err := store.Save(entries); err != nil {
		log.Fatalf("failed to save corpus: %v", err)
	}
	fmt.Printf("done: %d summarized, %d embedded, %d skipped, %d failed (of %d entries)\n",
		summarized, embedded, skipped, failed, len(entries))
}
