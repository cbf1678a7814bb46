// Package main generates synthetic conversations for the matching corpus.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/easeaico/kindred/internal/config"
	"github.com/easeaico/kindred/internal/corpus"
	"github.com/easeaico/kindred/internal/llm"
	"github.com/easeaico/kindred/internal/summary"
	"github.com/easeaico/kindred/internal/types"
)

// genConfig is the YAML batch description: which topics to generate and how
// long each conversation should run.
type genConfig struct {
	Topics          []string `yaml:"topics"`
	MessagesPerChat int      `yaml:"messages_per_chat"`
}

var followUpPrompts = []string{
	"That's interesting! Can you tell me more?",
	"I have a follow-up question about that.",
	"Can you give me a specific example?",
	"What would you recommend for a beginner?",
	"Are there any common mistakes to avoid?",
	"How long does it usually take to get good at this?",
	"What tools or resources would you suggest?",
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "YAML file with topics to generate")
	messagesPerChat := flag.Int("messages", 10, "messages per generated chat")
	flag.Parse()

	gen := genConfig{MessagesPerChat: *messagesPerChat}
	switch {
	case *configPath != "":
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("failed to read config: %v", err)
		}
		if err := yaml.Unmarshal(data, &gen); err != nil {
			log.Fatalf("failed to parse config: %v", err)
		}
		if gen.MessagesPerChat <= 0 {
			gen.MessagesPerChat = *messagesPerChat
		}
	case flag.NArg() == 1:
		gen.Topics = []string{flag.Arg(0)}
	default:
		fmt.Fprintln(os.Stderr, `Usage: corpusgen "topic name"`)
		fmt.Fprintln(os.Stderr, "   or: corpusgen -config topics.yaml")
		os.Exit(1)
	}

	cfg := config.Load()
	client, err := llm.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel, 200, 0.7)
	if err != nil {
		log.Fatalf("failed to create completion client: %v", err)
	}
	store := corpus.NewStore(cfg.CorpusPath)
	ctx := context.Background()

	for _, topic := range gen.Topics {
		entry, err := generateChat(ctx, client, topic, gen.MessagesPerChat)
		if err != nil {
			log.Fatalf("failed to generate chat about %q: %v", topic, err)
		}
		replaced, err := store.Upsert(*entry)
		if err != nil {
			log.Fatalf("failed to save chat %s: %v", entry.ID, err)
		}
		action := "added"
		if replaced {
			action = "updated"
		}
		fmt.Printf("%s %s (%q, %d messages)\n", action, entry.ID, entry.Topic, len(entry.Messages))
	}
}

// generateChat has the model play both sides of a conversation about topic.
func generateChat(ctx context.Context, client *llm.Client, topic string, maxMessages int) (*types.CorpusEntry, error) {
	systemPrompt := fmt.Sprintf(
		"Generate a realistic conversation between a user and an AI assistant about %q. "+
			"The user should ask questions and share thoughts naturally, and you should respond helpfully. "+
			"Make it feel like a real conversation someone might have.", topic)

	messages := []types.Message{{
		Role:      types.RoleUser,
		Content:   fmt.Sprintf("Hi! I'm interested in learning about %s. Can you help me with that?", topic),
		Timestamp: time.Now(),
	}}

	fmt.Printf("generating chat about: %s\n", topic)
	for i := 0; i < maxMessages-1; i++ {
		completion, err := client.Complete(ctx, messages, llm.Options{SystemPrompt: systemPrompt})
		if err != nil {
			return nil, err
		}
		messages = append(messages, types.Message{
			Role:      types.RoleAssistant,
			Content:   completion.Content,
			Timestamp: time.Now(),
		})

		if i < maxMessages-2 {
			messages = append(messages, types.Message{
				Role:      types.RoleUser,
				Content:   followUpPrompts[rand.IntN(len(followUpPrompts))],
				Timestamp: time.Now(),
			})
		}

		// Small delay to be nice to the API.
		time.Sleep(500 * time.Millisecond)
	}

	return &types.CorpusEntry{
		ID:        chatID(summary.FormatConversation(messages)),
		Topic:     topic,
		Messages:  messages,
		CreatedAt: time.Now(),
	}, nil
}

// chatID derives a stable id from the conversation text, so re-generating
// the same content replaces the existing entry instead of duplicating it.
func chatID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "chat_" + hex.EncodeToString(sum[:])[:12]
}
