package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/easeaico/kindred/internal/types"
)

func TestLoadMissingFileReturnsEmptyCorpus(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "chats.json"))
	entries, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty corpus, got %d entries", len(entries))
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "chats.json"))
	entries := []types.CorpusEntry{
		{
			ID:        "chat_a",
			Topic:     "cooking tips",
			Summary:   &types.Summary{Topics: []string{"cooking"}, CommunicationStyle: "curious"},
			Embedding: []float32{0.1, 0.2, 0.3},
		},
		{ID: "chat_b", Topic: "gardening"},
	}

	if err := store.Save(entries); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	if loaded[0].ID != "chat_a" || loaded[1].ID != "chat_b" {
		t.Fatalf("ingestion order not preserved: %q, %q", loaded[0].ID, loaded[1].ID)
	}
	if loaded[0].Summary == nil || loaded[0].Summary.CommunicationStyle != "curious" {
		t.Fatalf("summary not round-tripped: %+v", loaded[0].Summary)
	}
	if len(loaded[0].Embedding) != 3 {
		t.Fatalf("embedding not round-tripped: %v", loaded[0].Embedding)
	}
	if loaded[1].Summary != nil {
		t.Fatalf("expected absent summary to stay absent, got %+v", loaded[1].Summary)
	}
}

func TestUpsertReplacesById(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "chats.json"))

	replaced, err := store.Upsert(types.CorpusEntry{ID: "chat_a", Topic: "old"})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if replaced {
		t.Fatal("expected insert, got replace")
	}

	replaced, err = store.Upsert(types.CorpusEntry{ID: "chat_a", Topic: "new"})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if !replaced {
		t.Fatal("expected replace, got insert")
	}

	entries, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Topic != "new" {
		t.Fatalf("unexpected corpus after upsert: %+v", entries)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path).Load(); err == nil {
		t.Fatal("expected decode error for malformed corpus file")
	}
}
