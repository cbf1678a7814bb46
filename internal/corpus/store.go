// Package corpus reads and writes the chats.json corpus file.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/easeaico/kindred/internal/types"
)

// Store persists the corpus as a JSON array of entries.
type Store struct {
	path string
}

// NewStore returns a Store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load decodes every entry in the corpus file. A missing file is an empty
// corpus, not an error. Embedding validity is the match engine's concern.
func (s *Store) Load() ([]types.CorpusEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read corpus file %s: %w", s.path, err)
	}

	var entries []types.CorpusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode corpus file %s: %w", s.path, err)
	}
	return entries, nil
}

// Save writes all entries back to the corpus file.
func (s *Store) Save(entries []types.CorpusEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write corpus file %s: %w", s.path, err)
	}
	return nil
}

// Upsert inserts entry, or replaces an existing entry with the same id.
// Returns true if an existing entry was replaced.
func (s *Store) Upsert(entry types.CorpusEntry) (bool, error) {
	entries, err := s.Load()
	if err != nil {
		return false, err
	}

	replaced := false
	for i := range entries {
		if entries[i].ID == entry.ID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	if err := s.Save(entries); err != nil {
		return false, err
	}
	return replaced, nil
}
