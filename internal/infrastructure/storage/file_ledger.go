// Package storage persists the dedup ledger.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"feedherald/internal/domain"
	"feedherald/internal/ports"
)

// FileStore keeps the ledger as a JSON file mapping feed names to id lists.
type FileStore struct {
	path string
}

var _ ports.LedgerStore = (*FileStore)(nil)

// NewFileStore points the store at its backing file.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the ledger. A missing file means nothing has been delivered
// yet; an unreadable or corrupt file is an error, because proceeding with an
// empty ledger would re-deliver everything.
func (s *FileStore) Load(_ context.Context) (*domain.Ledger, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", s.path, err)
	}

	var snapshot map[string][]int
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", s.path, err)
	}
	return domain.RestoreLedger(snapshot), nil
}

// Save writes the ledger snapshot back to the file.
func (s *FileStore) Save(_ context.Context, ledger *domain.Ledger) error {
	raw, err := json.MarshalIndent(ledger.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write ledger %s: %w", s.path, err)
	}
	return nil
}
