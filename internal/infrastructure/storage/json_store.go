package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"BillScanner/internal/domain"
	"BillScanner/internal/ports"
)

// JSONStore keeps the tracked bill collection in a single JSON file.
type JSONStore struct {
	path string
}

var _ ports.BillStore = (*JSONStore)(nil)

// NewJSONStore points the store at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load returns the stored collection. A missing file yields an empty
// collection without error; an unreadable or corrupt file yields an empty
// collection and an error. A corrupt file is renamed to
// <path>.corrupt-<timestamp> first.
func (s *JSONStore) Load(_ context.Context) (domain.Collection, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Collection{}, nil
	}
	if err != nil {
		return domain.Collection{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var collection domain.Collection
	if err := json.Unmarshal(raw, &collection); err != nil {
		return domain.Collection{}, s.quarantine(fmt.Errorf("decode %s: %w", s.path, err))
	}

	return collection, nil
}

// quarantine moves an undecodable file aside so the next Save cannot
// overwrite the curated data it may still hold.
func (s *JSONStore) quarantine(decodeErr error) error {
	backup := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().UTC().Format("20060102T150405.000000000Z"))
	if err := os.Rename(s.path, backup); err != nil {
		return fmt.Errorf("%w (keep corrupt file: %v)", decodeErr, err)
	}
	return fmt.Errorf("%w (moved to %s)", decodeErr, backup)
}

// Save writes the collection through a temp file and rename.
func (s *JSONStore) Save(_ context.Context, collection domain.Collection) error {
	if collection.Bills == nil {
		collection.Bills = []domain.TrackedBill{}
	}

	payload, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bills: %w", err)
	}
	payload = append(payload, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".bills-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	return nil
}
