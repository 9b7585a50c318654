package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/logimind/advisor/internal/domain"
)

// FileBackend stores one JSON document per session under a directory.
// Session ids are sanitized for filesystem safety; non-ASCII content is
// written verbatim so Vietnamese text survives round-trips.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the directory if needed and returns the backend.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating conversations directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(sessionID string) string {
	return filepath.Join(f.dir, SanitizeSessionID(sessionID)+".json")
}

// Load reads the session record, or returns ErrNotFound.
func (f *FileBackend) Load(sessionID string) (*domain.Conversation, error) {
	data, err := os.ReadFile(f.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading conversation file: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("decoding conversation file: %w", err)
	}
	return &conv, nil
}

// Save writes the full session record atomically.
func (f *FileBackend) Save(conv *domain.Conversation) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(conv); err != nil {
		return fmt.Errorf("encoding conversation: %w", err)
	}

	path := f.path(conv.SessionID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing conversation file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing conversation file: %w", err)
	}
	return nil
}

// Delete removes the session record.
func (f *FileBackend) Delete(sessionID string) error {
	if err := os.Remove(f.path(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing conversation file: %w", err)
	}
	return nil
}
