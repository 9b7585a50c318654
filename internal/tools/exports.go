package tools

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultExportTTL is how long a generated file stays downloadable.
const DefaultExportTTL = 24 * time.Hour

// ExportedFile is a generated report held for download.
type ExportedFile struct {
	ID        string
	Name      string
	MimeType  string
	Data      []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// URL is the download path handed back to the caller.
func (f ExportedFile) URL() string {
	return "/api/files/" + f.ID
}

// ExportStore keeps generated files in memory until they expire.
type ExportStore struct {
	mu    sync.Mutex
	files map[string]ExportedFile
	ttl   time.Duration
	now   func() time.Time
}

func NewExportStore(ttl time.Duration) *ExportStore {
	if ttl <= 0 {
		ttl = DefaultExportTTL
	}
	return &ExportStore{
		files: make(map[string]ExportedFile),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put registers a file under a fresh id and returns its record.
func (s *ExportStore) Put(name, mimeType string, data []byte) ExportedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	f := ExportedFile{
		ID:        uuid.NewString(),
		Name:      name,
		MimeType:  mimeType,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.files[f.ID] = f
	s.sweepLocked(now)
	return f
}

// Get returns the file if it exists and has not expired.
func (s *ExportStore) Get(id string) (ExportedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return ExportedFile{}, false
	}
	if s.now().UTC().After(f.ExpiresAt) {
		delete(s.files, id)
		return ExportedFile{}, false
	}
	return f, true
}

func (s *ExportStore) sweepLocked(now time.Time) {
	for id, f := range s.files {
		if now.After(f.ExpiresAt) {
			delete(s.files, id)
		}
	}
}
