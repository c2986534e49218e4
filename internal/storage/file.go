package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/joeblew999/plat-style/internal/style"
)

const lockRetry = 50 * time.Millisecond

// FileStore keeps the latest style in a JSON file. A sibling ".lock" file
// guards the file against concurrent writers in other processes.
type FileStore struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// NewFileStore creates a store backed by <dataDir>/style.json.
func NewFileStore(dataDir string) *FileStore {
	path := filepath.Join(dataDir, "style.json")
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the style file location.
func (s *FileStore) Path() string { return s.path }

// LoadLatestStyle reads and decodes the style file.
func (s *FileStore) LoadLatestStyle(ctx context.Context) (*style.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrStyleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read style: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrStyleNotFound
	}

	doc, err := style.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc, nil
}

// SaveStyle encodes doc and replaces the style file atomically.
func (s *FileStore) SaveStyle(ctx context.Context, doc *style.Document) error {
	data, err := style.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode style: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write style: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) acquire(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	locked, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire lock on %s", s.path)
	}
	return func() { _ = s.lock.Unlock() }, nil
}
