// Package storage persists style documents for the editor session.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/joeblew999/plat-style/internal/style"
)

// ErrStyleNotFound is returned when no style has been saved yet.
var ErrStyleNotFound = errors.New("style not found")

// Store loads and saves the latest style document.
type Store interface {
	LoadLatestStyle(ctx context.Context) (*style.Document, error)
	SaveStyle(ctx context.Context, doc *style.Document) error
}

// MemoryStore keeps the latest style in memory.
type MemoryStore struct {
	mu  sync.RWMutex
	doc *style.Document
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadLatestStyle returns a copy of the last saved style.
func (s *MemoryStore) LoadLatestStyle(ctx context.Context) (*style.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc == nil {
		return nil, ErrStyleNotFound
	}
	return s.doc.Clone(), nil
}

// SaveStyle stores a copy of doc.
func (s *MemoryStore) SaveStyle(ctx context.Context, doc *style.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc.Clone()
	return nil
}
