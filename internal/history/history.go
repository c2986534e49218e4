// Package history keeps an undo/redo history of whole style documents.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joeblew999/plat-style/internal/style"
)

// Revision is an immutable snapshot of a document.
type Revision struct {
	ID        string          `json:"id" doc:"Revision ID"`
	Seq       int             `json:"seq" doc:"Monotonic sequence number"`
	CreatedAt time.Time       `json:"createdAt" doc:"When the revision was recorded"`
	Document  *style.Document `json:"-"`
}

// History is a cursor over a list of revisions. Entries before the cursor
// are undo targets, entries after it are redo targets.
type History struct {
	mu        sync.RWMutex
	revisions []Revision
	cursor    int
	seq       int
	limit     int
	now       func() time.Time
}

// New creates an empty history. A positive limit bounds the number of
// revisions kept; the oldest are dropped first.
func New(limit int) *History {
	return &History{cursor: -1, limit: limit, now: time.Now}
}

// AddRevision drops every revision after the cursor, appends a copy of doc
// and moves the cursor onto it.
func (h *History) AddRevision(doc *style.Document) Revision {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	rev := Revision{
		ID:        uuid.NewString(),
		Seq:       h.seq,
		CreatedAt: h.now(),
		Document:  doc.Clone(),
	}

	h.revisions = append(h.revisions[:h.cursor+1], rev)
	if h.limit > 0 && len(h.revisions) > h.limit {
		h.revisions = append([]Revision(nil), h.revisions[len(h.revisions)-h.limit:]...)
	}
	h.cursor = len(h.revisions) - 1
	return rev
}

// Undo moves the cursor back one revision and returns its document. At the
// first revision it stays put and returns the current document.
func (h *History) Undo() *style.Document {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor > 0 {
		h.cursor--
	}
	return h.currentLocked()
}

// Redo moves the cursor forward one revision and returns its document. At the
// last revision it stays put and returns the current document.
func (h *History) Redo() *style.Document {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < len(h.revisions)-1 {
		h.cursor++
	}
	return h.currentLocked()
}

// Current returns the document at the cursor, or nil for an empty history.
func (h *History) Current() *style.Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentLocked()
}

func (h *History) currentLocked() *style.Document {
	if h.cursor < 0 {
		return nil
	}
	return h.revisions[h.cursor].Document.Clone()
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor < len(h.revisions)-1
}

// Revisions returns the recorded revisions, oldest first, and the cursor
// position.
func (h *History) Revisions() ([]Revision, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Revision, len(h.revisions))
	copy(out, h.revisions)
	return out, h.cursor
}

// Len returns the number of recorded revisions.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.revisions)
}
