package history_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/history"
	"github.com/joeblew999/plat-style/internal/style"
)

func docNamed(name string) *style.Document {
	d := style.New()
	d.Name = name
	return d
}

func TestHistory_EmptyUndoRedo(t *testing.T) {
	t.Parallel()

	h := history.New(0)
	require.Nil(t, h.Undo())
	require.Nil(t, h.Redo())
	require.False(t, h.CanUndo())
	require.False(t, h.CanRedo())
}

func TestHistory_UndoRedoSymmetry(t *testing.T) {
	t.Parallel()

	h := history.New(0)
	h.AddRevision(docNamed("initial"))

	const n = 5
	for i := 1; i <= n; i++ {
		h.AddRevision(docNamed(string(rune('a' + i))))
	}
	final := h.Current()

	var got *style.Document
	for i := 0; i < n; i++ {
		got = h.Undo()
	}
	require.Equal(t, "initial", got.Name)
	require.False(t, h.CanUndo())

	// Undo at position 0 is a no-op that returns the current document.
	require.Equal(t, "initial", h.Undo().Name)

	for i := 0; i < n; i++ {
		got = h.Redo()
	}
	require.Equal(t, final.Name, got.Name)
	require.False(t, h.CanRedo())
	require.Equal(t, final.Name, h.Redo().Name)
}

func TestHistory_AddRevisionTruncatesRedoTail(t *testing.T) {
	t.Parallel()

	h := history.New(0)
	h.AddRevision(docNamed("a"))
	h.AddRevision(docNamed("b"))
	h.AddRevision(docNamed("c"))

	h.Undo()
	h.Undo()
	require.True(t, h.CanRedo())

	h.AddRevision(docNamed("d"))
	require.False(t, h.CanRedo())
	require.Equal(t, 2, h.Len())

	revs, cursor := h.Revisions()
	require.Equal(t, 1, cursor)
	require.Equal(t, "a", revs[0].Document.Name)
	require.Equal(t, "d", revs[1].Document.Name)
	require.Equal(t, 4, revs[1].Seq)
	require.NotEqual(t, revs[0].ID, revs[1].ID)
}

func TestHistory_LimitDropsOldest(t *testing.T) {
	t.Parallel()

	h := history.New(2)
	h.AddRevision(docNamed("a"))
	h.AddRevision(docNamed("b"))
	h.AddRevision(docNamed("c"))

	require.Equal(t, 2, h.Len())
	require.Equal(t, "b", h.Undo().Name)
	require.Equal(t, "b", h.Undo().Name)
}

func TestHistory_SnapshotsAreCopies(t *testing.T) {
	t.Parallel()

	h := history.New(0)
	d := docNamed("a")
	h.AddRevision(d)
	d.Name = "mutated"

	got := h.Current()
	require.Equal(t, "a", got.Name)

	got.Name = "also mutated"
	require.Equal(t, "a", h.Current().Name)
}
