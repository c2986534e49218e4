package history_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/history"
	"github.com/joeblew999/plat-style/internal/style"
)

func decode(t *testing.T, raw string) *style.Document {
	t.Helper()

	doc, err := style.Decode([]byte(raw))
	require.NoError(t, err)

	return doc
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()

	doc := decode(t, `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "background"}]}`)
	require.Empty(t, history.Diff(doc, doc.Clone()))
}

func TestDiff_Messages(t *testing.T) {
	t.Parallel()

	prev := decode(t, `{"version": 8, "zoom": 4,
		"sources": {"osm": {"type": "vector", "url": "a"}, "old": {"type": "geojson", "data": {}}},
		"layers": [
			{"id": "water", "type": "fill", "source": "osm", "paint": {"fill-color": "#00f"}},
			{"id": "roads", "type": "line", "source": "osm"},
			{"id": "gone", "type": "background"}
		]}`)
	next := decode(t, `{"version": 8, "zoom": 5, "glyphs": "g/{fontstack}/{range}.pbf",
		"sources": {"osm": {"type": "vector", "url": "b"}, "new": {"type": "geojson", "data": {}}},
		"layers": [
			{"id": "roads", "type": "line", "source": "osm", "layout": {"visibility": "none"}},
			{"id": "water", "type": "fill", "source": "osm", "paint": {"fill-color": "#f00"}},
			{"id": "added", "type": "background"}
		]}`)

	got := history.RedoMessages(prev, next)
	require.Equal(t, []string{
		`Redo property "glyphs" set to "g/{fontstack}/{range}.pbf"`,
		`Redo property "zoom" changed from 4 to 5`,
		`Redo source "new" added`,
		`Redo source "old" removed`,
		`Redo source "osm" changed`,
		`Redo layer "gone" removed`,
		`Redo layer "roads" property "layout.visibility" set to "none"`,
		`Redo layer "water" property "paint.fill-color" changed from "#00f" to "#f00"`,
		`Redo layer "added" added`,
		`Redo layer order changed`,
	}, got)
}

func TestUndoMessages_DescribeTheReverseEdit(t *testing.T) {
	t.Parallel()

	before := decode(t, `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "background"}]}`)
	after := decode(t, `{"version": 8, "sources": {}, "layers": []}`)

	require.Equal(t, []string{`Redo layer "a" removed`}, history.RedoMessages(before, after))
	require.Equal(t, []string{`Undo layer "a" added`}, history.UndoMessages(after, before))
}

func TestDiff_NilDocuments(t *testing.T) {
	t.Parallel()

	doc := decode(t, `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "background"}]}`)
	changes := history.Diff(nil, doc)
	require.Len(t, changes, 1)
	require.Equal(t, history.Added, changes[0].Kind)
	require.Equal(t, "a", changes[0].Name)
}
