package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/reconcile"
	"github.com/joeblew999/plat-style/internal/style"
)

func withBase(t *testing.T, userIDs ...string) *style.Document {
	t.Helper()

	doc := layersDoc(t, userIDs...)
	doc.Layers = append([]style.Layer{baseLayer("base")}, doc.Layers...)
	return doc
}

func TestSession_MoveLayer(t *testing.T) {
	t.Parallel()

	s := newSession(t, reconcile.Config{})
	s.Reconcile(withBase(t, "a", "b", "c"), reconcile.DefaultOptions())
	_, err := s.Select(0)
	require.NoError(t, err)

	res, err := s.MoveLayer(0, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c", "a"}, ids(res.Selectable))
	require.Equal(t, []string{"base", "b", "c", "a"}, ids(res.Document.Layers))
	require.Equal(t, 2, res.SelectedIndex)

	// indices are clamped
	res, err = s.MoveLayer(10, -3)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, ids(res.Selectable))

	before := s.History().Len()
	_, err = s.MoveLayer(1, 1)
	require.NoError(t, err)
	require.Equal(t, before, s.History().Len())
}

func TestSession_CopyAndDestroyLayer(t *testing.T) {
	t.Parallel()

	s := newSession(t, reconcile.Config{})
	s.Reconcile(withBase(t, "a", "b"), reconcile.DefaultOptions())

	res, err := s.CopyLayer(1)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b-copy", "b"}, ids(res.Selectable))

	res, err = s.DestroyLayer(0)
	require.NoError(t, err)
	require.Equal(t, []string{"b-copy", "b"}, ids(res.Selectable))
	require.Equal(t, "base", res.Document.Layers[0].ID)

	_, err = s.DestroyLayer(5)
	require.ErrorIs(t, err, reconcile.ErrLayerIndex)
	_, err = s.CopyLayer(-1)
	require.ErrorIs(t, err, reconcile.ErrLayerIndex)
}

func TestSession_ToggleVisibility(t *testing.T) {
	t.Parallel()

	s := newSession(t, reconcile.Config{})
	s.Reconcile(layersDoc(t, "a"), reconcile.DefaultOptions())

	res, err := s.ToggleVisibility(0)
	require.NoError(t, err)
	require.Equal(t, "none", res.Selectable[0].Layout["visibility"])

	res, err = s.ToggleVisibility(0)
	require.NoError(t, err)
	require.Equal(t, "visible", res.Selectable[0].Layout["visibility"])
}

func TestSession_RenameAndReplaceKeepSelection(t *testing.T) {
	t.Parallel()

	s := newSession(t, reconcile.Config{})
	s.Reconcile(layersDoc(t, "a", "b"), reconcile.DefaultOptions())
	_, err := s.Select(1)
	require.NoError(t, err)

	res, err := s.RenameLayer(1, "renamed")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "renamed"}, ids(res.Selectable))
	require.Equal(t, 1, res.SelectedIndex)

	replacement := style.Layer{ID: "fresh", Type: style.Background, Paint: map[string]any{"background-color": "red"}}
	res, err = s.ReplaceLayer(1, replacement)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "fresh"}, ids(res.Selectable))
	require.Equal(t, 1, res.SelectedIndex)
	require.Equal(t, "red", res.Selectable[1].Paint["background-color"])
}

func TestSession_SetBaseMap(t *testing.T) {
	t.Parallel()

	s := newSession(t, reconcile.Config{})
	s.Reconcile(withBase(t, "a"), reconcile.DefaultOptions())

	base := decode(t, `{"version": 8, "glyphs": "https://base.example.com/{fontstack}/{range}.pbf",
		"sources": {"basemap": {"type": "vector", "url": "https://base.example.com/tiles.json"}},
		"layers": [{"id": "land", "type": "background"}, {"id": "water", "type": "background"}]}`)

	res := s.SetBaseMap(base)
	require.Equal(t, []string{"land", "water", "a"}, ids(res.Document.Layers))
	require.Equal(t, []string{"a"}, ids(res.Selectable))
	require.Contains(t, res.Document.Sources, "basemap")
	require.Equal(t, base.Glyphs, res.Document.Glyphs)
	require.False(t, res.Document.Layers[0].Selectable())

	res = s.SetBaseMap(nil)
	require.Equal(t, []string{"a"}, ids(res.Document.Layers))
}
