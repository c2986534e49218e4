package reconcile_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/reconcile"
	"github.com/joeblew999/plat-style/internal/style"
	"github.com/joeblew999/plat-style/internal/validate"
)

func classified(messages ...string) []reconcile.ClassifiedError {
	return reconcile.Classify(raw(messages...))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func pipeline(doc *style.Document) reconcile.Sanitized {
	sel := reconcile.NewPartition(doc).Selectable()
	errs := reconcile.ClassifyDocument(sel, validate.Validate(doc.WithLayers(sel), validate.Latest()))
	return reconcile.Sanitize(doc, errs, discardLogger())
}

const invalid = `{"version": 8, "sources": {"osm": {"type": "geojson", "data": "points.geojson"}}, "layers": [
	{"id": "ok", "type": "fill", "source": "osm", "paint": {"fill-color": "#fff"}},
	{"id": "bad", "type": "fill", "source": "osm",
	 "filter": ["all", ["==", "a", 1], ["~", "b", 2]],
	 "paint": {"fill-color": "blu", "fill-opacity": 0.5}}
]}`

func TestSanitize_NoErrors(t *testing.T) {
	t.Parallel()

	doc := decode(t, `{"version": 8, "sources": {}, "layers": []}`)
	doc.Layers = []style.Layer{userLayer("a"), baseLayer("base"), userLayer("b")}

	got := reconcile.Sanitize(doc, nil, discardLogger())
	require.Nil(t, got.Dirty)
	require.Equal(t, []string{"base", "a", "b"}, ids(got.Clean.Layers))
}

func TestSanitize_ExcisesSmallestProperty(t *testing.T) {
	t.Parallel()

	doc := decode(t, invalid)
	got := pipeline(doc)

	require.NotNil(t, got.Dirty)
	bad := got.Clean.Layers[1]
	require.Nil(t, bad.Filter, "nested filter error removes the whole filter")
	require.NotContains(t, bad.Paint, "fill-color")
	require.Equal(t, 0.5, bad.Paint["fill-opacity"])
	require.Equal(t, "bad", bad.ID)

	// the dirty view keeps the offending fragments
	require.Equal(t, "blu", got.Dirty.Layers[1].Paint["fill-color"])
	require.NotNil(t, got.Dirty.Layers[1].Filter)

	// the input is left untouched
	require.Equal(t, "blu", doc.Layers[1].Paint["fill-color"])

	if diff := cmp.Diff(doc.Layers[0].ToMap(), got.Clean.Layers[0].ToMap()); diff != "" {
		t.Errorf("valid layer changed (-want +got):\n%s", diff)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	t.Parallel()

	first := pipeline(decode(t, invalid)).Clean
	second := pipeline(first)

	require.Nil(t, second.Dirty)
	if diff := cmp.Diff(first.ToMap(), second.Clean.ToMap()); diff != "" {
		t.Errorf("sanitizing a clean document changed it (-want +got):\n%s", diff)
	}
}

func TestSanitize_LayerLevelAndDocumentErrorsAreNotExcised(t *testing.T) {
	t.Parallel()

	doc := decode(t, `{"version": 8, "sources": {}, "layers": [
		{"id": "a", "type": "background"}, {"id": "a", "type": "background"}]}`)

	got := reconcile.Sanitize(doc, classified(
		`layers[1]: duplicate layer id "a", previously used`,
		`version: expected one of [8], 7 found`,
	), discardLogger())

	require.Equal(t, []string{"a", "a"}, ids(got.Clean.Layers))
	require.NotNil(t, got.Dirty)
}

func TestSanitize_DirtyWhenOnlyDuplicateEmptyIDs(t *testing.T) {
	t.Parallel()

	doc := decode(t, `{"version": 8, "sources": {}, "layers": [
		{"id": "", "type": "background"}, {"id": "", "type": "background"}]}`)

	got := pipeline(doc)
	require.NotNil(t, got.Dirty, "errors exist even though nothing was removed")
	if diff := cmp.Diff(got.Dirty.ToMap(), got.Clean.ToMap()); diff != "" {
		t.Errorf("clean and dirty differ (-dirty +clean):\n%s", diff)
	}
}

func TestSanitize_MalformedPathsAreSkipped(t *testing.T) {
	t.Parallel()

	doc := decode(t, `{"version": 8, "sources": {}, "layers": [
		{"id": "a", "type": "background", "paint": {"background-color": "nope", "background-opacity": 3}}]}`)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	got := reconcile.Sanitize(doc, classified(
		"no path at all",
		`layers[7].paint.background-color: color expected, "nope" found`,
		`layers[0].paint..x: broken`,
		`layers[0].paint.background-color: color expected, "nope" found`,
	), logger)

	require.NotContains(t, got.Clean.Layers[0].Paint, "background-color")
	require.Equal(t, 3.0, got.Clean.Layers[0].Paint["background-opacity"])
	require.Contains(t, logs.String(), "outside selectable layers")
	require.Contains(t, logs.String(), "malformed error path")
}

func TestSanitize_BaseMapLayersAreVerbatim(t *testing.T) {
	t.Parallel()

	doc := style.New()
	base := baseLayer("base")
	base.Paint = map[string]any{"background-color": "nope"}
	user := userLayer("user")
	user.Paint = map[string]any{"background-color": "nope"}
	doc.Layers = []style.Layer{user, base}

	// indices refer to the selectable list, so layers[0] is "user"
	got := reconcile.Sanitize(doc, classified(
		`layers[0].paint.background-color: color expected, "nope" found`,
	), discardLogger())

	require.Equal(t, []string{"base", "user"}, ids(got.Clean.Layers))
	require.Equal(t, "nope", got.Clean.Layers[0].Paint["background-color"])
	require.NotContains(t, got.Clean.Layers[1].Paint, "background-color")
	require.Equal(t, []string{"base", "user"}, ids(got.Dirty.Layers))
}
