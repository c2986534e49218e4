package reconcile_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/reconcile"
	"github.com/joeblew999/plat-style/internal/style"
	"github.com/joeblew999/plat-style/internal/validate"
)

func TestPartition_IndexMapping(t *testing.T) {
	t.Parallel()

	doc := style.New()
	doc.Layers = []style.Layer{baseLayer("b1"), userLayer("u1"), baseLayer("b2"), userLayer("u2")}
	p := reconcile.NewPartition(doc)

	require.Equal(t, []string{"u1", "u2"}, ids(p.Selectable()))
	require.Equal(t, []string{"b1", "b2"}, ids(p.NonSelectable()))

	abs, ok := p.AbsoluteIndex(1)
	require.True(t, ok)
	require.Equal(t, 3, abs)

	sel, ok := p.SelectableIndex(1)
	require.True(t, ok)
	require.Equal(t, 0, sel)

	_, ok = p.SelectableIndex(2)
	require.False(t, ok, "base map layers have no selectable index")
	_, ok = p.AbsoluteIndex(2)
	require.False(t, ok)

	i, ok := p.SelectableIndexOf("u2")
	require.True(t, ok)
	require.Equal(t, 1, i)
	_, ok = p.SelectableIndexOf("b1")
	require.False(t, ok)
}

func TestClassifiedError_LayerIndex(t *testing.T) {
	t.Parallel()

	doc := style.New()
	doc.Layers = []style.Layer{baseLayer("b1"), baseLayer("b2"), userLayer("u1"), userLayer("u2")}
	p := reconcile.NewPartition(doc)

	errs := reconcile.Classify([]validate.Error{
		{Message: `layers[1].paint.background-color: color expected, "blu" found`},
		{Message: `version: expected one of [8], 7 found`},
		{Message: `layers[5].minzoom: number expected, string found`},
	})

	abs, ok := errs[0].LayerIndex(p)
	require.True(t, ok)
	require.Equal(t, 3, abs)
	require.Equal(t, "u2", doc.Layers[abs].ID)
	sel, ok := p.SelectableIndex(abs)
	require.True(t, ok)
	require.Equal(t, errs[0].Parsed.Data.Index, sel)

	_, ok = errs[1].LayerIndex(p)
	require.False(t, ok, "document-level errors have no layer")
	_, ok = errs[2].LayerIndex(p)
	require.False(t, ok, "index past the selectable layers")
}

func TestReassemble_RoundTrip(t *testing.T) {
	t.Parallel()

	doc := decode(t, `{"version": 8, "name": "x", "sources": {}, "layers": [
		{"id": "a", "type": "background"}, {"id": "b", "type": "background"}, {"id": "c", "type": "background"}]}`)

	got := reconcile.Reassemble(reconcile.NewPartition(doc).Selectable(), doc)
	if diff := cmp.Diff(doc.ToMap(), got.ToMap()); diff != "" {
		t.Errorf("round trip changed the document (-want +got):\n%s", diff)
	}
}

func TestReassemble_HoistsBaseMapLayers(t *testing.T) {
	t.Parallel()

	doc := style.New()
	doc.Layers = []style.Layer{userLayer("u1"), baseLayer("b1"), userLayer("u2"), baseLayer("b2")}

	got := reconcile.Reassemble([]style.Layer{userLayer("u2"), userLayer("u3")}, doc)
	require.Equal(t, []string{"b1", "b2", "u2", "u3"}, ids(got.Layers))
	require.Equal(t, []string{"u1", "b1", "u2", "b2"}, ids(doc.Layers))
}

func TestResolveSelection(t *testing.T) {
	t.Parallel()

	doc := style.New()
	doc.Layers = []style.Layer{userLayer("A"), userLayer("B"), userLayer("C")}
	require.Equal(t, 1, reconcile.ResolveSelection(reconcile.NewPartition(doc), "B"))

	// removing A keeps B selected at its new index
	doc.Layers = doc.Layers[1:]
	require.Equal(t, 0, reconcile.ResolveSelection(reconcile.NewPartition(doc), "B"))

	// a vanished id resets to the first layer
	require.Equal(t, 0, reconcile.ResolveSelection(reconcile.NewPartition(doc), "gone"))
}
