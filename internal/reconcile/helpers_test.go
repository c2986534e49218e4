package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/style"
)

func decode(t *testing.T, raw string) *style.Document {
	t.Helper()

	doc, err := style.Decode([]byte(raw))
	require.NoError(t, err)

	return doc
}

func ids(layers []style.Layer) []string {
	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = l.ID
	}
	return out
}

func baseLayer(id string) style.Layer {
	return style.Layer{
		ID:       id,
		Type:     style.Background,
		Metadata: map[string]any{style.ProvenanceKey: style.BaseMapLayer},
	}
}

func userLayer(id string) style.Layer {
	return style.Layer{ID: id, Type: style.Background}
}
