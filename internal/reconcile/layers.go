package reconcile

import (
	"fmt"

	"github.com/joeblew999/plat-style/internal/style"
)

// Layer operations address the selectable layers of the edited document by
// index. Each one rebuilds the document with Reassemble and runs a default
// pass, so it is saved and recorded in the history.

// MoveLayer moves the selectable layer at from to position to. Both indices
// are clamped to the list.
func (s *Session) MoveLayer(from, to int) (Result, error) {
	return s.editLayers(func(layers []style.Layer) ([]style.Layer, error) {
		if len(layers) == 0 {
			return nil, fmt.Errorf("move layer: %w", ErrLayerIndex)
		}
		from, to = clamp(from, 0, len(layers)-1), clamp(to, 0, len(layers)-1)
		if from == to {
			return nil, nil
		}
		moved := layers[from]
		layers = append(layers[:from], layers[from+1:]...)
		layers = append(layers[:to], append([]style.Layer{moved}, layers[to:]...)...)
		return layers, nil
	})
}

// CopyLayer inserts a copy of the layer at index, with "-copy" appended to
// its id, in front of the original.
func (s *Session) CopyLayer(index int) (Result, error) {
	return s.editLayers(func(layers []style.Layer) ([]style.Layer, error) {
		if err := checkIndex(index, layers); err != nil {
			return nil, fmt.Errorf("copy layer: %w", err)
		}
		dup := layers[index].Clone()
		dup.ID += "-copy"
		return append(layers[:index], append([]style.Layer{dup}, layers[index:]...)...), nil
	})
}

// DestroyLayer removes the layer at index.
func (s *Session) DestroyLayer(index int) (Result, error) {
	return s.editLayers(func(layers []style.Layer) ([]style.Layer, error) {
		if err := checkIndex(index, layers); err != nil {
			return nil, fmt.Errorf("destroy layer: %w", err)
		}
		return append(layers[:index], layers[index+1:]...), nil
	})
}

// ToggleVisibility flips layout.visibility of the layer at index between
// "none" and "visible".
func (s *Session) ToggleVisibility(index int) (Result, error) {
	return s.editLayers(func(layers []style.Layer) ([]style.Layer, error) {
		if err := checkIndex(index, layers); err != nil {
			return nil, fmt.Errorf("toggle visibility: %w", err)
		}
		l := &layers[index]
		if l.Layout == nil {
			l.Layout = map[string]any{}
		}
		if l.Layout["visibility"] == "none" {
			l.Layout["visibility"] = "visible"
		} else {
			l.Layout["visibility"] = "none"
		}
		return layers, nil
	})
}

// RenameLayer changes the id of the layer at index.
func (s *Session) RenameLayer(index int, id string) (Result, error) {
	return s.editLayers(func(layers []style.Layer) ([]style.Layer, error) {
		if err := checkIndex(index, layers); err != nil {
			return nil, fmt.Errorf("rename layer: %w", err)
		}
		if layers[index].ID == s.selectedID {
			s.selectedID = id
		}
		layers[index].ID = id
		return layers, nil
	})
}

// ReplaceLayer replaces the layer at index.
func (s *Session) ReplaceLayer(index int, layer style.Layer) (Result, error) {
	return s.editLayers(func(layers []style.Layer) ([]style.Layer, error) {
		if err := checkIndex(index, layers); err != nil {
			return nil, fmt.Errorf("replace layer: %w", err)
		}
		if layers[index].ID == s.selectedID {
			s.selectedID = layer.ID
		}
		layers[index] = layer.Clone()
		return layers, nil
	})
}

// SetBaseMap swaps the injected base map. The base map's layers are tagged as
// non-selectable and placed before the user's layers; its sources, glyphs
// and sprite are merged into the document. A nil base removes the current
// base map layers.
func (s *Session) SetBaseMap(base *style.Document) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	if doc == nil {
		doc = style.New()
	}
	user := NewPartition(doc).Selectable()

	next := doc.WithLayers(nil)
	if base != nil {
		if next.Sources == nil {
			next.Sources = map[string]style.Source{}
		}
		for id, src := range base.Clone().Sources {
			next.Sources[id] = src
		}
		if base.Glyphs != "" {
			next.Glyphs = base.Glyphs
		}
		if base.Sprite != "" {
			next.Sprite = base.Sprite
		}
		next.Layers = style.TagBaseMap(base.Layers)
	}
	return s.reconcileLocked(Reassemble(user, next), DefaultOptions(), nil)
}

// editLayers applies fn to a copy of the selectable layers of the edited
// document. A nil slice from fn means nothing changed.
func (s *Session) editLayers(fn func([]style.Layer) ([]style.Layer, error)) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	if doc == nil {
		doc = style.New()
	}
	layers, err := fn(style.CloneLayers(NewPartition(doc).Selectable()))
	if err != nil {
		return s.result, err
	}
	if layers == nil {
		return s.result, nil
	}
	return s.reconcileLocked(Reassemble(layers, doc), DefaultOptions(), nil), nil
}

func checkIndex(index int, layers []style.Layer) error {
	if index < 0 || index >= len(layers) {
		return fmt.Errorf("index %d of %d layers: %w", index, len(layers), ErrLayerIndex)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
