package reconcile

import "github.com/joeblew999/plat-style/internal/style"

// Partition splits a document's layers into selectable (user-authored) and
// non-selectable (base-map) layers and maps indices between the selectable
// view and the full layer list. It is derived data: build a new one whenever
// the document changes.
type Partition struct {
	selectable    []style.Layer
	nonSelectable []style.Layer
	absolute      []int // selectable index -> absolute index
}

// NewPartition partitions doc. A nil document yields an empty partition.
func NewPartition(doc *style.Document) *Partition {
	p := &Partition{selectable: []style.Layer{}, nonSelectable: []style.Layer{}}
	if doc == nil {
		return p
	}
	for i, l := range doc.Layers {
		if l.Selectable() {
			p.selectable = append(p.selectable, l)
			p.absolute = append(p.absolute, i)
		} else {
			p.nonSelectable = append(p.nonSelectable, l)
		}
	}
	return p
}

// Selectable returns the user-facing layers in document order.
func (p *Partition) Selectable() []style.Layer { return p.selectable }

// NonSelectable returns the injected layers in document order.
func (p *Partition) NonSelectable() []style.Layer { return p.nonSelectable }

// SelectableIndexOf returns the selectable index of the first layer with id.
func (p *Partition) SelectableIndexOf(id string) (int, bool) {
	for i, l := range p.selectable {
		if l.ID == id {
			return i, true
		}
	}
	return 0, false
}

// AbsoluteIndex converts a selectable index into an index of the full list.
func (p *Partition) AbsoluteIndex(sel int) (int, bool) {
	if sel < 0 || sel >= len(p.absolute) {
		return 0, false
	}
	return p.absolute[sel], true
}

// SelectableIndex converts an index of the full list into a selectable index.
// It fails for non-selectable layers.
func (p *Partition) SelectableIndex(abs int) (int, bool) {
	for sel, a := range p.absolute {
		if a == abs {
			return sel, true
		}
	}
	return 0, false
}

// ResolveSelection returns the index of the previously selected layer in p,
// falling back to 0 when it no longer exists.
func ResolveSelection(p *Partition, prevID string) int {
	if i, ok := p.SelectableIndexOf(prevID); ok {
		return i
	}
	return 0
}

// Reassemble returns a copy of original whose layers are original's
// non-selectable layers, in their original relative order, followed by
// selectable.
func Reassemble(selectable []style.Layer, original *style.Document) *style.Document {
	base := NewPartition(original).NonSelectable()
	layers := make([]style.Layer, 0, len(base)+len(selectable))
	layers = append(layers, base...)
	layers = append(layers, selectable...)
	if original == nil {
		return style.New().WithLayers(layers)
	}
	return original.WithLayers(layers)
}
