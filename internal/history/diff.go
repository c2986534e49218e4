package history

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/goccy/go-json"

	"github.com/joeblew999/plat-style/internal/style"
)

// Kind is the direction of a single change.
type Kind string

const (
	Added   Kind = "added"
	Removed Kind = "removed"
	Changed Kind = "changed"
	Moved   Kind = "moved"
)

// Change is one structural difference between two documents.
type Change struct {
	Kind Kind `json:"kind"`
	// Target is "property", "source" or "layer".
	Target string `json:"target"`
	// Name is the top-level key, source id or layer id.
	Name string `json:"name,omitempty"`
	// Property is the changed layer property, e.g. "paint.fill-color".
	Property string `json:"property,omitempty"`
	From     any    `json:"from,omitempty"`
	To       any    `json:"to,omitempty"`
}

// String renders the change as a short human-readable sentence.
func (c Change) String() string {
	switch {
	case c.Kind == Moved:
		return "layer order changed"
	case c.Target == "layer" && c.Property != "":
		switch c.Kind {
		case Added:
			return fmt.Sprintf("layer %q property %q set to %s", c.Name, c.Property, render(c.To))
		case Removed:
			return fmt.Sprintf("layer %q property %q removed", c.Name, c.Property)
		default:
			return fmt.Sprintf("layer %q property %q changed from %s to %s",
				c.Name, c.Property, render(c.From), render(c.To))
		}
	case c.Target == "property" && c.Kind == Changed:
		return fmt.Sprintf("property %q changed from %s to %s", c.Name, render(c.From), render(c.To))
	case c.Target == "property" && c.Kind == Added:
		return fmt.Sprintf("property %q set to %s", c.Name, render(c.To))
	default:
		return fmt.Sprintf("%s %q %s", c.Target, c.Name, c.Kind)
	}
}

const maxRendered = 60

func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	if len(data) > maxRendered {
		return string(data[:maxRendered-3]) + "..."
	}
	return string(data)
}

// Diff lists the changes that turn prev into next: top-level keys first,
// then sources by id, then layers by id with one change per property, then
// a single Moved change when the relative order of surviving layers differs.
func Diff(prev, next *style.Document) []Change {
	if prev == nil {
		prev = style.New()
	}
	if next == nil {
		next = style.New()
	}

	var changes []Change
	changes = append(changes, diffTop(prev, next)...)
	changes = append(changes, diffSources(prev.Sources, next.Sources)...)
	changes = append(changes, diffLayers(prev.Layers, next.Layers)...)
	return changes
}

// UndoMessages describes an undo from current back to target.
func UndoMessages(current, target *style.Document) []string {
	return messages("Undo ", Diff(current, target))
}

// RedoMessages describes a redo from current forward to target.
func RedoMessages(current, target *style.Document) []string {
	return messages("Redo ", Diff(current, target))
}

func messages(prefix string, changes []Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = prefix + c.String()
	}
	return out
}

func diffTop(prev, next *style.Document) []Change {
	a, b := prev.ToMap(), next.ToMap()
	for _, m := range []map[string]any{a, b} {
		delete(m, "sources")
		delete(m, "layers")
	}
	return diffMaps(a, b, func(key string, kind Kind, from, to any) Change {
		return Change{Kind: kind, Target: "property", Name: key, From: from, To: to}
	})
}

func diffSources(prev, next map[string]style.Source) []Change {
	var changes []Change
	for _, id := range unionKeys(prev, next) {
		a, inPrev := prev[id]
		b, inNext := next[id]
		switch {
		case !inNext:
			changes = append(changes, Change{Kind: Removed, Target: "source", Name: id})
		case !inPrev:
			changes = append(changes, Change{Kind: Added, Target: "source", Name: id})
		case !reflect.DeepEqual(map[string]any(a), map[string]any(b)):
			changes = append(changes, Change{Kind: Changed, Target: "source", Name: id})
		}
	}
	return changes
}

func diffLayers(prev, next []style.Layer) []Change {
	beforeOrder, before := indexByID(prev)
	afterOrder, after := indexByID(next)

	var changes []Change
	for _, id := range beforeOrder {
		if _, ok := after[id]; !ok {
			changes = append(changes, Change{Kind: Removed, Target: "layer", Name: id})
		}
	}
	for _, id := range afterOrder {
		old, ok := before[id]
		if !ok {
			changes = append(changes, Change{Kind: Added, Target: "layer", Name: id})
			continue
		}
		changes = append(changes, diffMaps(flatten(old), flatten(after[id]),
			func(key string, kind Kind, from, to any) Change {
				return Change{Kind: kind, Target: "layer", Name: id, Property: key, From: from, To: to}
			})...)
	}

	if !reflect.DeepEqual(common(beforeOrder, after), common(afterOrder, before)) {
		changes = append(changes, Change{Kind: Moved, Target: "layer"})
	}
	return changes
}

// indexByID keys layers by id. Later layers reusing an id are ignored.
func indexByID(layers []style.Layer) ([]string, map[string]style.Layer) {
	order := make([]string, 0, len(layers))
	m := make(map[string]style.Layer, len(layers))
	for _, l := range layers {
		if _, dup := m[l.ID]; dup {
			continue
		}
		m[l.ID] = l
		order = append(order, l.ID)
	}
	return order, m
}

// common returns the ids of order that are also present in other.
func common(order []string, other map[string]style.Layer) []string {
	out := []string{}
	for _, id := range order {
		if _, ok := other[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// flatten returns the layer's properties with paint and layout entries
// lifted to "paint.<name>" and "layout.<name>".
func flatten(l style.Layer) map[string]any {
	m := l.ToMap()
	delete(m, "id")
	for _, group := range []string{"paint", "layout"} {
		sub, ok := m[group].(map[string]any)
		if !ok {
			continue
		}
		delete(m, group)
		for k, v := range sub {
			m[group+"."+k] = v
		}
	}
	return m
}

func diffMaps(a, b map[string]any, change func(key string, kind Kind, from, to any) Change) []Change {
	var changes []Change
	for _, key := range unionKeys(a, b) {
		from, inA := a[key]
		to, inB := b[key]
		switch {
		case !inB:
			changes = append(changes, change(key, Removed, from, nil))
		case !inA:
			changes = append(changes, change(key, Added, nil, to))
		case !reflect.DeepEqual(from, to):
			changes = append(changes, change(key, Changed, from, to))
		}
	}
	return changes
}

func unionKeys[V any](a, b map[string]V) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
