package style

// Without returns a copy of the layer with the value at the dotted property
// path removed, e.g. ["paint", "fill-color"] or ["filter"]. The boolean is
// false when nothing existed at the path; the copy is returned unchanged.
func (l Layer) Without(path []string) (Layer, bool) {
	if len(path) == 0 {
		return l, false
	}
	out := l.Clone()
	head, rest := path[0], path[1:]
	if _, ok := out.Invalid[head]; ok {
		if len(rest) > 0 {
			return l, false
		}
		delete(out.Invalid, head)
		if len(out.Invalid) == 0 {
			out.Invalid = nil
		}
		return out, true
	}
	switch head {
	case "id", "type", "source", "source-layer", "filter", "minzoom", "maxzoom":
		if len(rest) > 0 {
			// Scalars and filters have no addressable children by key.
			return l, false
		}
		return out.clearField(head)
	case "paint":
		m, ok := unsetIn(out.Paint, rest)
		out.Paint = m
		return out, ok
	case "layout":
		m, ok := unsetIn(out.Layout, rest)
		out.Layout = m
		return out, ok
	case "metadata":
		m, ok := unsetIn(out.Metadata, rest)
		out.Metadata = m
		return out, ok
	default:
		if out.Props == nil {
			return l, false
		}
		m, ok := unsetIn(out.Props, path)
		out.Props = m
		return out, ok
	}
}

func (l Layer) clearField(name string) (Layer, bool) {
	switch name {
	case "id":
		ok := l.ID != ""
		l.ID = ""
		return l, ok
	case "type":
		ok := l.Type != ""
		l.Type = ""
		return l, ok
	case "source":
		ok := l.Source != ""
		l.Source = ""
		return l, ok
	case "source-layer":
		ok := l.SourceLayer != ""
		l.SourceLayer = ""
		return l, ok
	case "filter":
		ok := l.Filter != nil
		l.Filter = nil
		return l, ok
	case "minzoom":
		ok := l.MinZoom != nil
		l.MinZoom = nil
		return l, ok
	case "maxzoom":
		ok := l.MaxZoom != nil
		l.MaxZoom = nil
		return l, ok
	}
	return l, false
}

// unsetIn removes the value at path inside m. An empty path drops the whole
// map.
func unsetIn(m map[string]any, path []string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	if len(path) == 0 {
		return nil, true
	}
	if len(path) == 1 {
		if _, ok := m[path[0]]; !ok {
			return m, false
		}
		delete(m, path[0])
		return m, true
	}
	child, ok := m[path[0]].(map[string]any)
	if !ok {
		return m, false
	}
	child, removed := unsetIn(child, path[1:])
	if child == nil {
		delete(m, path[0])
	} else {
		m[path[0]] = child
	}
	return m, removed
}
