package style

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// ErrInvalidDocument is returned when raw input cannot be shaped into a
// document at all (not an object, or a layer list that is not an array of
// objects). Mistyped values are reported by the validator instead.
var ErrInvalidDocument = errors.New("invalid style document")

// Decode parses a JSON style document.
func Decode(data []byte) (*Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return FromMap(raw)
}

// DecodeLayer parses a single JSON layer.
func DecodeLayer(data []byte) (Layer, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Layer{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return LayerFromMap(raw, "layer")
}

// Encode renders the document as indented JSON.
func Encode(d *Document) ([]byte, error) {
	return json.MarshalIndent(d.ToMap(), "", "  ")
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Layer) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Layer) UnmarshalJSON(data []byte) error {
	layer, err := DecodeLayer(data)
	if err != nil {
		return err
	}
	*l = layer
	return nil
}

// ToMap returns the generic JSON form of the document. Invalid values are
// written back where they were found.
func (d *Document) ToMap() map[string]any {
	out := cloneMap(d.Props)
	if out == nil {
		out = map[string]any{}
	}
	out["version"] = d.Version
	if d.Name != "" {
		out["name"] = d.Name
	}
	sources := make(map[string]any, len(d.Sources))
	for id, src := range d.Sources {
		sources[id] = cloneMap(src)
	}
	out["sources"] = sources
	layers := make([]any, len(d.Layers))
	for i, l := range d.Layers {
		layers[i] = l.ToMap()
	}
	out["layers"] = layers
	if d.Sprite != "" {
		out["sprite"] = d.Sprite
	}
	if d.Glyphs != "" {
		out["glyphs"] = d.Glyphs
	}
	if d.Metadata != nil {
		out["metadata"] = cloneMap(d.Metadata)
	}
	for key, value := range d.Invalid {
		if id, ok := strings.CutPrefix(key, "sources."); ok {
			sources[id] = cloneValue(value)
			continue
		}
		out[key] = cloneValue(value)
	}
	return out
}

// ToMap returns the generic JSON form of the layer.
func (l Layer) ToMap() map[string]any {
	out := cloneMap(l.Props)
	if out == nil {
		out = map[string]any{}
	}
	out["id"] = l.ID
	if l.Type != "" {
		out["type"] = string(l.Type)
	}
	if l.Source != "" {
		out["source"] = l.Source
	}
	if l.SourceLayer != "" {
		out["source-layer"] = l.SourceLayer
	}
	if l.Filter != nil {
		out["filter"] = cloneValue(l.Filter)
	}
	if l.MinZoom != nil {
		out["minzoom"] = *l.MinZoom
	}
	if l.MaxZoom != nil {
		out["maxzoom"] = *l.MaxZoom
	}
	if l.Paint != nil {
		out["paint"] = cloneMap(l.Paint)
	}
	if l.Layout != nil {
		out["layout"] = cloneMap(l.Layout)
	}
	if l.Metadata != nil {
		out["metadata"] = cloneMap(l.Metadata)
	}
	for key, value := range l.Invalid {
		out[key] = cloneValue(value)
	}
	return out
}

// fieldKinds names the JSON kind expected for each typed key of a document
// or layer.
var fieldKinds = map[string]string{
	"version":      "number",
	"name":         "string",
	"sprite":       "string",
	"glyphs":       "string",
	"metadata":     "object",
	"sources":      "object",
	"id":           "string",
	"type":         "string",
	"source":       "string",
	"source-layer": "string",
	"minzoom":      "number",
	"maxzoom":      "number",
	"paint":        "object",
	"layout":       "object",
}

// FieldKind returns the JSON kind expected for a typed document or layer
// key, or "" for keys carried verbatim. "sources.<id>" names a source.
func FieldKind(key string) string {
	if strings.HasPrefix(key, "sources.") {
		return "object"
	}
	return fieldKinds[key]
}

// FromMap builds a document from its generic form (decoded JSON or YAML).
// Typed keys holding the wrong kind of value are kept in Invalid for the
// validator to report. Only input without a document shape is rejected: a
// nil map, a non-array "layers" or a non-object layer.
func FromMap(raw map[string]any) (*Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: document must be an object", ErrInvalidDocument)
	}
	doc := &Document{Sources: map[string]Source{}, Layers: []Layer{}}
	invalid := func(key string, value any) {
		if doc.Invalid == nil {
			doc.Invalid = map[string]any{}
		}
		doc.Invalid[key] = value
	}
	for key, value := range raw {
		value = normalize(value)
		switch key {
		case "version":
			n, ok := value.(float64)
			if !ok || n != math.Trunc(n) {
				invalid(key, value)
				continue
			}
			doc.Version = int(n)
		case "name", "sprite", "glyphs":
			s, ok := value.(string)
			if !ok {
				invalid(key, value)
				continue
			}
			switch key {
			case "name":
				doc.Name = s
			case "sprite":
				doc.Sprite = s
			default:
				doc.Glyphs = s
			}
		case "metadata":
			m, ok := value.(map[string]any)
			if !ok {
				invalid(key, value)
				continue
			}
			doc.Metadata = m
		case "sources":
			m, ok := value.(map[string]any)
			if !ok {
				invalid(key, value)
				continue
			}
			for id, src := range m {
				sm, ok := src.(map[string]any)
				if !ok {
					invalid("sources."+id, src)
					continue
				}
				doc.Sources[id] = Source(sm)
			}
		case "layers":
			list, ok := value.([]any)
			if !ok {
				return nil, typeError("layers", "array", value)
			}
			for i, item := range list {
				path := fmt.Sprintf("layers[%d]", i)
				m, ok := item.(map[string]any)
				if !ok {
					return nil, typeError(path, "object", item)
				}
				layer, err := LayerFromMap(m, path)
				if err != nil {
					return nil, err
				}
				doc.Layers = append(doc.Layers, layer)
			}
		default:
			if doc.Props == nil {
				doc.Props = map[string]any{}
			}
			doc.Props[key] = value
		}
	}
	return doc, nil
}

// LayerFromMap builds a layer from its generic form. path prefixes errors.
// Typed keys holding the wrong kind of value are kept in Invalid.
func LayerFromMap(raw map[string]any, path string) (Layer, error) {
	if raw == nil {
		return Layer{}, fmt.Errorf("%w: %s: object expected, null found", ErrInvalidDocument, path)
	}
	var l Layer
	invalid := func(key string, value any) {
		if l.Invalid == nil {
			l.Invalid = map[string]any{}
		}
		l.Invalid[key] = value
	}
	for key, value := range raw {
		value = normalize(value)
		switch key {
		case "id", "type", "source", "source-layer":
			s, ok := value.(string)
			if !ok {
				invalid(key, value)
				continue
			}
			switch key {
			case "id":
				l.ID = s
			case "type":
				l.Type = LayerType(s)
			case "source":
				l.Source = s
			default:
				l.SourceLayer = s
			}
		case "minzoom", "maxzoom":
			n, ok := value.(float64)
			if !ok {
				invalid(key, value)
				continue
			}
			if key == "minzoom" {
				l.MinZoom = &n
			} else {
				l.MaxZoom = &n
			}
		case "filter":
			l.Filter = value
		case "paint", "layout", "metadata":
			m, ok := value.(map[string]any)
			if !ok {
				invalid(key, value)
				continue
			}
			switch key {
			case "paint":
				l.Paint = m
			case "layout":
				l.Layout = m
			default:
				l.Metadata = m
			}
		default:
			if l.Props == nil {
				l.Props = map[string]any{}
			}
			l.Props[key] = value
		}
	}
	return l, nil
}

func typeError(path, want string, got any) error {
	return fmt.Errorf("%w: %s: %s expected, %s found", ErrInvalidDocument, path, want, KindOf(got))
}

// KindOf names the JSON kind of a generic value the way validator messages do.
func KindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, uint64, uint32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// normalize converts YAML-decoded values to the shapes produced by JSON
// decoding: float64 numbers and string-keyed maps.
func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}
