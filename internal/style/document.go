// Package style holds the map style document model shared by the editor core.
//
// Documents are treated as values: editing code builds a new document (usually
// via Clone) instead of mutating one that may still be referenced by the
// revision history or by a previous reconciliation result.
package style

// SpecVersion is the style specification version the editor targets.
const SpecVersion = 8

// LayerType is the closed set of layer kinds understood by the renderer.
type LayerType string

const (
	Background    LayerType = "background"
	Fill          LayerType = "fill"
	Line          LayerType = "line"
	Symbol        LayerType = "symbol"
	Circle        LayerType = "circle"
	Heatmap       LayerType = "heatmap"
	FillExtrusion LayerType = "fill-extrusion"
	Raster        LayerType = "raster"
	Hillshade     LayerType = "hillshade"
)

// LayerTypes lists every known layer type in specification order.
var LayerTypes = []LayerType{
	Fill, Line, Symbol, Circle, Heatmap, FillExtrusion, Raster, Hillshade, Background,
}

// Valid reports whether t is one of the known layer types.
func (t LayerType) Valid() bool {
	for _, known := range LayerTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Metadata keys used to tag layer provenance.
const (
	ProvenanceKey   = "azmaps:type"
	BaseMapLayer    = "baseMap layer"
	RendererKey     = "maputnik:renderer"
	DefaultRenderer = "mbgljs"
)

// Source is an open mapping describing a data source. Only "type" is
// interpreted by the core; everything else is carried verbatim.
type Source map[string]any

// Type returns the source type, or "" when absent or not a string.
func (s Source) Type() string {
	t, _ := s["type"].(string)
	return t
}

// Document is a style document.
type Document struct {
	Version  int
	Name     string
	Sources  map[string]Source
	Layers   []Layer
	Sprite   string
	Glyphs   string
	Metadata map[string]any
	// Props keeps every other top-level key (center, zoom, light, ...) verbatim.
	Props map[string]any
	// Invalid holds typed keys whose value had the wrong JSON kind, verbatim.
	// A non-object source is kept under "sources.<id>".
	Invalid map[string]any
}

// Layer is one styling rule of a document.
type Layer struct {
	ID          string
	Type        LayerType
	Source      string
	SourceLayer string
	Filter      any
	MinZoom     *float64
	MaxZoom     *float64
	Paint       map[string]any
	Layout      map[string]any
	Metadata    map[string]any
	// Props keeps unrecognised layer keys verbatim.
	Props map[string]any
	// Invalid holds typed keys whose value had the wrong JSON kind, verbatim.
	Invalid map[string]any
}

// Selectable reports whether the layer is user-authored, as opposed to one
// injected by a base map.
func (l Layer) Selectable() bool {
	if l.Metadata == nil {
		return true
	}
	tag, _ := l.Metadata[ProvenanceKey].(string)
	return tag != BaseMapLayer
}

// New returns an empty document at the current specification version.
func New() *Document {
	return &Document{
		Version: SpecVersion,
		Sources: map[string]Source{},
		Layers:  []Layer{},
	}
}

// Clone returns a deep copy of the document. A nil document clones to nil.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Version:  d.Version,
		Name:     d.Name,
		Sprite:   d.Sprite,
		Glyphs:   d.Glyphs,
		Metadata: cloneMap(d.Metadata),
		Props:    cloneMap(d.Props),
		Invalid:  cloneMap(d.Invalid),
	}
	if d.Sources != nil {
		out.Sources = make(map[string]Source, len(d.Sources))
		for id, src := range d.Sources {
			out.Sources[id] = Source(cloneMap(src))
		}
	}
	out.Layers = CloneLayers(d.Layers)
	return out
}

// WithLayers returns a deep copy of the document whose layer list is replaced
// by a copy of layers.
func (d *Document) WithLayers(layers []Layer) *Document {
	out := d.Clone()
	if out == nil {
		out = New()
	}
	out.Layers = CloneLayers(layers)
	return out
}

// Clone returns a deep copy of the layer.
func (l Layer) Clone() Layer {
	out := l
	out.Filter = cloneValue(l.Filter)
	if l.MinZoom != nil {
		z := *l.MinZoom
		out.MinZoom = &z
	}
	if l.MaxZoom != nil {
		z := *l.MaxZoom
		out.MaxZoom = &z
	}
	out.Paint = cloneMap(l.Paint)
	out.Layout = cloneMap(l.Layout)
	out.Metadata = cloneMap(l.Metadata)
	out.Props = cloneMap(l.Props)
	out.Invalid = cloneMap(l.Invalid)
	return out
}

// CloneLayers deep-copies a layer slice, preserving nil.
func CloneLayers(layers []Layer) []Layer {
	if layers == nil {
		return nil
	}
	out := make([]Layer, len(layers))
	for i, l := range layers {
		out[i] = l.Clone()
	}
	return out
}

// TagBaseMap returns copies of layers marked as injected base-map layers.
// Existing metadata is kept, the provenance tag wins.
func TagBaseMap(layers []Layer) []Layer {
	out := CloneLayers(layers)
	for i := range out {
		if out[i].Metadata == nil {
			out[i].Metadata = map[string]any{}
		}
		out[i].Metadata[ProvenanceKey] = BaseMapLayer
	}
	return out
}

// WithDefaults returns a copy of d with editor defaults applied: the renderer
// metadata key is set when missing.
func WithDefaults(d *Document) *Document {
	out := d.Clone()
	if out == nil {
		out = New()
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	if _, ok := out.Metadata[RendererKey]; !ok {
		out.Metadata[RendererKey] = DefaultRenderer
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Source:
		return Source(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []float64:
		return append([]float64(nil), t...)
	default:
		return v
	}
}
