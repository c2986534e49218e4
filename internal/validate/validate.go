// Package validate checks style documents against the style specification.
//
// Errors are plain values whose message has the form "path: description",
// e.g. `layers[3].paint.fill-color: color expected, "blu" found`. The path
// grammar (dotted keys, bracketed indices) is a contract with the error
// classifier in internal/reconcile.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-style/internal/style"
)

// Error is a single validation failure.
type Error struct {
	Message string `json:"message" doc:"Path-prefixed validation message"`
}

func (e Error) Error() string { return e.Message }

// Spec selects the specification version and the glyph/sprite metadata known
// for the document being validated. Empty Fonts or Icons disable the
// corresponding lookups.
type Spec struct {
	Version int
	Fonts   []string
	Icons   []string
}

// Latest returns the current specification without glyph/sprite metadata.
func Latest() Spec {
	return Spec{Version: style.SpecVersion}
}

// Validate returns every validation error of doc. It never panics on
// well-typed input and returns nil for a valid document.
func Validate(doc *style.Document, spec Spec) []Error {
	if spec.Version == 0 {
		spec.Version = style.SpecVersion
	}
	c := &checker{spec: spec, fonts: toSet(spec.Fonts), icons: toSet(spec.Icons)}
	if doc == nil {
		c.errorf("", "style document expected")
		return c.errs
	}
	c.root(doc)
	return c.errs
}

type checker struct {
	spec  Spec
	fonts map[string]bool
	icons map[string]bool
	errs  []Error
}

func (c *checker) errorf(path, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if path != "" {
		msg = path + ": " + msg
	}
	c.errs = append(c.errs, Error{Message: msg})
}

func (c *checker) root(doc *style.Document) {
	version, badVersion := doc.Invalid["version"]
	switch {
	case badVersion && style.KindOf(version) == "number":
		c.errorf("version", "expected one of [%d], %v found", c.spec.Version, version)
	case badVersion:
		c.errorf("version", "number expected, %s found", style.KindOf(version))
	case doc.Version == 0:
		c.errorf("", `missing required property "version"`)
	case doc.Version != c.spec.Version:
		c.errorf("version", "expected one of [%d], %d found", c.spec.Version, doc.Version)
	}
	for _, key := range sortedKeys(doc.Invalid) {
		if key != "version" {
			c.mistyped(key, doc.Invalid[key])
		}
	}

	for _, id := range sortedKeys(doc.Sources) {
		c.source("sources."+id, doc.Sources[id])
	}

	if doc.Glyphs != "" {
		for _, token := range []string{"{fontstack}", "{range}"} {
			if !strings.Contains(doc.Glyphs, token) {
				c.errorf("glyphs", `"glyphs" url must include a "%s" token`, token)
			}
		}
	}

	for _, key := range sortedKeys(doc.Props) {
		value := doc.Props[key]
		switch {
		case key == "center":
			c.center(value)
		case key == "zoom" || key == "bearing":
			c.number(key, value, nil, nil)
		case key == "pitch":
			lo, hi := 0.0, 85.0
			c.number(key, value, &lo, &hi)
		case rootProperties[key]:
		default:
			c.errorf(key, "unknown property %q", key)
		}
	}

	c.layers(doc)
}

// mistyped reports a typed key whose value had the wrong JSON kind.
func (c *checker) mistyped(path string, value any) {
	key := path[strings.LastIndexByte(path, '.')+1:]
	if strings.HasPrefix(path, "sources.") {
		key = "sources." + key
	}
	c.errorf(path, "%s expected, %s found", style.FieldKind(key), style.KindOf(value))
}

func (c *checker) center(value any) {
	list, ok := value.([]any)
	if !ok {
		c.errorf("center", "array expected, %s found", style.KindOf(value))
		return
	}
	if len(list) != 2 {
		c.errorf("center", "array length 2 expected, length %d found", len(list))
		return
	}
	lng, ok1 := list[0].(float64)
	lat, ok2 := list[1].(float64)
	if !ok1 || !ok2 {
		c.errorf("center", "array of numbers expected")
		return
	}
	if !validPoint(orb.Point{lng, lat}) {
		c.errorf("center", "[%v, %v] is not a valid longitude/latitude", lng, lat)
	}
}

func (c *checker) source(path string, src style.Source) {
	raw, present := src["type"]
	typ, _ := raw.(string)
	if !present {
		c.errorf(path, `"type" is required`)
		return
	}
	if !contains(sourceTypes, typ) {
		c.errorf(path+".type", "expected one of [%s], %s found", strings.Join(sourceTypes, ", "), quote(raw))
		return
	}

	switch typ {
	case "vector", "raster", "raster-dem":
		_, hasURL := src["url"]
		tiles, hasTiles := src["tiles"]
		if !hasURL && !hasTiles {
			c.errorf(path, `either "url" or "tiles" is required`)
		}
		if hasTiles {
			c.stringArray(path+".tiles", tiles)
		}
		if url, ok := src["url"]; ok {
			if _, isStr := url.(string); !isStr {
				c.errorf(path+".url", "string expected, %s found", style.KindOf(url))
			}
		}
	case "geojson":
		if data, ok := src["data"]; !ok {
			c.errorf(path, `missing required property "data"`)
		} else {
			c.geojson(path+".data", data)
		}
	case "image":
		if _, ok := src["url"].(string); !ok {
			c.errorf(path, `missing required property "url"`)
		}
		c.coordinates(path+".coordinates", src["coordinates"])
	case "video":
		if _, ok := src["urls"]; !ok {
			c.errorf(path, `missing required property "urls"`)
		} else {
			c.stringArray(path+".urls", src["urls"])
		}
		c.coordinates(path+".coordinates", src["coordinates"])
	}

	if b, ok := src["bounds"]; ok {
		c.bounds(path+".bounds", b)
	}
	for _, key := range []string{"minzoom", "maxzoom"} {
		if v, ok := src[key]; ok {
			lo, hi := 0.0, 24.0
			c.number(path+"."+key, v, &lo, &hi)
		}
	}
}

// geojson accepts a URL or an inline GeoJSON object.
func (c *checker) geojson(path string, value any) {
	var err error
	switch v := value.(type) {
	case string:
		return
	case map[string]any:
		var raw []byte
		if raw, err = json.Marshal(v); err != nil {
			break
		}
		switch v["type"] {
		case "FeatureCollection":
			_, err = geojson.UnmarshalFeatureCollection(raw)
		case "Feature":
			_, err = geojson.UnmarshalFeature(raw)
		default:
			_, err = geojson.UnmarshalGeometry(raw)
		}
	default:
		c.errorf(path, "object or string expected, %s found", style.KindOf(value))
		return
	}
	if err != nil {
		c.errorf(path, "invalid GeoJSON: %v", err)
	}
}

func (c *checker) bounds(path string, value any) {
	list, ok := value.([]any)
	if !ok || len(list) != 4 {
		c.errorf(path, "array of 4 numbers expected")
		return
	}
	var v [4]float64
	for i, e := range list {
		n, ok := e.(float64)
		if !ok {
			c.errorf(fmt.Sprintf("%s[%d]", path, i), "number expected, %s found", style.KindOf(e))
			return
		}
		v[i] = n
	}
	b := orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}
	if !validPoint(b.Min) || !validPoint(b.Max) || b.Left() > b.Right() || b.Bottom() > b.Top() {
		c.errorf(path, "%v is not a valid bounding box", v)
	}
}

func (c *checker) coordinates(path string, value any) {
	list, ok := value.([]any)
	if !ok || len(list) != 4 {
		c.errorf(path, "array of 4 coordinates expected")
		return
	}
	for i, e := range list {
		pair, ok := e.([]any)
		if !ok || len(pair) != 2 {
			c.errorf(fmt.Sprintf("%s[%d]", path, i), "array length 2 expected")
			continue
		}
		lng, ok1 := pair[0].(float64)
		lat, ok2 := pair[1].(float64)
		if !ok1 || !ok2 || !validPoint(orb.Point{lng, lat}) {
			c.errorf(fmt.Sprintf("%s[%d]", path, i), "invalid coordinate")
		}
	}
}

func (c *checker) stringArray(path string, value any) {
	list, ok := value.([]any)
	if !ok {
		c.errorf(path, "array expected, %s found", style.KindOf(value))
		return
	}
	for i, e := range list {
		if _, ok := e.(string); !ok {
			c.errorf(fmt.Sprintf("%s[%d]", path, i), "string expected, %s found", style.KindOf(e))
		}
	}
}

func (c *checker) number(path string, value any, min, max *float64) {
	n, ok := value.(float64)
	if !ok {
		c.errorf(path, "number expected, %s found", style.KindOf(value))
		return
	}
	if min != nil && n < *min {
		c.errorf(path, "%v is less than the minimum value %v", n, *min)
	}
	if max != nil && n > *max {
		c.errorf(path, "%v is greater than the maximum value %v", n, *max)
	}
}

func validPoint(p orb.Point) bool {
	return p.Lon() >= -180 && p.Lon() <= 180 && p.Lat() >= -90 && p.Lat() <= 90
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func toSet(list []string) map[string]bool {
	if len(list) == 0 {
		return nil
	}
	m := make(map[string]bool, len(list))
	for _, e := range list {
		m[e] = true
	}
	return m
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
