package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/style"
	"github.com/joeblew999/plat-style/internal/validate"
)

func mustDecode(t *testing.T, raw string) *style.Document {
	t.Helper()

	doc, err := style.Decode([]byte(raw))
	require.NoError(t, err)

	return doc
}

func messages(errs []validate.Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

const valid = `{
  "version": 8,
  "center": [11.5, 48.1],
  "zoom": 4,
  "glyphs": "https://example.com/fonts/{fontstack}/{range}.pbf",
  "sources": {
    "osm": {"type": "vector", "url": "https://example.com/tiles.json", "bounds": [-10, 35, 30, 60]},
    "points": {"type": "geojson", "data": {"type": "FeatureCollection", "features": []}}
  },
  "layers": [
    {"id": "bg", "type": "background", "paint": {"background-color": "rgba(0, 0, 0, 0.5)"}},
    {"id": "water", "type": "fill", "source": "osm", "source-layer": "water",
     "filter": ["all", ["==", "class", "lake"], ["has", "name"]],
     "paint": {"fill-color": "#0af", "fill-opacity": ["interpolate", ["linear"], ["zoom"], 0, 0.2, 10, 1]}},
    {"id": "labels", "type": "symbol", "source": "points",
     "layout": {"text-field": ["get", "name"], "text-font": ["Open Sans Regular"], "visibility": "none"},
     "paint": {"text-color": "hsl(120, 50%, 40%)"}}
  ]
}`

func TestValidate_ValidDocument(t *testing.T) {
	t.Parallel()

	errs := validate.Validate(mustDecode(t, valid), validate.Latest())
	require.Empty(t, messages(errs))
}

func TestValidate_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing source",
			doc: `{"version": 8, "sources": {}, "layers": [
				{"id": "a", "type": "fill", "source": "missing"}]}`,
			want: `layers[0]: source "missing" not found`,
		},
		{
			name: "duplicate id",
			doc: `{"version": 8, "sources": {}, "layers": [
				{"id": "a", "type": "background"}, {"id": "a", "type": "background"}]}`,
			want: `layers[1]: duplicate layer id "a", previously used`,
		},
		{
			name: "bad color",
			doc: `{"version": 8, "sources": {}, "layers": [
				{"id": "a", "type": "background", "paint": {"background-color": "blu"}}]}`,
			want: `layers[0].paint.background-color: color expected, "blu" found`,
		},
		{
			name: "unknown paint property",
			doc: `{"version": 8, "sources": {}, "layers": [
				{"id": "a", "type": "background", "paint": {"fill-color": "red"}}]}`,
			want: `layers[0].paint.fill-color: unknown property "fill-color"`,
		},
		{
			name: "opacity out of range",
			doc: `{"version": 8, "sources": {}, "layers": [
				{"id": "a", "type": "background", "paint": {"background-opacity": 2}}]}`,
			want: `layers[0].paint.background-opacity: 2 is greater than the maximum value 1`,
		},
		{
			name: "bad layer type",
			doc: `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "polygon"}]}`,
			want: `layers[0].type: expected one of [fill, line, symbol, circle, heatmap, fill-extrusion, raster, hillshade, background], "polygon" found`,
		},
		{
			name: "nested filter operator",
			doc: `{"version": 8, "sources": {}, "layers": [
				{"id": "a", "type": "background", "filter": ["all", ["==", "a", 1], ["~", "b", 2]]}]}`,
			want: `layers[0].filter[2][0]: expected one of [==, !=, <, <=, >, >=, in, !in, all, any, none, has, !has], "~" found`,
		},
		{
			name: "wrong version",
			doc:  `{"version": 7, "sources": {}, "layers": []}`,
			want: `version: expected one of [8], 7 found`,
		},
		{
			name: "glyph token",
			doc:  `{"version": 8, "glyphs": "https://example.com/{range}.pbf", "sources": {}, "layers": []}`,
			want: `glyphs: "glyphs" url must include a "{fontstack}" token`,
		},
		{
			name: "center out of range",
			doc:  `{"version": 8, "center": [200, 10], "sources": {}, "layers": []}`,
			want: `center: [200, 10] is not a valid longitude/latitude`,
		},
		{
			name: "source bounds",
			doc:  `{"version": 8, "sources": {"s": {"type": "vector", "url": "x", "bounds": [10, 0, -10, 5]}}, "layers": []}`,
			want: `sources.s.bounds: [10 0 -10 5] is not a valid bounding box`,
		},
		{
			name: "source type",
			doc:  `{"version": 8, "sources": {"s": {"type": "mvt"}}, "layers": []}`,
			want: `sources.s.type: expected one of [vector, raster, raster-dem, geojson, image, video], "mvt" found`,
		},
		{
			name: "source kind mismatch",
			doc: `{"version": 8, "sources": {"r": {"type": "raster", "tiles": ["t"]}}, "layers": [
				{"id": "a", "type": "fill", "source": "r"}]}`,
			want: `layers[0].source: layer "a" requires a vector or geojson source`,
		},
		{
			name: "source layer required",
			doc: `{"version": 8, "sources": {"v": {"type": "vector", "url": "u"}}, "layers": [
				{"id": "a", "type": "line", "source": "v"}]}`,
			want: `layers[0]: layer "a" must specify a "source-layer"`,
		},
		{
			name: "unknown expression",
			doc: `{"version": 8, "sources": {}, "layers": [
				{"id": "a", "type": "background", "paint": {"background-color": ["bogus", 1]}}]}`,
			want: `layers[0].paint.background-color[0]: unknown expression "bogus"`,
		},
		{
			name: "text-field without glyphs",
			doc: `{"version": 8, "sources": {"p": {"type": "geojson", "data": "points.geojson"}}, "layers": [
				{"id": "a", "type": "symbol", "source": "p", "layout": {"text-field": "x"}}]}`,
			want: `layers[0].layout.text-field: use of "text-field" requires a style "glyphs" property`,
		},
		{
			name: "geojson data of the wrong kind",
			doc:  `{"version": 8, "sources": {"p": {"type": "geojson", "data": 3}}, "layers": []}`,
			want: `sources.p.data: object or string expected, number found`,
		},
		{
			name: "unknown layer key",
			doc: `{"version": 8, "sources": {}, "layers": [
				{"id": "a", "type": "background", "x-extra": 1}]}`,
			want: `layers[0].x-extra: unknown property "x-extra"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := validate.Validate(mustDecode(t, tt.doc), validate.Latest())
			require.Contains(t, messages(errs), tt.want)
		})
	}
}

func TestValidate_MistypedValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "layer id",
			doc:  `{"version": 8, "sources": {}, "layers": [{"id": 5, "type": "background"}]}`,
			want: []string{`layers[0].id: string expected, number found`},
		},
		{
			name: "layer type",
			doc:  `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": true}]}`,
			want: []string{`layers[0].type: string expected, boolean found`},
		},
		{
			name: "layer source",
			doc:  `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "fill", "source": ["x"]}]}`,
			want: []string{`layers[0].source: string expected, array found`},
		},
		{
			name: "zoom",
			doc:  `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "background", "minzoom": "3"}]}`,
			want: []string{`layers[0].minzoom: number expected, string found`},
		},
		{
			name: "paint",
			doc:  `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "background", "paint": [1]}]}`,
			want: []string{`layers[0].paint: object expected, array found`},
		},
		{
			name: "fractional version",
			doc:  `{"version": 8.5, "sources": {}, "layers": []}`,
			want: []string{`version: expected one of [8], 8.5 found`},
		},
		{
			name: "document strings",
			doc:  `{"version": "8", "name": 1, "glyphs": {}, "sources": {}, "layers": []}`,
			want: []string{
				`version: number expected, string found`,
				`glyphs: string expected, object found`,
				`name: string expected, number found`,
			},
		},
		{
			name: "source entry",
			doc:  `{"version": 8, "sources": {"s": 3}, "layers": []}`,
			want: []string{`sources.s: object expected, number found`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := validate.Validate(mustDecode(t, tt.doc), validate.Latest())
			require.Equal(t, tt.want, messages(errs))
		})
	}
}

func TestValidate_InlineGeoJSON(t *testing.T) {
	t.Parallel()

	inline := mustDecode(t, `{"version": 8, "sources": {"p": {"type": "geojson", "data": {
		"type": "FeatureCollection",
		"features": [{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [1, 2]}}]}}},
		"layers": []}`)
	require.Empty(t, validate.Validate(inline, validate.Latest()))

	invalid := mustDecode(t, `{"version": 8, "sources": {"p": {"type": "geojson",
		"data": {"type": "Feature", "geometry": {"type": "Blob", "coordinates": [1, 2]}}}}, "layers": []}`)
	errs := messages(validate.Validate(invalid, validate.Latest()))
	require.Len(t, errs, 1)
	require.True(t, strings.HasPrefix(errs[0], "sources.p.data: invalid GeoJSON: "), errs[0])
}

func TestValidate_EmptyIDsAreNotReportedAsDuplicates(t *testing.T) {
	t.Parallel()

	doc := mustDecode(t, `{"version": 8, "sources": {}, "layers": [
		{"id": "", "type": "background"}, {"id": "", "type": "background"}]}`)

	require.Empty(t, validate.Validate(doc, validate.Latest()))
}

func TestValidate_FontsAndIcons(t *testing.T) {
	t.Parallel()

	doc := mustDecode(t, `{"version": 8, "glyphs": "g/{fontstack}/{range}.pbf",
		"sources": {"p": {"type": "geojson", "data": "points.geojson"}}, "layers": [
		{"id": "a", "type": "symbol", "source": "p",
		 "layout": {"text-field": "x", "text-font": ["Known", "Missing"], "icon-image": "pin"}}]}`)

	require.Empty(t, validate.Validate(doc, validate.Latest()))

	errs := validate.Validate(doc, validate.Spec{Fonts: []string{"Known"}, Icons: []string{"marker"}})
	require.Equal(t, []string{
		`layers[0].layout.icon-image: icon "pin" not found in sprite`,
		`layers[0].layout.text-font: font "Missing" not found in glyphs`,
	}, messages(errs))
}

func TestValidate_NilDocument(t *testing.T) {
	t.Parallel()

	errs := validate.Validate(nil, validate.Latest())
	require.Len(t, errs, 1)
}
