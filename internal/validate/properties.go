package validate

import "github.com/joeblew999/plat-style/internal/style"

type kind int

const (
	kindNumber kind = iota
	kindColor
	kindBool
	kindEnum
	kindFormatted
	kindImage
	kindFonts
	kindNumbers
	kindEnums
)

// property describes the accepted values of one paint or layout property.
type property struct {
	kind   kind
	values []string // enum values
	min    *float64
	max    *float64
	length int // fixed array length for kindNumbers, 0 for any
}

func num() property { return property{kind: kindNumber} }

func atLeast(min float64) property { return property{kind: kindNumber, min: &min} }

func between(min, max float64) property {
	return property{kind: kindNumber, min: &min, max: &max}
}

func color() property { return property{kind: kindColor} }

func boolean() property { return property{kind: kindBool} }

func enum(values ...string) property { return property{kind: kindEnum, values: values} }

func enums(values ...string) property { return property{kind: kindEnums, values: values} }

func numbers(length int) property { return property{kind: kindNumbers, length: length} }

func nonNegativeNumbers() property {
	min := 0.0
	return property{kind: kindNumbers, min: &min}
}

func image() property { return property{kind: kindImage} }

func formatted() property { return property{kind: kindFormatted} }

func fonts() property { return property{kind: kindFonts} }

func opacity() property { return between(0, 1) }

func anchor() property { return enum("map", "viewport") }

func translate() property { return numbers(2) }

var anchors = []string{
	"center", "left", "right", "top", "bottom",
	"top-left", "top-right", "bottom-left", "bottom-right",
}

var paintProperties = map[style.LayerType]map[string]property{
	style.Background: {
		"background-color":   color(),
		"background-pattern": image(),
		"background-opacity": opacity(),
	},
	style.Fill: {
		"fill-antialias":        boolean(),
		"fill-opacity":          opacity(),
		"fill-color":            color(),
		"fill-outline-color":    color(),
		"fill-translate":        translate(),
		"fill-translate-anchor": anchor(),
		"fill-pattern":          image(),
	},
	style.Line: {
		"line-opacity":          opacity(),
		"line-color":            color(),
		"line-translate":        translate(),
		"line-translate-anchor": anchor(),
		"line-width":            atLeast(0),
		"line-gap-width":        atLeast(0),
		"line-offset":           num(),
		"line-blur":             atLeast(0),
		"line-dasharray":        nonNegativeNumbers(),
		"line-pattern":          image(),
		"line-gradient":         color(),
	},
	style.Symbol: {
		"icon-opacity":          opacity(),
		"icon-color":            color(),
		"icon-halo-color":       color(),
		"icon-halo-width":       atLeast(0),
		"icon-halo-blur":        atLeast(0),
		"icon-translate":        translate(),
		"icon-translate-anchor": anchor(),
		"text-opacity":          opacity(),
		"text-color":            color(),
		"text-halo-color":       color(),
		"text-halo-width":       atLeast(0),
		"text-halo-blur":        atLeast(0),
		"text-translate":        translate(),
		"text-translate-anchor": anchor(),
	},
	style.Circle: {
		"circle-radius":           atLeast(0),
		"circle-color":            color(),
		"circle-blur":             num(),
		"circle-opacity":          opacity(),
		"circle-translate":        translate(),
		"circle-translate-anchor": anchor(),
		"circle-pitch-scale":      anchor(),
		"circle-pitch-alignment":  anchor(),
		"circle-stroke-width":     atLeast(0),
		"circle-stroke-color":     color(),
		"circle-stroke-opacity":   opacity(),
	},
	style.Heatmap: {
		"heatmap-radius":    atLeast(1),
		"heatmap-weight":    atLeast(0),
		"heatmap-intensity": atLeast(0),
		"heatmap-color":     color(),
		"heatmap-opacity":   opacity(),
	},
	style.FillExtrusion: {
		"fill-extrusion-opacity":           opacity(),
		"fill-extrusion-color":             color(),
		"fill-extrusion-translate":         translate(),
		"fill-extrusion-translate-anchor":  anchor(),
		"fill-extrusion-pattern":           image(),
		"fill-extrusion-height":            atLeast(0),
		"fill-extrusion-base":              atLeast(0),
		"fill-extrusion-vertical-gradient": boolean(),
	},
	style.Raster: {
		"raster-opacity":        opacity(),
		"raster-hue-rotate":     num(),
		"raster-brightness-min": between(0, 1),
		"raster-brightness-max": between(0, 1),
		"raster-saturation":     between(-1, 1),
		"raster-contrast":       between(-1, 1),
		"raster-resampling":     enum("linear", "nearest"),
		"raster-fade-duration":  atLeast(0),
	},
	style.Hillshade: {
		"hillshade-illumination-direction": between(0, 359),
		"hillshade-illumination-anchor":    anchor(),
		"hillshade-exaggeration":           between(0, 1),
		"hillshade-shadow-color":           color(),
		"hillshade-highlight-color":        color(),
		"hillshade-accent-color":           color(),
	},
}

var layoutProperties = map[style.LayerType]map[string]property{
	style.Background: {},
	style.Fill: {
		"fill-sort-key": num(),
	},
	style.Line: {
		"line-cap":         enum("butt", "round", "square"),
		"line-join":        enum("bevel", "round", "miter"),
		"line-miter-limit": num(),
		"line-round-limit": num(),
		"line-sort-key":    num(),
	},
	style.Symbol: {
		"symbol-placement":        enum("point", "line", "line-center"),
		"symbol-spacing":          atLeast(1),
		"symbol-avoid-edges":      boolean(),
		"symbol-sort-key":         num(),
		"symbol-z-order":          enum("auto", "viewport-y", "source"),
		"icon-allow-overlap":      boolean(),
		"icon-ignore-placement":   boolean(),
		"icon-optional":           boolean(),
		"icon-rotation-alignment": enum("map", "viewport", "auto"),
		"icon-size":               atLeast(0),
		"icon-text-fit":           enum("none", "width", "height", "both"),
		"icon-text-fit-padding":   numbers(4),
		"icon-image":              image(),
		"icon-rotate":             num(),
		"icon-padding":            atLeast(0),
		"icon-keep-upright":       boolean(),
		"icon-offset":             numbers(2),
		"icon-anchor":             enum(anchors...),
		"icon-pitch-alignment":    enum("map", "viewport", "auto"),
		"text-pitch-alignment":    enum("map", "viewport", "auto"),
		"text-rotation-alignment": enum("map", "viewport", "viewport-glyph", "auto"),
		"text-field":              formatted(),
		"text-font":               fonts(),
		"text-size":               atLeast(0),
		"text-max-width":          atLeast(0),
		"text-line-height":        num(),
		"text-letter-spacing":     num(),
		"text-justify":            enum("auto", "left", "center", "right"),
		"text-radial-offset":      num(),
		"text-variable-anchor":    enums(anchors...),
		"text-anchor":             enum(anchors...),
		"text-max-angle":          num(),
		"text-writing-mode":       enums("horizontal", "vertical"),
		"text-rotate":             num(),
		"text-padding":            atLeast(0),
		"text-keep-upright":       boolean(),
		"text-transform":          enum("none", "uppercase", "lowercase"),
		"text-offset":             numbers(2),
		"text-allow-overlap":      boolean(),
		"text-ignore-placement":   boolean(),
		"text-optional":           boolean(),
	},
	style.Circle: {
		"circle-sort-key": num(),
	},
	style.Heatmap:       {},
	style.FillExtrusion: {},
	style.Raster:        {},
	style.Hillshade:     {},
}

// sourceKinds maps a layer type to the source types it can draw from. Layer
// types absent from the map take no source.
var sourceKinds = map[style.LayerType][]string{
	style.Fill:          {"vector", "geojson"},
	style.Line:          {"vector", "geojson"},
	style.Symbol:        {"vector", "geojson"},
	style.Circle:        {"vector", "geojson"},
	style.Heatmap:       {"vector", "geojson"},
	style.FillExtrusion: {"vector", "geojson"},
	style.Raster:        {"raster", "image", "video"},
	style.Hillshade:     {"raster-dem"},
}

var sourceTypes = []string{"vector", "raster", "raster-dem", "geojson", "image", "video"}

// rootProperties are the optional top-level keys besides the ones modelled on
// style.Document.
var rootProperties = map[string]bool{
	"center": true, "zoom": true, "bearing": true, "pitch": true,
	"light": true, "lights": true, "terrain": true, "fog": true, "sky": true,
	"projection": true, "transition": true, "state": true,
}

var filterCombinators = map[string]bool{"all": true, "any": true, "none": true}

var filterComparisons = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

var filterOperators = []string{
	"==", "!=", "<", "<=", ">", ">=", "in", "!in", "all", "any", "none", "has", "!has",
}

// expressionOperators is the set of expression heads accepted in property
// values and filters.
var expressionOperators = map[string]bool{
	"literal": true, "array": true, "at": true, "in": true, "index-of": true, "slice": true,
	"case": true, "match": true, "coalesce": true, "step": true, "interpolate": true,
	"interpolate-hcl": true, "interpolate-lab": true, "let": true, "var": true,
	"get": true, "has": true, "!has": true, "length": true, "properties": true, "feature-state": true,
	"geometry-type": true, "id": true, "zoom": true, "heatmap-density": true, "line-progress": true,
	"accumulated": true, "boolean": true, "number": true, "string": true, "object": true,
	"collator": true, "format": true, "image": true, "number-format": true, "to-boolean": true,
	"to-color": true, "to-number": true, "to-string": true, "typeof": true,
	"!": true, "!=": true, "<": true, "<=": true, "==": true, ">": true, ">=": true,
	"all": true, "any": true, "none": true, "within": true, "distance": true,
	"+": true, "-": true, "*": true, "/": true, "%": true, "^": true,
	"abs": true, "acos": true, "asin": true, "atan": true, "ceil": true, "cos": true, "e": true,
	"floor": true, "ln": true, "ln2": true, "log10": true, "log2": true, "max": true, "min": true,
	"pi": true, "round": true, "sin": true, "sqrt": true, "tan": true,
	"concat": true, "downcase": true, "upcase": true, "resolved-locale": true,
	"is-supported-script": true, "rgb": true, "rgba": true, "to-rgba": true,
}
