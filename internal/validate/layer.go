package validate

import (
	"fmt"
	"strings"

	"github.com/joeblew999/plat-style/internal/style"
)

func (c *checker) layers(doc *style.Document) {
	seen := make(map[string]bool, len(doc.Layers))
	for i, layer := range doc.Layers {
		path := fmt.Sprintf("layers[%d]", i)

		// Duplicate empty ids are left to the caller: the renderer treats the
		// empty id as "no id".
		if layer.ID != "" {
			if seen[layer.ID] {
				c.errorf(path, "duplicate layer id %q, previously used", layer.ID)
			}
			seen[layer.ID] = true
		}
		c.layer(doc, path, layer)
	}
}

func (c *checker) layer(doc *style.Document, path string, layer style.Layer) {
	for _, key := range sortedKeys(layer.Invalid) {
		c.mistyped(path+"."+key, layer.Invalid[key])
	}
	_, badType := layer.Invalid["type"]
	_, badSource := layer.Invalid["source"]

	if layer.Type == "" {
		if !badType {
			c.errorf(path, `missing required property "type"`)
		}
		return
	}
	if !layer.Type.Valid() {
		names := make([]string, len(style.LayerTypes))
		for i, t := range style.LayerTypes {
			names[i] = string(t)
		}
		c.errorf(path+".type", "expected one of [%s], %q found", strings.Join(names, ", "), layer.Type)
		return
	}

	kinds, needsSource := sourceKinds[layer.Type]
	switch {
	case needsSource && layer.Source == "" && badSource:
	case needsSource && layer.Source == "":
		c.errorf(path, `missing required property "source"`)
	case needsSource:
		src, ok := doc.Sources[layer.Source]
		if !ok {
			c.errorf(path, "source %q not found", layer.Source)
			break
		}
		if !contains(kinds, src.Type()) && src.Type() != "" {
			c.errorf(path+".source", "layer %q requires a %s source", layer.ID, strings.Join(kinds, " or "))
			break
		}
		if src.Type() == "vector" && layer.SourceLayer == "" {
			c.errorf(path, `layer %q must specify a "source-layer"`, layer.ID)
		}
	}

	lo, hi := 0.0, 24.0
	if layer.MinZoom != nil {
		c.number(path+".minzoom", *layer.MinZoom, &lo, &hi)
	}
	if layer.MaxZoom != nil {
		c.number(path+".maxzoom", *layer.MaxZoom, &lo, &hi)
	}
	if layer.MinZoom != nil && layer.MaxZoom != nil && *layer.MaxZoom < *layer.MinZoom {
		c.errorf(path+".maxzoom", "maxzoom %v is less than minzoom %v", *layer.MaxZoom, *layer.MinZoom)
	}

	if layer.Filter != nil {
		c.filter(path+".filter", layer.Filter)
	}

	paint := paintProperties[layer.Type]
	for _, key := range sortedKeys(layer.Paint) {
		c.property(path+".paint."+key, key, paint, layer.Paint[key])
	}
	layout := layoutProperties[layer.Type]
	for _, key := range sortedKeys(layer.Layout) {
		if key == "visibility" {
			c.value(path+".layout."+key, enum("visible", "none"), layer.Layout[key])
			continue
		}
		c.property(path+".layout."+key, key, layout, layer.Layout[key])
	}
	if _, ok := layer.Layout["text-field"]; ok && doc.Glyphs == "" {
		c.errorf(path+".layout.text-field", `use of "text-field" requires a style "glyphs" property`)
	}

	for _, key := range sortedKeys(layer.Props) {
		c.errorf(path+"."+key, "unknown property %q", key)
	}
}

func (c *checker) property(path, key string, known map[string]property, value any) {
	spec, ok := known[key]
	if !ok {
		c.errorf(path, "unknown property %q", key)
		return
	}
	c.value(path, spec, value)
}

func (c *checker) value(path string, spec property, value any) {
	if list, ok := value.([]any); ok && isExpression(list, spec) {
		c.expression(path, list)
		return
	}
	if fn, ok := value.(map[string]any); ok {
		c.function(path, fn)
		return
	}

	switch spec.kind {
	case kindNumber:
		c.number(path, value, spec.min, spec.max)
	case kindColor:
		s, ok := value.(string)
		switch {
		case !ok:
			c.errorf(path, "color expected, %s found", style.KindOf(value))
		case !isColor(s):
			c.errorf(path, "color expected, %q found", s)
		}
	case kindBool:
		if _, ok := value.(bool); !ok {
			c.errorf(path, "boolean expected, %s found", style.KindOf(value))
		}
	case kindEnum:
		s, ok := value.(string)
		if !ok || !contains(spec.values, s) {
			c.errorf(path, "expected one of [%s], %s found", strings.Join(spec.values, ", "), quote(value))
		}
	case kindFormatted:
		if _, ok := value.(string); !ok {
			c.errorf(path, "string expected, %s found", style.KindOf(value))
		}
	case kindImage:
		s, ok := value.(string)
		if !ok {
			c.errorf(path, "string expected, %s found", style.KindOf(value))
			return
		}
		if c.icons != nil && s != "" && !strings.Contains(s, "{") && !c.icons[s] {
			c.errorf(path, "icon %q not found in sprite", s)
		}
	case kindFonts:
		c.fontStack(path, value)
	case kindNumbers:
		c.numberArray(path, spec, value)
	case kindEnums:
		list, ok := value.([]any)
		if !ok {
			c.errorf(path, "array expected, %s found", style.KindOf(value))
			return
		}
		for i, e := range list {
			s, ok := e.(string)
			if !ok || !contains(spec.values, s) {
				c.errorf(fmt.Sprintf("%s[%d]", path, i), "expected one of [%s], %s found",
					strings.Join(spec.values, ", "), quote(e))
			}
		}
	}
}

func (c *checker) fontStack(path string, value any) {
	list, ok := value.([]any)
	if !ok {
		c.errorf(path, "array expected, %s found", style.KindOf(value))
		return
	}
	for i, e := range list {
		font, ok := e.(string)
		if !ok {
			c.errorf(fmt.Sprintf("%s[%d]", path, i), "string expected, %s found", style.KindOf(e))
			continue
		}
		if c.fonts != nil && !c.fonts[font] {
			c.errorf(path, "font %q not found in glyphs", font)
		}
	}
}

func (c *checker) numberArray(path string, spec property, value any) {
	list, ok := value.([]any)
	if !ok {
		c.errorf(path, "array expected, %s found", style.KindOf(value))
		return
	}
	if spec.length > 0 && len(list) != spec.length {
		c.errorf(path, "array length %d expected, length %d found", spec.length, len(list))
		return
	}
	for i, e := range list {
		c.number(fmt.Sprintf("%s[%d]", path, i), e, spec.min, nil)
	}
}

// isExpression reports whether list is an expression rather than a literal
// array value. Literal font stacks and enum arrays also start with a string,
// so for those only a known operator head counts.
func isExpression(list []any, spec property) bool {
	if len(list) == 0 {
		return false
	}
	head, ok := list[0].(string)
	if !ok {
		return false
	}
	if spec.kind == kindFonts || spec.kind == kindEnums {
		return expressionOperators[head]
	}
	return true
}

func (c *checker) expression(path string, list []any) {
	head := list[0].(string)
	if !expressionOperators[head] {
		c.errorf(path+"[0]", "unknown expression %q", head)
		return
	}
	// literal values and match labels may be plain string arrays
	if head == "literal" || head == "match" {
		return
	}
	for i, arg := range list[1:] {
		nested, ok := arg.([]any)
		if !ok || len(nested) == 0 {
			continue
		}
		if h, ok := nested[0].(string); ok && !expressionOperators[h] {
			c.errorf(fmt.Sprintf("%s[%d][0]", path, i+1), "unknown expression %q", h)
		}
	}
}

func (c *checker) function(path string, fn map[string]any) {
	stops, hasStops := fn["stops"]
	_, hasProperty := fn["property"]
	if !hasStops && !hasProperty {
		c.errorf(path, "object expected to be a function with \"stops\" or \"property\"")
		return
	}
	if hasStops {
		if _, ok := stops.([]any); !ok {
			c.errorf(path+".stops", "array expected, %s found", style.KindOf(stops))
		}
	}
}

func (c *checker) filter(path string, value any) {
	list, ok := value.([]any)
	if !ok {
		c.errorf(path, "array expected, %s found", style.KindOf(value))
		return
	}
	if len(list) == 0 {
		c.errorf(path, "filter array must have at least 1 element")
		return
	}
	op, ok := list[0].(string)
	if !ok {
		c.errorf(path+"[0]", "string expected, %s found", style.KindOf(list[0]))
		return
	}

	switch {
	case filterCombinators[op]:
		for i, sub := range list[1:] {
			c.filter(fmt.Sprintf("%s[%d]", path, i+1), sub)
		}
	case filterComparisons[op]:
		if len(list) != 3 {
			c.errorf(path, "filter array for operator %q must have 3 elements", op)
		}
	case op == "in" || op == "!in":
		if len(list) < 2 {
			c.errorf(path, "filter array for operator %q must have at least 2 elements", op)
		}
	case op == "has" || op == "!has":
		if len(list) != 2 {
			c.errorf(path, "filter array for %q operator must have 2 elements", op)
		}
	case expressionOperators[op]:
		c.expression(path, list)
	default:
		c.errorf(path+"[0]", "expected one of [%s], %q found", strings.Join(filterOperators, ", "), op)
	}
}
