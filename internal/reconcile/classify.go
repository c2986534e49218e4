package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joeblew999/plat-style/internal/style"
	"github.com/joeblew999/plat-style/internal/validate"
)

// ClassifiedError is a validator message, optionally attributed to a layer
// property.
type ClassifiedError struct {
	Message string       `json:"message" doc:"Raw validator message"`
	Parsed  *ParsedError `json:"parsed,omitempty" doc:"Layer attribution, absent for document-level errors"`
}

// ParsedError attributes an error to one layer.
type ParsedError struct {
	Type string    `json:"type" enum:"layer" doc:"Attribution kind"`
	Data ErrorData `json:"data"`
}

// ErrorData locates the error within the selectable layer list.
type ErrorData struct {
	Index   int    `json:"index" doc:"Selectable layer index"`
	Key     string `json:"key" doc:"Property key, e.g. id, source or paint.fill-color"`
	Message string `json:"message" doc:"Description without the path prefix"`
}

// LayerIndex returns the index, within the full layer list partitioned by
// p, of the layer e is attributed to. Parsed indices count selectable layers
// only.
func (e ClassifiedError) LayerIndex(p *Partition) (int, bool) {
	if e.Parsed == nil {
		return 0, false
	}
	return p.AbsoluteIndex(e.Parsed.Data.Index)
}

// emptyID is how duplicate empty ids are spelled in synthetic messages.
const emptyID = "[empty_string]"

// rule maps one validator message shape to a layer attribution. The rules
// are the only place that depends on the validator's message grammar.
type rule struct {
	name    string
	pattern *regexp.Regexp
	key     func(m []string) string
	message func(m []string) string
}

var rules = []rule{
	{
		name:    "duplicate-id",
		pattern: regexp.MustCompile(`^layers\[(\d+)\]: (duplicate layer id "?(.*?)"?, previously used)$`),
		key:     func([]string) string { return "id" },
		message: func(m []string) string { return m[2] },
	},
	{
		name:    "missing-source",
		pattern: regexp.MustCompile(`^layers\[(\d+)\]: (source "(?:.*)" not found)$`),
		key:     func([]string) string { return "source" },
		message: func(m []string) string { return m[2] },
	},
	{
		name:    "property",
		pattern: regexp.MustCompile(`^layers\[(\d+)\]\.(?:(\S+)\.)?(\S+): (.*)$`),
		key: func(m []string) string {
			prop := trimIndices(m[3])
			if m[2] == "" {
				return prop
			}
			return m[2] + "." + prop
		},
		message: func(m []string) string { return m[4] },
	},
}

// trimIndices drops trailing array indices: "filter[2][0]" becomes "filter".
func trimIndices(key string) string {
	if i := strings.IndexByte(key, '['); i > 0 {
		return key[:i]
	}
	return key
}

// Classify attributes each raw error to a layer and property where its
// message has a recognised shape. Order is preserved and nothing is
// deduplicated.
func Classify(raw []validate.Error) []ClassifiedError {
	if len(raw) == 0 {
		return nil
	}
	out := make([]ClassifiedError, 0, len(raw))
	for _, e := range raw {
		out = append(out, classifyOne(e.Message))
	}
	return out
}

func classifyOne(msg string) ClassifiedError {
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return ClassifiedError{
			Message: msg,
			Parsed: &ParsedError{
				Type: "layer",
				Data: ErrorData{Index: index, Key: r.key(m), Message: r.message(m)},
			},
		}
	}
	return ClassifiedError{Message: msg}
}

// DuplicateEmptyIDs reports every layer whose id is empty after an earlier
// layer already used the empty id. The validator skips these.
func DuplicateEmptyIDs(layers []style.Layer) []validate.Error {
	var out []validate.Error
	seen := false
	for i, l := range layers {
		if l.ID != "" {
			continue
		}
		if seen {
			out = append(out, validate.Error{
				Message: fmt.Sprintf("layers[%d]: duplicate layer id %s, previously used", i, emptyID),
			})
		}
		seen = true
	}
	return out
}

// ClassifyDocument classifies the validator output for layers, preceded by
// the synthetic duplicate empty id errors.
func ClassifyDocument(layers []style.Layer, raw []validate.Error) []ClassifiedError {
	synthetic := DuplicateEmptyIDs(layers)
	if len(synthetic) == 0 {
		return Classify(raw)
	}
	all := make([]validate.Error, 0, len(synthetic)+len(raw))
	all = append(all, synthetic...)
	all = append(all, raw...)
	return Classify(all)
}
