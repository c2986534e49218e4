package reconcile

import (
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joeblew999/plat-style/internal/style"
)

// Sanitized holds the two views produced by Sanitize.
type Sanitized struct {
	// Clean is safe to hand to the renderer.
	Clean *style.Document
	// Dirty keeps the offending fragments for correction. Nil when the
	// document had no errors.
	Dirty *style.Document
}

// excisable matches a layer property path: the layer index and the dotted
// key up to the first nested array index.
var excisable = regexp.MustCompile(`^layers\[(\d+)\]\.([^\[]+)`)

// Sanitize removes the smallest enclosing property named by each error from
// the selectable layers of doc. Indices in errs refer to the selectable layer
// list. Non-selectable layers are copied verbatim and hoisted to the front of
// both views. Errors whose path cannot be excised are logged and skipped.
func Sanitize(doc *style.Document, errs []ClassifiedError, logger *slog.Logger) Sanitized {
	if logger == nil {
		logger = slog.Default()
	}
	p := NewPartition(doc)
	if len(errs) == 0 {
		return Sanitized{Clean: Reassemble(p.Selectable(), doc)}
	}

	layers := style.CloneLayers(p.Selectable())
	for _, e := range errs {
		path, _, found := strings.Cut(e.Message, ": ")
		if !found {
			logger.Debug("error message has no path", "message", e.Message)
			continue
		}
		m := excisable.FindStringSubmatch(path)
		if m == nil {
			// layer-level and document-level errors are not excised
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil || index >= len(layers) {
			logger.Warn("error path outside selectable layers", "path", path, "layers", len(layers))
			continue
		}
		keys := strings.Split(strings.TrimSuffix(m[2], "."), ".")
		if slices.Contains(keys, "") {
			logger.Warn("malformed error path", "path", path)
			continue
		}
		next, removed := layers[index].Without(keys)
		if !removed {
			logger.Debug("nothing to excise", "path", path)
			continue
		}
		layers[index] = next
	}

	return Sanitized{
		Clean: Reassemble(layers, doc),
		Dirty: Reassemble(p.Selectable(), doc),
	}
}
