package editor

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/reconcile"
)

// registerActions registers the signal-driven editor actions. Each reads
// selectedIndex (and from/to for moves) from the posted signals and patches
// the resulting state.
func (h *EventHandler) registerActions(api huma.API) {
	actions := []struct {
		id, path string
		fn       func(Signals) (reconcile.Result, error)
	}{
		{"editor-select", "/api/v1/editor/select", func(s Signals) (reconcile.Result, error) {
			return h.svc.Select(s.Int("selectedIndex", 0))
		}},
		{"editor-undo", "/api/v1/editor/undo", func(Signals) (reconcile.Result, error) {
			if !h.svc.Session().History().CanUndo() {
				return reconcile.Result{}, errNothing("undo")
			}
			return h.svc.Undo(), nil
		}},
		{"editor-redo", "/api/v1/editor/redo", func(Signals) (reconcile.Result, error) {
			if !h.svc.Session().History().CanRedo() {
				return reconcile.Result{}, errNothing("redo")
			}
			return h.svc.Redo(), nil
		}},
		{"editor-toggle-layer", "/api/v1/editor/layers/visibility", func(s Signals) (reconcile.Result, error) {
			return h.svc.ToggleVisibility(s.Int("selectedIndex", 0))
		}},
		{"editor-copy-layer", "/api/v1/editor/layers/copy", func(s Signals) (reconcile.Result, error) {
			return h.svc.CopyLayer(s.Int("selectedIndex", 0))
		}},
		{"editor-delete-layer", "/api/v1/editor/layers/delete", func(s Signals) (reconcile.Result, error) {
			return h.svc.DestroyLayer(s.Int("selectedIndex", 0))
		}},
		{"editor-move-layer", "/api/v1/editor/layers/move", func(s Signals) (reconcile.Result, error) {
			from := s.Int("from", s.Int("selectedIndex", 0))
			return h.svc.MoveLayer(from, s.Int("to", from))
		}},
	}

	for _, a := range actions {
		fn := a.fn
		huma.Register(api, huma.Operation{
			OperationID: a.id,
			Method:      http.MethodPost,
			Path:        a.path,
			Tags:        []string{"editor"},
		}, func(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
			signals, err := input.MustParse()
			if err != nil {
				return nil, err
			}
			return stream(func(sse SSE) {
				res, err := fn(signals)
				if err != nil {
					sse.Error(err.Error())
					return
				}
				h.patch(sse, res)
			}), nil
		})
	}
}

type errNothing string

func (e errNothing) Error() string { return "nothing to " + string(e) }
