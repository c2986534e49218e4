package editor

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/reconcile"
	"github.com/joeblew999/plat-style/internal/service"
)

// EventHandler streams style changes to the Datastar UI via SSE.
type EventHandler struct {
	svc      *service.StyleService
	renderer *Renderer
}

// NewEventHandler creates a new event handler.
func NewEventHandler(svc *service.StyleService, renderer *Renderer) *EventHandler {
	return &EventHandler{svc: svc, renderer: renderer}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/events", h.Events, huma.OperationTags("editor"))
	huma.Get(api, "/api/v1/editor/state", h.State, huma.OperationTags("editor"))
	h.registerActions(api)
}

// State patches the current editor state once.
func (h *EventHandler) State(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return stream(func(sse SSE) {
		h.patch(sse, h.svc.Current())
	}), nil
}

// Events patches the current state, then every change published on the bus
// until the client disconnects.
func (h *EventHandler) Events(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			bus := h.svc.Bus()
			ch := bus.Subscribe()
			defer bus.Unsubscribe(ch)

			h.patch(sse, h.svc.Current())
			done := humaCtx.Context().Done()
			for {
				select {
				case <-done:
					return
				case ev, ok := <-ch:
					if !ok {
						return
					}
					if ev.Action == service.ActionFailed {
						sse.Error(strings.Join(ev.Messages, "; "))
						continue
					}
					h.patch(sse, h.svc.Current())
					sse.DispatchCustomEvent("style-changed", map[string]any{
						"action":   ev.Action,
						"revision": ev.Revision,
						"errors":   ev.Errors,
						"messages": ev.Messages,
					})
				}
			}
		},
	}, nil
}

// patch sends the layer, error and history lists plus the map signals.
func (h *EventHandler) patch(sse SSE, res reconcile.Result) {
	hist := h.svc.Session().History()

	if html, err := h.renderer.RenderList("layer-row", layerRows(res), "No layers", "Open a style to start editing"); err == nil {
		sse.Patch(html, "#layer-list")
	}
	if html, err := h.renderer.RenderList("error-row", errorRows(res), "No errors", "The style is valid"); err == nil {
		sse.Patch(html, "#error-list")
	}
	if html, err := h.renderer.RenderList("history-row", historyRows(hist), "No history", "Changes appear here"); err == nil {
		sse.Patch(html, "#history-list")
	}

	signals := map[string]any{
		"selectedIndex": res.SelectedIndex,
		"errorCount":    len(res.Errors),
		"canUndo":       hist.CanUndo(),
		"canRedo":       hist.CanRedo(),
		"transition":    res.Transition,
	}
	if res.Clean != nil {
		signals["mapStyle"] = res.Clean.ToMap()
	}
	if len(res.Messages) > 0 {
		signals["success"] = strings.Join(res.Messages, "\n")
	}
	sse.Signals(signals)
}
