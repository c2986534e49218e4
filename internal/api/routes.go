// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/history"
	"github.com/joeblew999/plat-style/internal/reconcile"
	"github.com/joeblew999/plat-style/internal/service"
	"github.com/joeblew999/plat-style/internal/style"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Style *service.StyleService
}

// Types

type IndexInput struct {
	Index int `path:"index" minimum:"0" doc:"Selectable layer index" example:"0"`
}

type LayerSummary struct {
	Index   int    `json:"index" doc:"Selectable layer index"`
	ID      string `json:"id" doc:"Layer ID"`
	Type    string `json:"type" doc:"Layer type"`
	Visible bool   `json:"visible" doc:"Whether layout.visibility is not none"`
}

type StateBody struct {
	Style         map[string]any              `json:"style" doc:"Document as edited, including invalid fragments"`
	Clean         map[string]any              `json:"clean" doc:"Renderer-safe document"`
	Dirty         map[string]any              `json:"dirty,omitempty" doc:"Document keeping the invalid fragments, absent when valid"`
	Errors        []StateError   `json:"errors" doc:"Validation errors"`
	Layers        []LayerSummary `json:"layers" doc:"Selectable layers"`
	SelectedIndex int            `json:"selectedIndex" doc:"Index of the selected layer"`
	Transition    bool           `json:"transition" doc:"Whether the map should animate to the new style"`
	RevisionID    string         `json:"revisionId,omitempty" doc:"Revision recorded by this change"`
	Messages      []string       `json:"messages,omitempty" doc:"Undo/redo descriptions"`
	CanUndo       bool           `json:"canUndo"`
	CanRedo       bool           `json:"canRedo"`
}

// StateError is a validation error located in the clean and dirty layer
// lists, which start with the base-map layers.
type StateError struct {
	reconcile.ClassifiedError
	LayerIndex *int `json:"layerIndex,omitempty" doc:"Index into the clean and dirty layers, absent for document-level errors"`
}

type StateOutput struct {
	Body StateBody
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every REST route of h on api.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) style() (*service.StyleService, error) {
	if h.svc == nil || h.svc.Style == nil {
		return nil, huma.Error503ServiceUnavailable("style service not available")
	}
	return h.svc.Style, nil
}

// state renders a reconciliation result.
func (h *APIHandler) state(res reconcile.Result) *StateOutput {
	body := StateBody{
		Style:         toMap(res.Document),
		Clean:         toMap(res.Clean),
		Errors:        stateErrors(res),
		Layers:        summaries(res.Selectable),
		SelectedIndex: res.SelectedIndex,
		Transition:    res.Transition,
		Messages:      res.Messages,
	}
	if res.Dirty != nil {
		body.Dirty = res.Dirty.ToMap()
	}
	if res.Revision != nil {
		body.RevisionID = res.Revision.ID
	}
	if h.svc != nil && h.svc.Style != nil {
		hist := h.svc.Style.Session().History()
		body.CanUndo, body.CanRedo = hist.CanUndo(), hist.CanRedo()
	}
	return &StateOutput{Body: body}
}

func stateErrors(res reconcile.Result) []StateError {
	p := reconcile.NewPartition(res.Clean)
	out := make([]StateError, len(res.Errors))
	for i, e := range res.Errors {
		out[i] = StateError{ClassifiedError: e}
		if abs, ok := e.LayerIndex(p); ok {
			out[i].LayerIndex = &abs
		}
	}
	return out
}

func toMap(doc *style.Document) map[string]any {
	if doc == nil {
		return style.New().ToMap()
	}
	return doc.ToMap()
}

func summaries(layers []style.Layer) []LayerSummary {
	out := make([]LayerSummary, len(layers))
	for i, l := range layers {
		out[i] = LayerSummary{
			Index:   i,
			ID:      l.ID,
			Type:    string(l.Type),
			Visible: l.Layout["visibility"] != "none",
		}
	}
	return out
}

// layerError maps session errors to HTTP errors.
func layerError(err error) error {
	if errors.Is(err, reconcile.ErrLayerIndex) {
		return huma.Error404NotFound(err.Error())
	}
	return huma.Error500InternalServerError("layer operation failed", err)
}

// decodeDocument shapes a JSON body into a document.
func decodeDocument(body map[string]any) (*style.Document, error) {
	doc, err := style.FromMap(body)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	return doc, nil
}

type RevisionBody struct {
	history.Revision
	Current bool `json:"current" doc:"Whether the cursor points at this revision"`
}
