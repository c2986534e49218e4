package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/reconcile"
	"github.com/joeblew999/plat-style/internal/style"
)

// RegisterLayers registers selectable layer routes. Indices address the
// selectable layers; base map layers are not reachable here.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/style/layers", h.ListLayers, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/style/layers/move", h.MoveLayer, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/style/layers/{index}/copy", h.CopyLayer, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/style/layers/{index}/visibility", h.ToggleVisibility, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/style/layers/{index}/rename", h.RenameLayer, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/style/layers/{index}", h.ReplaceLayer, huma.OperationTags("layers"))
	huma.Delete(api, "/api/v1/style/layers/{index}", h.DestroyLayer, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/style/select", h.SelectLayer, huma.OperationTags("layers"))
}

type LayersOutput struct {
	Body struct {
		Layers        []map[string]any `json:"layers"`
		SelectedIndex int              `json:"selectedIndex"`
	}
}

func (h *APIHandler) ListLayers(ctx context.Context, input *struct{}) (*LayersOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	res := svc.Current()
	out := &LayersOutput{}
	out.Body.SelectedIndex = res.SelectedIndex
	out.Body.Layers = make([]map[string]any, len(res.Selectable))
	for i, l := range res.Selectable {
		out.Body.Layers[i] = l.ToMap()
	}
	return out, nil
}

type MoveLayerInput struct {
	Body struct {
		From int `json:"from" minimum:"0" doc:"Current selectable index"`
		To   int `json:"to" doc:"Target selectable index, clamped to the layer range"`
	}
}

func (h *APIHandler) MoveLayer(ctx context.Context, input *MoveLayerInput) (*StateOutput, error) {
	return h.layerOp(func(svc layerService) (reconcile.Result, error) {
		return svc.MoveLayer(input.Body.From, input.Body.To)
	})
}

func (h *APIHandler) CopyLayer(ctx context.Context, input *IndexInput) (*StateOutput, error) {
	return h.layerOp(func(svc layerService) (reconcile.Result, error) {
		return svc.CopyLayer(input.Index)
	})
}

func (h *APIHandler) ToggleVisibility(ctx context.Context, input *IndexInput) (*StateOutput, error) {
	return h.layerOp(func(svc layerService) (reconcile.Result, error) {
		return svc.ToggleVisibility(input.Index)
	})
}

type RenameLayerInput struct {
	IndexInput
	Body struct {
		ID string `json:"id" minLength:"1" doc:"New layer ID"`
	}
}

func (h *APIHandler) RenameLayer(ctx context.Context, input *RenameLayerInput) (*StateOutput, error) {
	return h.layerOp(func(svc layerService) (reconcile.Result, error) {
		return svc.RenameLayer(input.Index, input.Body.ID)
	})
}

type ReplaceLayerInput struct {
	IndexInput
	Body map[string]any
}

func (h *APIHandler) ReplaceLayer(ctx context.Context, input *ReplaceLayerInput) (*StateOutput, error) {
	layer, err := style.LayerFromMap(input.Body, "layer")
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	return h.layerOp(func(svc layerService) (reconcile.Result, error) {
		return svc.ReplaceLayer(input.Index, layer)
	})
}

func (h *APIHandler) DestroyLayer(ctx context.Context, input *IndexInput) (*StateOutput, error) {
	return h.layerOp(func(svc layerService) (reconcile.Result, error) {
		return svc.DestroyLayer(input.Index)
	})
}

type SelectLayerInput struct {
	Body struct {
		Index int `json:"index" minimum:"0" doc:"Selectable layer index"`
	}
}

func (h *APIHandler) SelectLayer(ctx context.Context, input *SelectLayerInput) (*StateOutput, error) {
	return h.layerOp(func(svc layerService) (reconcile.Result, error) {
		return svc.Select(input.Body.Index)
	})
}

// layerService is the subset of the style service layer routes call.
type layerService interface {
	MoveLayer(from, to int) (reconcile.Result, error)
	CopyLayer(index int) (reconcile.Result, error)
	DestroyLayer(index int) (reconcile.Result, error)
	ToggleVisibility(index int) (reconcile.Result, error)
	RenameLayer(index int, id string) (reconcile.Result, error)
	ReplaceLayer(index int, layer style.Layer) (reconcile.Result, error)
	Select(index int) (reconcile.Result, error)
}

func (h *APIHandler) layerOp(fn func(layerService) (reconcile.Result, error)) (*StateOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	res, err := fn(svc)
	if err != nil {
		return nil, layerError(err)
	}
	return h.state(res), nil
}
