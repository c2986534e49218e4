package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/reconcile"
	"github.com/joeblew999/plat-style/internal/storage"
	"github.com/joeblew999/plat-style/internal/style"
	"github.com/joeblew999/plat-style/internal/validate"
)

// RegisterStyle registers the style document routes.
func (h *APIHandler) RegisterStyle(api huma.API) {
	huma.Get(api, "/api/v1/style", h.GetStyle, huma.OperationTags("style"))
	huma.Put(api, "/api/v1/style", h.PutStyle, huma.OperationTags("style"))
	huma.Register(api, huma.Operation{
		OperationID: "open-style",
		Method:      http.MethodPost,
		Path:        "/api/v1/style/open",
		Summary:     "Open a style document",
		Tags:        []string{"style"},
	}, h.OpenStyle)
	huma.Register(api, huma.Operation{
		OperationID: "load-style",
		Method:      http.MethodPost,
		Path:        "/api/v1/style/load",
		Summary:     "Reload the style from the store",
		Tags:        []string{"style"},
	}, h.LoadStyle)
	huma.Post(api, "/api/v1/style/undo", h.Undo, huma.OperationTags("history"))
	huma.Post(api, "/api/v1/style/redo", h.Redo, huma.OperationTags("history"))
	huma.Get(api, "/api/v1/style/history", h.GetHistory, huma.OperationTags("history"))
	huma.Get(api, "/api/v1/style/snapshots", h.ListSnapshots, huma.OperationTags("history"))
	huma.Get(api, "/api/v1/style/errors", h.GetErrors, huma.OperationTags("style"))
	huma.Get(api, "/api/v1/style/metadata", h.GetMetadata, huma.OperationTags("style"))
	huma.Put(api, "/api/v1/style/basemap", h.PutBaseMap, huma.OperationTags("style"))
	huma.Post(api, "/api/v1/validate", h.ValidateStyle, huma.OperationTags("style"))
}

type PutStyleInput struct {
	Save     bool `query:"save" default:"true" doc:"Persist the document"`
	Revision bool `query:"revision" default:"true" doc:"Record a history revision"`
	Body     map[string]any
}

type DocumentInput struct {
	Body map[string]any
}

func (h *APIHandler) GetStyle(ctx context.Context, input *struct{}) (*StateOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	return h.state(svc.Current()), nil
}

func (h *APIHandler) PutStyle(ctx context.Context, input *PutStyleInput) (*StateOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(input.Body)
	if err != nil {
		return nil, err
	}
	opts := reconcile.Options{Save: input.Save, AddRevision: input.Revision}
	return h.state(svc.Update(doc, opts)), nil
}

func (h *APIHandler) OpenStyle(ctx context.Context, input *DocumentInput) (*StateOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(input.Body)
	if err != nil {
		return nil, err
	}
	return h.state(svc.Open(doc)), nil
}

func (h *APIHandler) LoadStyle(ctx context.Context, input *struct{}) (*StateOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	res, err := svc.Load(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load style", err)
	}
	return h.state(res), nil
}

func (h *APIHandler) Undo(ctx context.Context, input *struct{}) (*StateOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	if !svc.Session().History().CanUndo() {
		return nil, huma.Error409Conflict("nothing to undo")
	}
	return h.state(svc.Undo()), nil
}

func (h *APIHandler) Redo(ctx context.Context, input *struct{}) (*StateOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	if !svc.Session().History().CanRedo() {
		return nil, huma.Error409Conflict("nothing to redo")
	}
	return h.state(svc.Redo()), nil
}

type HistoryEntry struct {
	RevisionBody
	Layers int `json:"layers" doc:"Number of layers in the revision"`
}

type HistoryOutput struct {
	Body struct {
		Revisions []HistoryEntry `json:"revisions"`
		Cursor    int            `json:"cursor" doc:"Index of the current revision, -1 when empty"`
	}
}

func (h *APIHandler) GetHistory(ctx context.Context, input *struct{}) (*HistoryOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	revs, cursor := svc.Session().History().Revisions()
	out := &HistoryOutput{}
	out.Body.Cursor = cursor
	out.Body.Revisions = make([]HistoryEntry, len(revs))
	for i, rev := range revs {
		entry := HistoryEntry{RevisionBody: RevisionBody{Revision: rev, Current: i == cursor}}
		if rev.Document != nil {
			entry.Layers = len(rev.Document.Layers)
		}
		out.Body.Revisions[i] = entry
	}
	return out, nil
}

type SnapshotsInput struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"500" doc:"Maximum snapshots to return"`
}

type SnapshotsOutput struct {
	Body []storage.Snapshot
}

func (h *APIHandler) ListSnapshots(ctx context.Context, input *SnapshotsInput) (*SnapshotsOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	snaps, ok, err := svc.Snapshots(ctx, input.Limit)
	if !ok {
		return nil, huma.Error404NotFound("the configured store keeps no snapshots")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list snapshots", err)
	}
	if snaps == nil {
		snaps = []storage.Snapshot{}
	}
	return &SnapshotsOutput{Body: snaps}, nil
}

type ErrorsOutput struct {
	Body struct {
		Valid  bool                        `json:"valid"`
		Errors []reconcile.ClassifiedError `json:"errors"`
	}
}

func errorsOutput(errs []reconcile.ClassifiedError) *ErrorsOutput {
	out := &ErrorsOutput{}
	out.Body.Valid = len(errs) == 0
	out.Body.Errors = errs
	if out.Body.Errors == nil {
		out.Body.Errors = []reconcile.ClassifiedError{}
	}
	return out
}

func (h *APIHandler) GetErrors(ctx context.Context, input *struct{}) (*ErrorsOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	return errorsOutput(svc.Current().Errors), nil
}

// ValidateStyle validates a document against the session's glyph and sprite
// metadata without touching the session.
func (h *APIHandler) ValidateStyle(ctx context.Context, input *DocumentInput) (*ErrorsOutput, error) {
	doc, err := decodeDocument(input.Body)
	if err != nil {
		return nil, err
	}
	spec := validate.Latest()
	if h.svc != nil && h.svc.Style != nil {
		spec = h.svc.Style.Session().Spec()
	}
	return errorsOutput(reconcile.ClassifyDocument(doc.Layers, validate.Validate(doc, spec))), nil
}

type MetadataOutput struct {
	Body struct {
		Fonts []string `json:"fonts" doc:"Font stacks available to text layers"`
		Icons []string `json:"icons" doc:"Sprite icon names"`
	}
}

func (h *APIHandler) GetMetadata(ctx context.Context, input *struct{}) (*MetadataOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	spec := svc.Session().Spec()
	out := &MetadataOutput{}
	out.Body.Fonts = nonNil(spec.Fonts)
	out.Body.Icons = nonNil(spec.Icons)
	return out, nil
}

type BaseMapInput struct {
	Body struct {
		Style map[string]any `json:"style,omitempty" doc:"Base map style; omit to remove the current base map"`
	}
}

func (h *APIHandler) PutBaseMap(ctx context.Context, input *BaseMapInput) (*StateOutput, error) {
	svc, err := h.style()
	if err != nil {
		return nil, err
	}
	var base *style.Document
	if input.Body.Style != nil {
		if base, err = decodeDocument(input.Body.Style); err != nil {
			return nil, err
		}
	}
	return h.state(svc.SetBaseMap(base)), nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
