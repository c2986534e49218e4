package editor

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/joeblew999/plat-style/internal/history"
	"github.com/joeblew999/plat-style/internal/reconcile"
)

//go:embed fragments/*.html
var fragments embed.FS

// Renderer renders the HTML fragments patched into the editor page.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded fragment templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(fragments, "fragments/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderList renders items with a named template, or an empty state if none.
func (r *Renderer) RenderList(name string, items []any, emptyTitle, emptyMsg string) (string, error) {
	var buf bytes.Buffer
	if len(items) == 0 {
		err := r.templates.ExecuteTemplate(&buf, "empty-state", map[string]string{
			"Title": emptyTitle, "Message": emptyMsg,
		})
		return buf.String(), err
	}
	for _, item := range items {
		if err := r.templates.ExecuteTemplate(&buf, name, item); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// LayerRow is the view of one selectable layer.
type LayerRow struct {
	Index    int
	ID       string
	Type     string
	Visible  bool
	Selected bool
	Invalid  bool
}

// ErrorRow is the view of one validation error.
type ErrorRow struct {
	reconcile.ClassifiedError
	Layer string
}

// HistoryRow is the view of one revision.
type HistoryRow struct {
	history.Revision
	Current bool
}

func layerRows(res reconcile.Result) []any {
	invalid := map[int]bool{}
	for _, e := range res.Errors {
		if e.Parsed != nil {
			invalid[e.Parsed.Data.Index] = true
		}
	}
	rows := make([]any, len(res.Selectable))
	for i, l := range res.Selectable {
		rows[i] = LayerRow{
			Index:    i,
			ID:       l.ID,
			Type:     string(l.Type),
			Visible:  l.Layout["visibility"] != "none",
			Selected: i == res.SelectedIndex,
			Invalid:  invalid[i],
		}
	}
	return rows
}

func errorRows(res reconcile.Result) []any {
	rows := make([]any, len(res.Errors))
	for i, e := range res.Errors {
		row := ErrorRow{ClassifiedError: e}
		if e.Parsed != nil && e.Parsed.Data.Index < len(res.Selectable) {
			row.Layer = res.Selectable[e.Parsed.Data.Index].ID
		}
		rows[i] = row
	}
	return rows
}

func historyRows(h *history.History) []any {
	revs, cursor := h.Revisions()
	rows := make([]any, len(revs))
	for i, rev := range revs {
		rows[i] = HistoryRow{Revision: rev, Current: i == cursor}
	}
	return rows
}
