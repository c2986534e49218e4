package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	dataDir string
	store   string
}

func NewInfoHandler(dataDir, store string) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, store: store}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DataDir  string   `json:"data_dir,omitempty" doc:"Data directory path"`
	Store    string   `json:"store" doc:"Style store backend" enum:"memory,file,duckdb"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"validation", "history", "basemap", "metadata"}
	if h.store == "duckdb" {
		features = append(features, "snapshots")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "plat-style",
		Version:  "0.1.0",
		DataDir:  h.dataDir,
		Store:    h.store,
		Features: features,
	}}, nil
}
