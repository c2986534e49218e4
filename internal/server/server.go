// Package server assembles the style store, session service and HTTP routes.
package server

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/goccy/go-json"

	"github.com/joeblew999/plat-style/internal/api"
	"github.com/joeblew999/plat-style/internal/api/editor"
	"github.com/joeblew999/plat-style/internal/db"
	"github.com/joeblew999/plat-style/internal/metadata"
	"github.com/joeblew999/plat-style/internal/service"
	"github.com/joeblew999/plat-style/internal/storage"
)

//go:embed web/editor.html
var editorPage []byte

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreDuckDB = "duckdb"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	// Store selects the style store: memory, file or duckdb.
	Store        string
	HistoryLimit int
	MetadataTTL  time.Duration
	Logger       *slog.Logger
}

// Server is the style HTTP server.
type Server struct {
	config  Config
	mux     *http.ServeMux
	humaAPI huma.API
	db      *sql.DB
	fetcher *metadata.Fetcher
	style   *service.StyleService
	logger  *slog.Logger
}

// New creates a server and loads the stored style, if any.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Store == "" {
		cfg.Store = StoreMemory
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{config: cfg, mux: http.NewServeMux(), logger: logger}

	store, err := s.openStore(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.fetcher, err = metadata.NewFetcher(metadata.Config{TTL: cfg.MetadataTTL, Logger: logger})
	if err != nil {
		s.Close()
		return nil, err
	}

	s.style = service.NewStyleService(service.StyleConfig{
		Store:        store,
		Fetcher:      s.fetcher,
		Logger:       logger,
		HistoryLimit: cfg.HistoryLimit,
	})
	if _, err := s.style.Load(ctx); err != nil {
		logger.Warn("failed to load stored style", "store", cfg.Store, "err", err)
	}

	humaConfig := huma.DefaultConfig("plat-style API", "1.0.0")
	humaConfig.Info.Description = "Map style editor API: validation, sanitisation, layer editing and revision history."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())
	s.humaAPI = humago.New(s.mux, humaConfig)

	if err := s.routes(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) openStore(ctx context.Context) (storage.Store, error) {
	switch s.config.Store {
	case StoreMemory:
		return storage.NewMemoryStore(), nil
	case StoreFile:
		if s.config.DataDir == "" {
			return nil, errors.New("file store needs a data directory")
		}
		return storage.NewFileStore(s.config.DataDir), nil
	case StoreDuckDB:
		conn, err := db.Open(db.Config{DataDir: s.config.DataDir})
		if err != nil {
			return nil, fmt.Errorf("open duckdb: %w", err)
		}
		s.db = conn
		return storage.NewDuckDBStore(ctx, conn)
	default:
		return nil, fmt.Errorf("unknown store %q", s.config.Store)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Style returns the style service.
func (s *Server) Style() *service.StyleService {
	return s.style
}

// Close waits for background work and closes server resources.
func (s *Server) Close() error {
	if s.style != nil {
		s.style.Wait()
	}
	if s.fetcher != nil {
		s.fetcher.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Server) routes() error {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, &api.Services{Style: s.style})
	api.NewInfoHandler(s.config.DataDir, s.config.Store).RegisterRoutes(s.humaAPI)

	// Register Editor SSE routes using Huma + Datastar SDK
	renderer, err := editor.NewRenderer()
	if err != nil {
		return fmt.Errorf("editor templates: %w", err)
	}
	editor.NewEventHandler(s.style, renderer).RegisterRoutes(s.humaAPI)

	s.mux.HandleFunc("/editor", s.handleEditor)
	s.mux.HandleFunc("/", s.handleRoot)
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-style",
		"status":  "running",
	})
}

func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(editorPage)
}
