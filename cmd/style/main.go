package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-style/internal/server"
)

// Options defines all CLI flags and env vars for the style server.
// Flags: --host, --port, --data-dir, --store, --history-limit, --log-level, --log-format
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_STORE, ...
type Options struct {
	Host         string `doc:"Host to bind to" default:"0.0.0.0"`
	Port         int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir      string `doc:"Directory for the style file and database" default:".data"`
	Store        string `doc:"Style store: memory, file or duckdb" default:"file"`
	HistoryLimit int    `doc:"Maximum revisions kept, 0 for unlimited" default:"200"`
	LogLevel     string `doc:"Log level: debug, info, warn or error" default:"info"`
	LogFormat    string `doc:"Log format: text or json" default:"text"`
}

func newServer(ctx context.Context, opts *Options) (*server.Server, *slog.Logger, error) {
	logger := newLogger(os.Stderr, opts.LogLevel, opts.LogFormat)
	slog.SetDefault(logger)

	srv, err := server.New(ctx, server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		DataDir:      opts.DataDir,
		Store:        opts.Store,
		HistoryLimit: opts.HistoryLimit,
		Logger:       logger,
	})
	return srv, logger, err
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		hooks.OnStart(func() {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, logger, err := newServer(ctx, opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error starting server: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-style API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Store:   %s (%s)\n", opts.Store, opts.DataDir)
			fmt.Println()
			fmt.Printf("  Editor:  %s/editor\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			httpServer := &http.Server{Addr: addr, Handler: srv}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server error", "err", err)
				os.Exit(1)
			}
		})
	})

	cli.Root().Use = "style"
	cli.Root().Short = "Map style editor backend: validation, sanitisation and revision history"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.Store = server.StoreMemory
			srv, _, err := newServer(context.Background(), opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// validate subcommand: classify the errors of a style file
	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a style document (JSON or YAML) and print its errors",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", args[0], err)
				os.Exit(1)
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			ok, err := runValidate(cmd.OutOrStdout(), data, asJSON)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if !ok {
				os.Exit(2)
			}
		}),
	}
	validateCmd.Flags().Bool("json", false, "Print classified errors as JSON")
	cli.Root().AddCommand(validateCmd)

	cli.Run()
}
