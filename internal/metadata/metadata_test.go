package metadata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/metadata"
)

func TestGlyphsListURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		template string
		want     string
	}{
		{"https://tiles.example.com/{fontstack}/{range}.pbf", "https://tiles.example.com/fontstacks.json"},
		{"https://example.com/fonts/{fontstack}/{range}.pbf", "https://example.com/fonts.json"},
		{"https://example.com/fonts/{fontstack}/{range}.pbf?key=abc", "https://example.com/fonts.json?key=abc"},
	}
	for _, tt := range tests {
		got, err := metadata.GlyphsListURL(tt.template)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestSpriteListURL(t *testing.T) {
	t.Parallel()

	got, err := metadata.SpriteListURL("https://example.com/sprites/basic?key=abc")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/sprites/basic.json?key=abc", got)
}

func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/fonts.json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("X-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`["Open Sans Regular", "Noto Sans Bold"]`))
	})
	mux.HandleFunc("/sprite.json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"pin": {"x": 0}, "bus": {"x": 16}}`))
	})
	mux.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(t *testing.T) *metadata.Fetcher {
	t.Helper()

	f, err := metadata.NewFetcher(metadata.Config{Headers: http.Header{"X-Key": {"secret"}}})
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestFetcher_FontsAndIcons(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newServer(t, &hits)
	f := newFetcher(t)
	ctx := context.Background()

	fonts := f.Fonts(ctx, srv.URL+"/fonts/{fontstack}/{range}.pbf")
	require.Equal(t, []string{"Open Sans Regular", "Noto Sans Bold"}, fonts)

	// second call is served from the cache
	fonts = f.Fonts(ctx, srv.URL+"/fonts/{fontstack}/{range}.pbf")
	require.Len(t, fonts, 2)

	icons := f.Icons(ctx, srv.URL+"/sprite")
	require.Equal(t, []string{"bus", "pin"}, icons)
	require.Equal(t, int32(2), hits.Load())
}

func TestFetcher_FailuresYieldEmptyLists(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newServer(t, &hits)
	f := newFetcher(t)
	ctx := context.Background()

	require.Empty(t, f.Fonts(ctx, ""))
	require.Empty(t, f.Icons(ctx, ""))
	require.Empty(t, f.Fonts(ctx, srv.URL+"/missing/{fontstack}/{range}.pbf"))
	require.Empty(t, f.Icons(ctx, srv.URL+"/broken"))
	require.Empty(t, f.Icons(ctx, "http://127.0.0.1:1/sprite"))
}

func TestFetcher_VendorHostedGlyphs(t *testing.T) {
	t.Parallel()

	f := newFetcher(t)
	fonts := f.Fonts(context.Background(), "https://atlas.microsoft.com/styling/glyphs/{fontstack}/{range}.pbf")
	require.Equal(t, metadata.BuiltinFonts(), fonts)
	require.Contains(t, fonts, "SegoeUi-Regular")
}

func TestRefresher_DeliversLatest(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newServer(t, &hits)
	r := metadata.NewRefresher(newFetcher(t), nil)

	var (
		mu    sync.Mutex
		fonts []string
		icons []string
	)
	r.OnFonts(func(f []string) {
		mu.Lock()
		fonts = f
		mu.Unlock()
	})
	r.OnIcons(func(i []string) {
		mu.Lock()
		icons = i
		mu.Unlock()
	})

	r.RefreshGlyphs(srv.URL + "/fonts/{fontstack}/{range}.pbf")
	r.RefreshSprite(srv.URL + "/sprite")
	r.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"Open Sans Regular", "Noto Sans Bold"}, fonts)
	require.Equal(t, []string{"bus", "pin"}, icons)
}
