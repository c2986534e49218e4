// Package metadata fetches the font and icon names a style's glyphs and
// sprite URLs provide. Failures never surface as errors: callers get an empty
// list and a log line.
package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/goccy/go-json"
)

// glyphPath is the per-range glyph URL suffix served by tile servers.
const glyphPath = "/{fontstack}/{range}.pbf"

// builtinFonts is served for vendor-hosted glyphs, which publish no fontstack
// listing.
var builtinFonts = []string{
	"SegoeFrutigerHelveticaMYingHei-Bold",
	"SegoeFrutigerHelveticaMYingHei-Medium",
	"SegoeFrutigerHelveticaMYingHei-Regular",
	"SegoeUi-Bold",
	"SegoeUi-Light",
	"SegoeUi-Regular",
	"SegoeUi-SemiBold",
	"SegoeUi-SemiLight",
	"SegoeUi-SymbolRegular",
	"StandardCondensedSegoeUi-Black",
	"StandardCondensedSegoeUi-Bold",
	"StandardCondensedSegoeUi-Light",
	"StandardCondensedSegoeUi-Regular",
	"StandardFont-Black",
	"StandardFont-Bold",
	"StandardFontCondensed-Black",
	"StandardFontCondensed-Bold",
	"StandardFontCondensed-Light",
	"StandardFontCondensed-Regular",
	"StandardFont-Light",
	"StandardFont-Regular",
}

// BuiltinFonts returns a copy of the vendor font list.
func BuiltinFonts() []string {
	return append([]string(nil), builtinFonts...)
}

// Config configures a Fetcher.
type Config struct {
	Client  *http.Client
	Headers http.Header
	TTL     time.Duration
	Logger  *slog.Logger
}

// Fetcher downloads glyph and sprite listings and caches them by URL.
type Fetcher struct {
	client  *http.Client
	headers http.Header
	ttl     time.Duration
	cache   *ristretto.Cache
	logger  *slog.Logger
}

// NewFetcher creates a fetcher with an in-memory cache.
func NewFetcher(cfg Config) (*Fetcher, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("metadata cache: %w", err)
	}

	f := &Fetcher{
		client:  cfg.Client,
		headers: cfg.Headers,
		ttl:     cfg.TTL,
		cache:   cache,
		logger:  cfg.Logger,
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: 10 * time.Second}
	}
	if f.ttl == 0 {
		f.ttl = 10 * time.Minute
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f, nil
}

// Close releases the cache.
func (f *Fetcher) Close() {
	f.cache.Close()
}

// GlyphsListURL returns the fontstack listing URL for a glyphs template.
func GlyphsListURL(template string) (string, error) {
	u, err := url.Parse(template)
	if err != nil {
		return "", err
	}
	path := u.Path
	if path == glyphPath {
		path = "/fontstacks.json"
	} else {
		path = strings.Replace(path, glyphPath, ".json", 1)
	}
	u.Path = path
	u.RawPath = ""
	return u.String(), nil
}

// SpriteListURL returns the sprite index URL for a sprite base URL.
func SpriteListURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path += ".json"
	u.RawPath = ""
	return u.String(), nil
}

func isVendorHosted(template string) bool {
	return strings.Contains(template, "azure") || strings.Contains(template, "microsoft")
}

// Fonts returns the font names available from a glyphs URL template.
func (f *Fetcher) Fonts(ctx context.Context, template string) []string {
	if template == "" {
		return []string{}
	}
	if isVendorHosted(template) {
		return BuiltinFonts()
	}

	listURL, err := GlyphsListURL(template)
	if err != nil {
		f.logger.Warn("cannot parse glyphs url", "url", template, "error", err)
		return []string{}
	}

	var fonts []string
	if !f.load(ctx, listURL, &fonts) {
		return []string{}
	}
	return fonts
}

// Icons returns the icon names of a sprite.
func (f *Fetcher) Icons(ctx context.Context, base string) []string {
	if base == "" {
		return []string{}
	}

	listURL, err := SpriteListURL(base)
	if err != nil {
		f.logger.Warn("cannot parse sprite url", "url", base, "error", err)
		return []string{}
	}

	var index map[string]any
	if !f.load(ctx, listURL, &index) {
		return []string{}
	}
	icons := make([]string, 0, len(index))
	for name := range index {
		icons = append(icons, name)
	}
	sort.Strings(icons)
	return icons
}

// load fetches url into dst, going through the cache. It reports whether dst
// was filled.
func (f *Fetcher) load(ctx context.Context, rawURL string, dst any) bool {
	body, ok := f.cached(ctx, rawURL)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		f.logger.Warn("cannot decode metadata", "url", rawURL, "error", err)
		return false
	}
	return true
}

func (f *Fetcher) cached(ctx context.Context, rawURL string) ([]byte, bool) {
	if v, found := f.cache.Get(rawURL); found {
		if body, ok := v.([]byte); ok {
			return body, true
		}
	}

	body, err := f.get(ctx, rawURL)
	if err != nil {
		f.logger.Warn("cannot fetch metadata", "url", rawURL, "error", err)
		return nil, false
	}

	f.cache.SetWithTTL(rawURL, body, int64(len(body)), f.ttl)
	f.cache.Wait()
	return body, true
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range f.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
