package metadata

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Refresher fetches glyph and sprite listings in the background and hands
// the results to callbacks. Only the result of the latest request of each
// kind is delivered; superseded fetches are dropped when they complete.
type Refresher struct {
	fetcher *Fetcher
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.RWMutex
	onFonts func([]string)
	onIcons func([]string)

	glyphGen  atomic.Uint64
	spriteGen atomic.Uint64
	wg        sync.WaitGroup
}

// NewRefresher creates a refresher using f.
func NewRefresher(f *Fetcher, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{fetcher: f, timeout: 15 * time.Second, logger: logger}
}

// OnFonts sets the callback receiving font lists.
func (r *Refresher) OnFonts(fn func([]string)) {
	r.mu.Lock()
	r.onFonts = fn
	r.mu.Unlock()
}

// OnIcons sets the callback receiving icon lists.
func (r *Refresher) OnIcons(fn func([]string)) {
	r.mu.Lock()
	r.onIcons = fn
	r.mu.Unlock()
}

// RefreshGlyphs starts fetching the fonts of a glyphs URL template.
func (r *Refresher) RefreshGlyphs(template string) {
	gen := r.glyphGen.Add(1)
	r.run(func(ctx context.Context) {
		fonts := r.fetcher.Fonts(ctx, template)
		if r.glyphGen.Load() != gen {
			r.logger.Debug("dropping stale font list", "url", template)
			return
		}
		r.mu.RLock()
		fn := r.onFonts
		r.mu.RUnlock()
		if fn != nil {
			fn(fonts)
		}
	})
}

// RefreshSprite starts fetching the icons of a sprite base URL.
func (r *Refresher) RefreshSprite(base string) {
	gen := r.spriteGen.Add(1)
	r.run(func(ctx context.Context) {
		icons := r.fetcher.Icons(ctx, base)
		if r.spriteGen.Load() != gen {
			r.logger.Debug("dropping stale icon list", "url", base)
			return
		}
		r.mu.RLock()
		fn := r.onIcons
		r.mu.RUnlock()
		if fn != nil {
			fn(icons)
		}
	})
}

// Wait blocks until every started fetch has finished.
func (r *Refresher) Wait() {
	r.wg.Wait()
}

func (r *Refresher) run(fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		fn(ctx)
	}()
}
