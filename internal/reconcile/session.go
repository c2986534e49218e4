// Package reconcile turns every edit of a style document into a consistent
// editor state: validation errors attributed to layers, a renderer-safe
// clean document, the selectable layer list and the selected layer.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joeblew999/plat-style/internal/history"
	"github.com/joeblew999/plat-style/internal/storage"
	"github.com/joeblew999/plat-style/internal/style"
	"github.com/joeblew999/plat-style/internal/validate"
)

// ErrLayerIndex is returned for a selectable layer index out of range.
var ErrLayerIndex = errors.New("layer index out of range")

// Refresher is notified when a document's glyphs or sprite URL changes.
// Implementations fetch in the background and must not block.
type Refresher interface {
	RefreshGlyphs(template string)
	RefreshSprite(base string)
}

// ValidateFunc validates a document against a specification.
type ValidateFunc func(doc *style.Document, spec validate.Spec) []validate.Error

// Config configures a Session. Every field is optional.
type Config struct {
	Store     storage.Store
	History   *history.History
	Refresher Refresher
	Validate  ValidateFunc
	Logger    *slog.Logger
	// OnError receives persistence failures. It is called from a
	// background goroutine.
	OnError func(error)
	// OnChange receives every reconciliation result.
	OnChange func(Result)
	// SaveTimeout bounds a single persistence call.
	SaveTimeout time.Duration
}

// Options control the side effects of one reconciliation pass.
type Options struct {
	Save        bool
	AddRevision bool
	InitialLoad bool
	Transition  bool
}

// DefaultOptions is used for ordinary edits: persist and record a revision.
func DefaultOptions() Options {
	return Options{Save: true, AddRevision: true}
}

// Result is the editor state after a reconciliation pass.
type Result struct {
	// Document is the candidate as edited, including invalid fragments.
	Document *style.Document
	// Clean is the renderer-safe document.
	Clean *style.Document
	// Dirty keeps the invalid fragments; nil when the candidate is valid.
	Dirty         *style.Document
	Errors        []ClassifiedError
	Selectable    []style.Layer
	SelectedIndex int
	Transition    bool
	InitialLoad   bool
	// Revision is set when the pass recorded a revision.
	Revision *history.Revision
	// Messages describes an undo or redo.
	Messages []string
}

// Session is the editor state of one open style document. It is safe for
// concurrent use; passes are serialised and the last one wins.
type Session struct {
	mu sync.Mutex

	store       storage.Store
	history     *history.History
	refresher   Refresher
	validate    ValidateFunc
	logger      *slog.Logger
	onError     func(error)
	onChange    func(Result)
	saveTimeout time.Duration

	spec       validate.Spec
	doc        *style.Document
	result     Result
	selectedID string

	saves sync.WaitGroup
}

// NewSession creates a session with no document.
func NewSession(cfg Config) *Session {
	s := &Session{
		store:       cfg.Store,
		history:     cfg.History,
		refresher:   cfg.Refresher,
		validate:    cfg.Validate,
		logger:      cfg.Logger,
		onError:     cfg.OnError,
		onChange:    cfg.OnChange,
		saveTimeout: cfg.SaveTimeout,
		spec:        validate.Latest(),
	}
	if s.history == nil {
		s.history = history.New(0)
	}
	if s.validate == nil {
		s.validate = validate.Validate
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.saveTimeout == 0 {
		s.saveTimeout = 30 * time.Second
	}
	s.result = s.emptyResult()
	return s
}

func (s *Session) emptyResult() Result {
	return Result{Selectable: []style.Layer{}, Errors: []ClassifiedError{}}
}

// History returns the session's revision history.
func (s *Session) History() *history.History { return s.history }

// Spec returns the specification used for validation, including the fonts
// and icons learned from the document's glyphs and sprite.
func (s *Session) Spec() validate.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Current returns the result of the latest pass.
func (s *Session) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Reconcile runs one pass over candidate.
func (s *Session) Reconcile(candidate *style.Document, opts Options) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcileLocked(candidate, opts, nil)
}

func (s *Session) reconcileLocked(candidate *style.Document, opts Options, messages []string) Result {
	if candidate == nil {
		candidate = style.New()
	} else {
		candidate = candidate.Clone()
	}

	p := NewPartition(candidate)
	raw := s.runValidator(candidate.WithLayers(p.Selectable()))
	errs := ClassifyDocument(p.Selectable(), raw)
	sanitized := Sanitize(candidate, errs, s.logger)

	clean := NewPartition(sanitized.Clean)
	selected := ResolveSelection(clean, s.selectedID)
	s.selectedID = ""
	if selected < len(clean.Selectable()) {
		s.selectedID = clean.Selectable()[selected].ID
	}

	s.refreshMetadata(s.doc, candidate)

	res := Result{
		Document:      candidate,
		Clean:         sanitized.Clean,
		Dirty:         sanitized.Dirty,
		Errors:        errs,
		Selectable:    clean.Selectable(),
		SelectedIndex: selected,
		Transition:    opts.Transition,
		InitialLoad:   opts.InitialLoad,
		Messages:      messages,
	}
	if res.Errors == nil {
		res.Errors = []ClassifiedError{}
	}

	if opts.AddRevision {
		rev := s.history.AddRevision(candidate)
		res.Revision = &rev
	}
	if opts.Save {
		s.persist(candidate)
	}

	s.doc = candidate
	s.result = res
	if s.onChange != nil {
		s.onChange(res)
	}
	return res
}

// runValidator calls the validator, treating a panic as "no errors" so the
// edit still takes effect.
func (s *Session) runValidator(doc *style.Document) (errs []validate.Error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("validator panicked", "panic", r)
			errs = nil
		}
	}()
	return s.validate(doc, s.spec)
}

func (s *Session) refreshMetadata(prev, next *style.Document) {
	if s.refresher == nil {
		return
	}
	var glyphs, sprite string
	if prev != nil {
		glyphs, sprite = prev.Glyphs, prev.Sprite
	}
	if next.Glyphs != glyphs {
		s.refresher.RefreshGlyphs(next.Glyphs)
	}
	if next.Sprite != sprite {
		s.refresher.RefreshSprite(next.Sprite)
	}
}

func (s *Session) persist(doc *style.Document) {
	if s.store == nil {
		return
	}
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		defer cancel()

		if err := s.store.SaveStyle(ctx, doc); err != nil {
			s.logger.Error("failed to save style", "error", err)
			if s.onError != nil {
				s.onError(fmt.Errorf("save style: %w", err))
			}
		}
	}()
}

// Wait blocks until pending saves have finished.
func (s *Session) Wait() {
	s.saves.Wait()
}

// Open replaces the document with doc, applying editor defaults. It records
// a revision and saves.
func (s *Session) Open(doc *style.Document) Result {
	opts := DefaultOptions()
	opts.Transition = true
	return s.Reconcile(style.WithDefaults(doc), opts)
}

// Load reconciles the latest stored style as the initial document. Without a
// store, or when nothing was saved yet, it starts from an empty document.
func (s *Session) Load(ctx context.Context) (Result, error) {
	doc := style.New()
	if s.store != nil {
		stored, err := s.store.LoadLatestStyle(ctx)
		switch {
		case errors.Is(err, storage.ErrStyleNotFound):
		case err != nil:
			return s.Current(), fmt.Errorf("load style: %w", err)
		default:
			doc = stored
		}
	}
	return s.Reconcile(style.WithDefaults(doc), Options{AddRevision: true, InitialLoad: true}), nil
}

// Undo steps back one revision. The restored document is saved but no new
// revision is recorded.
func (s *Session) Undo() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.history.Undo()
	if target == nil {
		return s.result
	}
	return s.reconcileLocked(target, Options{Save: true}, history.UndoMessages(s.doc, target))
}

// Redo steps forward one revision.
func (s *Session) Redo() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.history.Redo()
	if target == nil {
		return s.result
	}
	return s.reconcileLocked(target, Options{Save: true}, history.RedoMessages(s.doc, target))
}

// Select marks the selectable layer at index as selected.
func (s *Session) Select(index int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.result.Selectable) {
		return s.result, fmt.Errorf("select %d: %w", index, ErrLayerIndex)
	}
	s.selectedID = s.result.Selectable[index].ID
	s.result.SelectedIndex = index
	s.result.Revision = nil
	s.result.Messages = nil
	s.result.Transition = false
	s.result.InitialLoad = false
	if s.onChange != nil {
		s.onChange(s.result)
	}
	return s.result, nil
}

// SetFonts records the fonts available from the document's glyphs and
// revalidates without saving or recording a revision.
func (s *Session) SetFonts(fonts []string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spec.Fonts = append([]string(nil), fonts...)
	return s.revalidateLocked()
}

// SetIcons records the icons available from the document's sprite.
func (s *Session) SetIcons(icons []string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spec.Icons = append([]string(nil), icons...)
	return s.revalidateLocked()
}

func (s *Session) revalidateLocked() Result {
	if s.doc == nil {
		return s.result
	}
	return s.reconcileLocked(s.doc, Options{}, nil)
}
