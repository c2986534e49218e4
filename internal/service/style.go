// Package service wires the reconciliation session to its collaborators and
// publishes every change on an event bus.
package service

import (
	"context"
	"log/slog"

	"github.com/joeblew999/plat-style/internal/history"
	"github.com/joeblew999/plat-style/internal/metadata"
	"github.com/joeblew999/plat-style/internal/reconcile"
	"github.com/joeblew999/plat-style/internal/storage"
	"github.com/joeblew999/plat-style/internal/style"
)

// SnapshotLister is implemented by stores that keep every saved style.
type SnapshotLister interface {
	Snapshots(ctx context.Context, limit int) ([]storage.Snapshot, error)
}

// StyleConfig configures a StyleService.
type StyleConfig struct {
	Store        storage.Store
	Fetcher      *metadata.Fetcher // nil disables glyph/sprite lookups
	Bus          *EventBus
	Logger       *slog.Logger
	HistoryLimit int
}

// StyleService owns the editor session.
type StyleService struct {
	session   *reconcile.Session
	store     storage.Store
	bus       *EventBus
	refresher *metadata.Refresher
	logger    *slog.Logger
}

// NewStyleService creates the session and connects metadata refreshes and
// persistence failures to the bus.
func NewStyleService(cfg StyleConfig) *StyleService {
	s := &StyleService{store: cfg.Store, bus: cfg.Bus, logger: cfg.Logger}
	if s.bus == nil {
		s.bus = NewEventBus()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	sessionCfg := reconcile.Config{
		Store:   cfg.Store,
		History: history.New(cfg.HistoryLimit),
		Logger:  s.logger,
		OnError: func(err error) {
			s.bus.Publish(Event{Action: ActionFailed, Messages: []string{err.Error()}})
		},
	}
	if cfg.Fetcher != nil {
		s.refresher = metadata.NewRefresher(cfg.Fetcher, s.logger)
		sessionCfg.Refresher = s.refresher
	}
	s.session = reconcile.NewSession(sessionCfg)

	if s.refresher != nil {
		s.refresher.OnFonts(func(fonts []string) {
			s.publish(ActionRevalidated, s.session.SetFonts(fonts))
		})
		s.refresher.OnIcons(func(icons []string) {
			s.publish(ActionRevalidated, s.session.SetIcons(icons))
		})
	}
	return s
}

// Bus returns the event bus changes are published on.
func (s *StyleService) Bus() *EventBus { return s.bus }

// Session returns the underlying session.
func (s *StyleService) Session() *reconcile.Session { return s.session }

func (s *StyleService) publish(action Action, res reconcile.Result) reconcile.Result {
	ev := Event{Action: action, Errors: len(res.Errors), Messages: res.Messages}
	if res.Revision != nil {
		ev.Revision = res.Revision.ID
	}
	s.bus.Publish(ev)
	return res
}

// Current returns the latest reconciliation result.
func (s *StyleService) Current() reconcile.Result {
	return s.session.Current()
}

// Load restores the latest stored style.
func (s *StyleService) Load(ctx context.Context) (reconcile.Result, error) {
	res, err := s.session.Load(ctx)
	if err != nil {
		return res, err
	}
	return s.publish(ActionLoaded, res), nil
}

// Update reconciles an edited document.
func (s *StyleService) Update(doc *style.Document, opts reconcile.Options) reconcile.Result {
	return s.publish(ActionUpdated, s.session.Reconcile(doc, opts))
}

// Open replaces the document.
func (s *StyleService) Open(doc *style.Document) reconcile.Result {
	return s.publish(ActionOpened, s.session.Open(doc))
}

// Undo steps back one revision.
func (s *StyleService) Undo() reconcile.Result {
	return s.publish(ActionUndo, s.session.Undo())
}

// Redo steps forward one revision.
func (s *StyleService) Redo() reconcile.Result {
	return s.publish(ActionRedo, s.session.Redo())
}

// Select marks a selectable layer as selected.
func (s *StyleService) Select(index int) (reconcile.Result, error) {
	return s.layerOp(ActionSelected, func() (reconcile.Result, error) { return s.session.Select(index) })
}

// MoveLayer moves a selectable layer.
func (s *StyleService) MoveLayer(from, to int) (reconcile.Result, error) {
	return s.layerOp(ActionUpdated, func() (reconcile.Result, error) { return s.session.MoveLayer(from, to) })
}

// CopyLayer duplicates a selectable layer.
func (s *StyleService) CopyLayer(index int) (reconcile.Result, error) {
	return s.layerOp(ActionUpdated, func() (reconcile.Result, error) { return s.session.CopyLayer(index) })
}

// DestroyLayer removes a selectable layer.
func (s *StyleService) DestroyLayer(index int) (reconcile.Result, error) {
	return s.layerOp(ActionUpdated, func() (reconcile.Result, error) { return s.session.DestroyLayer(index) })
}

// ToggleVisibility shows or hides a selectable layer.
func (s *StyleService) ToggleVisibility(index int) (reconcile.Result, error) {
	return s.layerOp(ActionUpdated, func() (reconcile.Result, error) { return s.session.ToggleVisibility(index) })
}

// RenameLayer changes a layer id.
func (s *StyleService) RenameLayer(index int, id string) (reconcile.Result, error) {
	return s.layerOp(ActionUpdated, func() (reconcile.Result, error) { return s.session.RenameLayer(index, id) })
}

// ReplaceLayer replaces a selectable layer.
func (s *StyleService) ReplaceLayer(index int, layer style.Layer) (reconcile.Result, error) {
	return s.layerOp(ActionUpdated, func() (reconcile.Result, error) { return s.session.ReplaceLayer(index, layer) })
}

// SetBaseMap swaps the base map.
func (s *StyleService) SetBaseMap(base *style.Document) reconcile.Result {
	return s.publish(ActionUpdated, s.session.SetBaseMap(base))
}

func (s *StyleService) layerOp(action Action, fn func() (reconcile.Result, error)) (reconcile.Result, error) {
	res, err := fn()
	if err != nil {
		return res, err
	}
	return s.publish(action, res), nil
}

// Snapshots lists stored snapshots when the store keeps them. The boolean
// is false for stores that only keep the latest style.
func (s *StyleService) Snapshots(ctx context.Context, limit int) ([]storage.Snapshot, bool, error) {
	lister, ok := s.store.(SnapshotLister)
	if !ok {
		return nil, false, nil
	}
	snaps, err := lister.Snapshots(ctx, limit)
	return snaps, true, err
}

// Wait blocks until background saves and metadata fetches have finished.
func (s *StyleService) Wait() {
	if s.refresher != nil {
		s.refresher.Wait()
	}
	s.session.Wait()
}
