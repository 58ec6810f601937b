// Package registry owns the clan and player registry document. Every
// successful mutation rewrites the whole document through the storage layer
// before the call returns.
package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/mcoot/gideon/internal/dependencies/clock"
	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/storage"
)

// Options configures a Registry. Zero values select defaults.
type Options struct {
	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *Metrics
}

// Registry is the single point of truth for clans and players.
//
// Mutations hold an exclusive lock across mutate and persist, so a reader
// never observes a change that has not been handed to storage. Reads return
// copies and never alias registry state.
type Registry struct {
	mu  sync.RWMutex
	doc *model.Document

	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	metrics *Metrics
}

// Open loads the document from storage. A store with no document yet starts
// an empty registry and writes it.
func Open(ctx context.Context, store storage.Storage, opts Options) (*Registry, error) {
	doc, err := store.LoadDocument(ctx)
	fresh := false
	if errors.Is(err, model.ErrDocumentNotFound) {
		doc, fresh = &model.Document{}, true
	} else if err != nil {
		return nil, err
	}

	r, err := New(store, doc, opts)
	if err != nil {
		return nil, err
	}

	// Players stored without a timestamp get the load time, as the bot always did
	backfilled := 0
	for _, p := range r.doc.Players {
		if p.LastUpdated == 0 {
			p.LastUpdated = r.stamp()
			backfilled++
		}
	}
	if fresh || backfilled > 0 {
		r.mu.Lock()
		defer r.mu.Unlock()
		if err := r.persist(ctx, "open"); err != nil {
			return nil, err
		}
	}

	r.logger.Info("registry opened",
		slog.Int("clans", len(r.doc.Clans)),
		slog.Int("players", len(r.doc.Players)),
		slog.Bool("fresh", fresh),
	)
	return r, nil
}

// New wraps an already loaded document after validating it. The registry
// takes ownership of doc.
func New(store storage.Storage, doc *model.Document, opts Options) (*Registry, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	if dups := duplicateUUIDs(doc.Players); len(dups) > 0 {
		logger.Warn("registry contains duplicate player uuids",
			slog.Any("uuids", dups),
		)
	}

	r := &Registry{
		doc:     doc,
		storage: store,
		clock:   clk,
		logger:  logger,
		metrics: opts.Metrics,
	}
	r.metrics.setPlayers(len(doc.Players))
	return r, nil
}

// mutate runs fn under the exclusive lock and persists the whole document
// if fn reports a change. The lock is held until the write has completed.
func (r *Registry) mutate(ctx context.Context, op string, fn func(doc *model.Document) (bool, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed, err := fn(r.doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	r.metrics.incMutation(op)
	r.metrics.setPlayers(len(r.doc.Players))
	return r.persist(ctx, op)
}

// persist writes the full document. Callers must hold the write lock.
func (r *Registry) persist(ctx context.Context, op string) error {
	if err := r.storage.SaveDocument(ctx, r.doc); err != nil {
		r.metrics.incPersistFailure()
		r.logger.Error("failed to persist registry",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return &model.PersistenceError{Op: op, Err: err}
	}
	r.logger.Debug("registry persisted", slog.String("op", op))
	return nil
}

// Snapshot returns an immutable deep copy of the registry for composition
// and resolution
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newSnapshot(r.doc.Clone())
}

// Backup stores a copy of the current document alongside the live one
func (r *Registry) Backup(ctx context.Context) (storage.Backup, error) {
	r.mu.RLock()
	doc := r.doc.Clone()
	r.mu.RUnlock()

	b, err := r.storage.SaveBackup(ctx, doc, r.clock.Now())
	if err != nil {
		return storage.Backup{}, &model.PersistenceError{Op: "backup", Err: err}
	}
	r.logger.Info("registry backup saved",
		slog.String("name", b.Name),
		slog.Int64("size", b.Size),
	)
	return b, nil
}

// Backups lists stored backups, oldest first
func (r *Registry) Backups(ctx context.Context) ([]storage.Backup, error) {
	return r.storage.ListBackups(ctx)
}
