// Package mirror keeps a local in-memory copy of a remote collection in
// step with the backend: full snapshot reads, push-driven resync, and
// optimistic create/update/delete.
package mirror

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

// Doc is any record type that carries its document identifier.
type Doc interface {
	DocID() string
}

// Mirror binds one named collection to a local copy. Reads go to the
// local copy; every mutation goes to the backend and is applied locally
// on success without waiting for the push echo. There is no rollback:
// if the local copy ever drifts, the next subscription notification
// replaces it wholesale.
type Mirror[T Doc] struct {
	store      backend.Store
	notifier   backend.Notifier
	collection string
	withID     func(T, string) T
	logger     *slog.Logger

	mu      sync.Mutex
	items   []T
	lastErr string
}

// New builds a mirror for collection. withID returns a copy of the
// record with the given document identifier set; it is used when
// decoding snapshots and when adopting backend-assigned ids on create.
func New[T Doc](store backend.Store, notifier backend.Notifier, collection string, withID func(T, string) T, logger *slog.Logger) *Mirror[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror[T]{
		store:      store,
		notifier:   notifier,
		collection: collection,
		withID:     withID,
		logger:     logger,
	}
}

func (m *Mirror[T]) Collection() string { return m.collection }

// Items returns a copy of the current local mirror, in arrival order.
func (m *Mirror[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Err reports the last backend failure as a plain string, empty when
// the last operation succeeded. Errors are surfaced here rather than
// rethrown across component boundaries.
func (m *Mirror[T]) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// FetchAll replaces the local mirror with the backend's full snapshot.
func (m *Mirror[T]) FetchAll(ctx context.Context) error {
	m.setErr("")

	docs, err := m.store.FetchAll(ctx, m.collection)
	if err != nil {
		ae := apperr.RemoteUnavailableErr(err)
		m.fail("fetch_all_failed", ae)
		return ae
	}

	items := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			m.logger.Warn("mirror_decode_skipped",
				slog.String("collection", m.collection),
				slog.String("doc_id", d.ID),
				slog.Any("err", err),
			)
			continue
		}
		items = append(items, m.withID(v, d.ID))
	}

	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
	return nil
}

// Subscribe establishes the push channel. Every notification triggers a
// full resync; there is no incremental patching. The returned cancel
// func must be called on teardown or the subscription leaks for the
// process lifetime. A dropped channel silently stops mirroring until
// Subscribe is called again.
func (m *Mirror[T]) Subscribe(ctx context.Context) (backend.CancelFunc, error) {
	cancel, err := m.notifier.Subscribe(m.collection, func() {
		if err := m.FetchAll(ctx); err != nil {
			m.logger.Warn("mirror_resync_failed",
				slog.String("collection", m.collection),
				slog.Any("err", err),
			)
		}
	})
	if err != nil {
		ae := apperr.RemoteUnavailableErr(err)
		m.fail("subscribe_failed", ae)
		return nil, ae
	}
	return cancel, nil
}

// Create sends a new record to the backend and, on success, appends it
// to the local mirror under the backend-assigned identifier.
func (m *Mirror[T]) Create(ctx context.Context, v T) (T, error) {
	m.setErr("")

	data, err := json.Marshal(v)
	if err != nil {
		var zero T
		return zero, apperr.Wrap(err)
	}
	id, err := m.store.Create(ctx, m.collection, data)
	if err != nil {
		ae := apperr.WriteFailedErr(err)
		m.fail("create_failed", ae)
		var zero T
		return zero, ae
	}

	// A synchronous notifier can resync the mirror before this point,
	// so the new record may already be present.
	v = m.withID(v, id)
	m.apply(v)
	return v, nil
}

// Put writes a record under its own identifier (upsert) and applies it
// locally on success: replaced in place if present, appended otherwise.
func (m *Mirror[T]) Put(ctx context.Context, v T) error {
	m.setErr("")

	data, err := json.Marshal(v)
	if err != nil {
		return apperr.Wrap(err)
	}
	if err := m.store.Upsert(ctx, m.collection, v.DocID(), data); err != nil {
		ae := apperr.WriteFailedErr(err)
		m.fail("put_failed", ae)
		return ae
	}

	m.apply(v)
	return nil
}

func (m *Mirror[T]) apply(v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].DocID() == v.DocID() {
			m.items[i] = v
			return
		}
	}
	m.items = append(m.items, v)
}

// Delete removes a record remotely and drops it from the local mirror
// on success.
func (m *Mirror[T]) Delete(ctx context.Context, id string) error {
	m.setErr("")

	if err := m.store.Delete(ctx, m.collection, id); err != nil {
		ae := apperr.WriteFailedErr(err)
		m.fail("delete_failed", ae)
		return ae
	}

	m.mu.Lock()
	kept := m.items[:0]
	for _, it := range m.items {
		if it.DocID() != id {
			kept = append(kept, it)
		}
	}
	m.items = kept
	m.mu.Unlock()
	return nil
}

func (m *Mirror[T]) setErr(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}

func (m *Mirror[T]) fail(event string, err error) {
	m.setErr(err.Error())
	m.logger.Error(event,
		slog.String("collection", m.collection),
		slog.Any("err", err),
	)
}
