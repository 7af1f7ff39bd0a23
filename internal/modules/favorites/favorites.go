// Package favorites syncs each user's favorite-product set against a
// per-user backend collection.
package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
	"github.com/st3v3nn/KLADISHOP/internal/mirror"
)

// Favorite relates a user to a product; existence is binary, no other
// attributes.
type Favorite struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
}

func (f Favorite) DocID() string { return f.ID }

func (f Favorite) WithID(id string) Favorite {
	f.ID = id
	return f
}

// CollectionFor is the per-user favorites namespace.
func CollectionFor(userID string) string {
	return fmt.Sprintf("favorites/%s/items", userID)
}

// Service lazily opens one mirror per user over their favorites
// collection. Toggles are optimistic; a remote failure is logged, not
// retried.
type Service struct {
	store    backend.Store
	notifier backend.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	mirrors map[string]*userMirror
}

type userMirror struct {
	m      *mirror.Mirror[Favorite]
	cancel backend.CancelFunc
}

func NewService(store backend.Store, notifier backend.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		mirrors:  make(map[string]*userMirror),
	}
}

// ProductIDs returns the user's current favorite product ids.
func (s *Service) ProductIDs(ctx context.Context, userID string) ([]string, error) {
	um, err := s.mirrorFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := um.m.Items()
	ids := make([]string, 0, len(items))
	for _, f := range items {
		ids = append(ids, f.ProductID)
	}
	return ids, nil
}

func (s *Service) IsFavorited(ctx context.Context, userID, productID string) bool {
	ids, err := s.ProductIDs(ctx, userID)
	if err != nil {
		return false
	}
	for _, id := range ids {
		if id == productID {
			return true
		}
	}
	return false
}

// Toggle flips membership for (user, product) and reports the
// membership after the operation. Toggling twice returns to the
// original state. A failed remote write is logged, not retried, and
// leaves the mirror untouched, so the reported membership stays the
// old one.
func (s *Service) Toggle(ctx context.Context, userID, productID string) (favorited bool, err error) {
	um, err := s.mirrorFor(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, f := range um.m.Items() {
		if f.ProductID == productID {
			if err := um.m.Delete(ctx, f.ID); err != nil {
				s.logger.Warn("favorite_remove_failed",
					slog.String("user_id", userID),
					slog.String("product_id", productID),
					slog.Any("err", err),
				)
				return true, nil
			}
			return false, nil
		}
	}

	if _, err := um.m.Create(ctx, Favorite{ProductID: productID}); err != nil {
		s.logger.Warn("favorite_add_failed",
			slog.String("user_id", userID),
			slog.String("product_id", productID),
			slog.Any("err", err),
		)
		return false, nil
	}
	return true, nil
}

// Release tears down a user's favorites subscription (logout).
func (s *Service) Release(userID string) {
	s.mu.Lock()
	um, ok := s.mirrors[userID]
	delete(s.mirrors, userID)
	s.mu.Unlock()
	if ok && um.cancel != nil {
		um.cancel()
	}
}

// Close releases every open subscription.
func (s *Service) Close() {
	s.mu.Lock()
	mirrors := s.mirrors
	s.mirrors = make(map[string]*userMirror)
	s.mu.Unlock()
	for _, um := range mirrors {
		if um.cancel != nil {
			um.cancel()
		}
	}
}

func (s *Service) mirrorFor(ctx context.Context, userID string) (*userMirror, error) {
	s.mu.Lock()
	if um, ok := s.mirrors[userID]; ok {
		s.mu.Unlock()
		return um, nil
	}
	s.mu.Unlock()

	m := mirror.New(s.store, s.notifier, CollectionFor(userID),
		func(f Favorite, id string) Favorite { return f.WithID(id) }, s.logger)
	if err := m.FetchAll(ctx); err != nil {
		return nil, err
	}
	cancel, err := m.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	um := &userMirror{m: m, cancel: cancel}
	s.mu.Lock()
	// Lost the race: keep the first one and release ours.
	if existing, ok := s.mirrors[userID]; ok {
		s.mu.Unlock()
		cancel()
		return existing, nil
	}
	s.mirrors[userID] = um
	s.mu.Unlock()
	return um, nil
}
