package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/st3v3nn/KLADISHOP/internal/auth"
	"github.com/st3v3nn/KLADISHOP/internal/backend"
)

// Registry owns one Tracker per live session token and keeps them in
// step with the provider's session-change stream. It is created at
// process start, updated only via those events, and is what the HTTP
// session middleware consults.
type Registry struct {
	lookup PrivilegeLookup
	logger *slog.Logger

	mu       sync.Mutex
	trackers map[string]*Tracker // token -> tracker
	cancel   backend.CancelFunc
}

func NewRegistry(lookup PrivilegeLookup, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		lookup:   lookup,
		logger:   logger,
		trackers: make(map[string]*Tracker),
	}
}

// Listen attaches the registry to a provider's session-change stream.
// Call Close on teardown to release the listener.
func (r *Registry) Listen(ctx context.Context, provider auth.Provider) {
	r.cancel = provider.OnSessionChange(func(ev auth.Event) {
		r.apply(ctx, ev)
	})
}

func (r *Registry) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Get returns the session snapshot for a token. Unknown tokens read as
// Anonymous.
func (r *Registry) Get(token string) Snapshot {
	r.mu.Lock()
	t, ok := r.trackers[token]
	r.mu.Unlock()
	if !ok {
		return Snapshot{State: StateAnonymous}
	}
	return t.Snapshot()
}

func (r *Registry) apply(ctx context.Context, ev auth.Event) {
	switch ev.Type {
	case auth.SignedIn:
		t := NewTracker(r.lookup, r.logger)
		t.SignIn(ctx, ev.Identity)
		r.mu.Lock()
		r.trackers[ev.Token] = t
		r.mu.Unlock()

	case auth.SignedOut:
		r.mu.Lock()
		t, ok := r.trackers[ev.Token]
		delete(r.trackers, ev.Token)
		r.mu.Unlock()
		if ok {
			t.SignOut()
		}
	}
}
