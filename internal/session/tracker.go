// Package session tracks authenticated identity and the administrator
// privilege flag, driven by backend session-change events. It never
// polls.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/st3v3nn/KLADISHOP/internal/auth"
)

type State string

const (
	// StateUnknown: the backend session is still being resolved.
	StateUnknown       State = "unknown"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// PrivilegeLookup resolves the administrator flag for a user, typically
// a profile read or a session-claim decode.
type PrivilegeLookup func(ctx context.Context, userID string) (bool, error)

// Snapshot is a point-in-time view of a tracker.
type Snapshot struct {
	State    State
	Identity auth.Identity
	Admin    bool
}

// Tracker is the session state machine for one logical client:
// {Unknown, Anonymous, Authenticated(identity, privilege)}. On the
// transition into Authenticated the privilege lookup runs
// asynchronously, so there is a window where identity is known but
// Admin still reads false. Callers must tolerate that false negative.
type Tracker struct {
	lookup PrivilegeLookup
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	identity auth.Identity
	admin    bool
	// epoch invalidates in-flight privilege lookups from earlier
	// sign-ins after a logout or re-login.
	epoch uint64
}

func NewTracker(lookup PrivilegeLookup, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{lookup: lookup, logger: logger, state: StateUnknown}
}

// SignIn transitions the tracker to Authenticated and kicks off the
// privilege lookup in the background.
func (t *Tracker) SignIn(ctx context.Context, ident auth.Identity) {
	t.mu.Lock()
	t.state = StateAuthenticated
	t.identity = ident
	t.admin = false
	t.epoch++
	epoch := t.epoch
	t.mu.Unlock()

	go t.resolvePrivilege(ctx, ident.ID, epoch)
}

// SignOut forces an immediate transition to Anonymous and clears
// privilege.
func (t *Tracker) SignOut() {
	t.mu.Lock()
	t.state = StateAnonymous
	t.identity = auth.Identity{}
	t.admin = false
	t.epoch++
	t.mu.Unlock()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{State: t.state, Identity: t.identity, Admin: t.admin}
}

func (t *Tracker) resolvePrivilege(ctx context.Context, userID string, epoch uint64) {
	admin, err := t.lookup(ctx, userID)
	if err != nil {
		// Transient, not a true error: the session stays
		// Authenticated and privilege resolves to false.
		t.logger.Warn("privilege_unresolved",
			slog.String("user_id", userID),
			slog.Any("err", err),
		)
		admin = false
	}

	t.mu.Lock()
	if t.epoch == epoch && t.state == StateAuthenticated {
		t.admin = admin
	}
	t.mu.Unlock()
}
