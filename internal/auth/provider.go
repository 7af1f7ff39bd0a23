// Package auth wraps the backend auth surface: email/password sign-up
// and sign-in, sign-out, session resolution, and a session-change
// notification stream.
package auth

import (
	"context"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
)

// Identity is what an authenticated session exposes about its user.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

// Event is one session-change notification. Listeners are invoked
// synchronously on the calling goroutine, so a listener has seen the
// event before the triggering call returns.
type Event struct {
	Type     EventType
	Token    string
	Identity Identity
}

type Provider interface {
	Register(ctx context.Context, email, password, name string) (string, Identity, error)
	Login(ctx context.Context, email, password string) (string, Identity, error)
	Logout(ctx context.Context, token string) error
	// Resolve maps a session token to its identity, if the session is live.
	Resolve(token string) (Identity, bool)
	// OnSessionChange registers a listener for sign-in/sign-out events.
	OnSessionChange(fn func(Event)) backend.CancelFunc
}
