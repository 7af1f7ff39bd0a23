package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

func newProvider(t *testing.T) (*StoreProvider, *backend.MemStore) {
	t.Helper()
	store := backend.NewMemStore(backend.NewLocalNotifier())
	return NewStoreProvider(store, nil), store
}

func TestRegisterSignsIn(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	token, ident, err := p.Register(ctx, "Jane@Kladi.Shop ", "sikr3t", "Jane Doe")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "jane@kladi.shop", ident.Email)
	assert.Equal(t, "Jane Doe", ident.Name)
	assert.NotEmpty(t, ident.ID)

	got, ok := p.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, ident, got)

	// New accounts never start with privilege.
	admin, err := p.Privilege(ctx, ident.ID)
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	_, _, err := p.Register(ctx, "jane@kladi.shop", "sikr3t", "Jane")
	require.NoError(t, err)

	_, _, err = p.Register(ctx, "JANE@kladi.shop", "other", "Imposter")
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.AuthFailed, ae.Kind)
}

func TestLogin(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	_, _, err := p.Register(ctx, "jane@kladi.shop", "sikr3t", "")
	require.NoError(t, err)

	token, ident, err := p.Login(ctx, "jane@kladi.shop", "sikr3t")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	// Display name falls back to the email local part.
	assert.Equal(t, "jane", ident.Name)

	_, _, err = p.Login(ctx, "jane@kladi.shop", "wrong")
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.AuthFailed, ae.Kind)

	_, _, err = p.Login(ctx, "nobody@kladi.shop", "sikr3t")
	require.Error(t, err)
}

func TestLogoutEndsSession(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	token, _, err := p.Register(ctx, "jane@kladi.shop", "sikr3t", "Jane")
	require.NoError(t, err)

	require.NoError(t, p.Logout(ctx, token))
	_, ok := p.Resolve(token)
	assert.False(t, ok)

	// Logging out an unknown token is a no-op.
	require.NoError(t, p.Logout(ctx, "stale"))
}

func TestSessionChangeEventsFireSynchronously(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	var events []Event
	cancel := p.OnSessionChange(func(ev Event) { events = append(events, ev) })
	defer cancel()

	token, ident, err := p.Register(ctx, "jane@kladi.shop", "sikr3t", "Jane")
	require.NoError(t, err)
	// The SignedIn event is delivered before the call returns.
	require.Len(t, events, 1)
	assert.Equal(t, SignedIn, events[0].Type)
	assert.Equal(t, token, events[0].Token)
	assert.Equal(t, ident, events[0].Identity)

	require.NoError(t, p.Logout(ctx, token))
	require.Len(t, events, 2)
	assert.Equal(t, SignedOut, events[1].Type)
	assert.Equal(t, token, events[1].Token)

	cancel()
	_, _, err = p.Login(ctx, "jane@kladi.shop", "sikr3t")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestPrivilegeReadsProfileFlag(t *testing.T) {
	p, store := newProvider(t)
	ctx := context.Background()

	_, ident, err := p.Register(ctx, "boss@kladi.shop", "sikr3t", "Boss")
	require.NoError(t, err)

	require.NoError(t, store.Upsert(ctx, "profiles", ident.ID, []byte(`{"is_admin":true}`)))
	admin, err := p.Privilege(ctx, ident.ID)
	require.NoError(t, err)
	assert.True(t, admin)

	// A missing profile is an error, resolved to false by callers.
	_, err = p.Privilege(ctx, "no-such-user")
	assert.Error(t, err)
}
