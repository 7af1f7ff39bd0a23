package mirror

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

type note struct {
	ID   string `json:"id,omitempty"`
	Body string `json:"body"`
}

func (n note) DocID() string { return n.ID }

func withNoteID(n note, id string) note {
	n.ID = id
	return n
}

func newNoteMirror(t *testing.T) (*Mirror[note], *backend.MemStore) {
	t.Helper()
	notifier := backend.NewLocalNotifier()
	store := backend.NewMemStore(notifier)
	m := New[note](store, notifier, "notes", withNoteID, slog.Default())
	return m, store
}

func TestFetchAllReplacesLocalCopy(t *testing.T) {
	m, store := newNoteMirror(t)
	ctx := context.Background()

	require.NoError(t, store.Seed("notes", "a", note{Body: "first"}))
	require.NoError(t, store.Seed("notes", "b", note{Body: "second"}))

	require.NoError(t, m.FetchAll(ctx))
	items := m.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "second", items[1].Body)

	// A stale local entry does not survive the next snapshot.
	require.NoError(t, store.Delete(ctx, "notes", "a"))
	require.NoError(t, m.FetchAll(ctx))
	items = m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
}

func TestFetchAllSkipsUndecodableDocs(t *testing.T) {
	m, store := newNoteMirror(t)

	require.NoError(t, store.Seed("notes", "good", note{Body: "ok"}))
	require.NoError(t, store.Upsert(context.Background(), "notes", "bad", []byte(`{"body":7}`)))

	require.NoError(t, m.FetchAll(context.Background()))
	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "good", items[0].ID)
}

func TestFetchAllFailureSetsErr(t *testing.T) {
	m, store := newNoteMirror(t)
	store.FailReads = errors.New("backend down")

	err := m.FetchAll(context.Background())
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.RemoteUnavailable, ae.Kind)
	assert.NotEmpty(t, m.Err())
	assert.Empty(t, m.Items())

	// The next successful operation clears the error field.
	store.FailReads = nil
	require.NoError(t, m.FetchAll(context.Background()))
	assert.Empty(t, m.Err())
}

func TestSubscribeResyncsOnNotification(t *testing.T) {
	m, store := newNoteMirror(t)
	ctx := context.Background()

	require.NoError(t, m.FetchAll(ctx))
	cancel, err := m.Subscribe(ctx)
	require.NoError(t, err)
	defer cancel()

	// A write from elsewhere reaches the mirror via the push channel.
	require.NoError(t, store.Upsert(ctx, "notes", "x", []byte(`{"body":"pushed"}`)))
	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "pushed", items[0].Body)

	// Later notifications win over earlier state.
	require.NoError(t, store.Upsert(ctx, "notes", "x", []byte(`{"body":"newer"}`)))
	assert.Equal(t, "newer", m.Items()[0].Body)

	// After cancel the mirror stops tracking.
	cancel()
	require.NoError(t, store.Upsert(ctx, "notes", "y", []byte(`{"body":"missed"}`)))
	assert.Len(t, m.Items(), 1)
}

func TestCreateAdoptsBackendID(t *testing.T) {
	m, _ := newNoteMirror(t)
	ctx := context.Background()

	created, err := m.Create(ctx, note{Body: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)

	// The backend copy matches the local one after a fresh snapshot.
	require.NoError(t, m.FetchAll(ctx))
	require.Len(t, m.Items(), 1)
	assert.Equal(t, created.ID, m.Items()[0].ID)
}

func TestCreateWhileSubscribedDoesNotDuplicate(t *testing.T) {
	m, _ := newNoteMirror(t)
	ctx := context.Background()

	cancel, err := m.Subscribe(ctx)
	require.NoError(t, err)
	defer cancel()

	_, err = m.Create(ctx, note{Body: "once"})
	require.NoError(t, err)
	assert.Len(t, m.Items(), 1)
}

func TestCreateFailureLeavesMirrorUntouched(t *testing.T) {
	m, store := newNoteMirror(t)
	store.FailWrites = errors.New("write refused")

	_, err := m.Create(context.Background(), note{Body: "nope"})
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.WriteFailed, ae.Kind)
	assert.Empty(t, m.Items())
	assert.NotEmpty(t, m.Err())
}

func TestPutReplacesInPlace(t *testing.T) {
	m, _ := newNoteMirror(t)
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, note{ID: "n1", Body: "v1"}))
	require.NoError(t, m.Put(ctx, note{ID: "n2", Body: "v1"}))
	require.NoError(t, m.Put(ctx, note{ID: "n1", Body: "v2"}))

	items := m.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "n1", items[0].ID)
	assert.Equal(t, "v2", items[0].Body)
	assert.Equal(t, "n2", items[1].ID)
}

func TestDeleteDropsLocally(t *testing.T) {
	m, _ := newNoteMirror(t)
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, note{ID: "n1", Body: "keep"}))
	require.NoError(t, m.Put(ctx, note{ID: "n2", Body: "drop"}))
	require.NoError(t, m.Delete(ctx, "n2"))

	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "n1", items[0].ID)
}

func TestDeleteFailureKeepsLocalCopy(t *testing.T) {
	m, store := newNoteMirror(t)
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, note{ID: "n1", Body: "keep"}))
	store.FailWrites = errors.New("write refused")

	err := m.Delete(ctx, "n1")
	require.Error(t, err)
	assert.Len(t, m.Items(), 1)
	assert.NotEmpty(t, m.Err())
}
