package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
)

func TestNewCode(t *testing.T) {
	assert.Equal(t, "ORD-0000", NewCode(time.UnixMilli(0)))
	assert.Equal(t, "ORD-4821", NewCode(time.UnixMilli(1710924821)))
	assert.Equal(t, "ORD-0042", NewCode(time.UnixMilli(1700000000042)))

	// Always the fixed prefix and exactly four digits.
	assert.Regexp(t, `^ORD-\d{4}$`, NewCode(time.Now()))
}

func TestValidStatus(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("Cancelled"))
	assert.False(t, ValidStatus("pending"))
	assert.False(t, ValidStatus(""))
}

func newOrdersRepo(t *testing.T) *Repo {
	t.Helper()
	notifier := backend.NewLocalNotifier()
	store := backend.NewMemStore(notifier)
	return NewRepo(store, notifier, nil)
}

func TestCreateAssignsBackendID(t *testing.T) {
	r := newOrdersRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, Order{
		Code:         "ORD-4821",
		CustomerName: "Kiprop Maina",
		Phone:        "0712345678",
		Amount:       2500,
		Status:       StatusPending,
		Date:         "2024-03-20",
		UserID:       "u1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "ORD-4821", created.Code)

	got, err := r.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestRepeatedCodesNeverOverwrite(t *testing.T) {
	r := newOrdersRepo(t)
	ctx := context.Background()

	// Codes come from the wall clock and repeat; each order still gets
	// its own document.
	first, err := r.Create(ctx, Order{Code: "ORD-4821", UserID: "alice", Amount: 2500, Status: StatusPending})
	require.NoError(t, err)
	second, err := r.Create(ctx, Order{Code: "ORD-4821", UserID: "bob", Amount: 1200, Status: StatusPending})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	require.Len(t, r.List(), 2)

	got, err := r.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, 2500, got.Amount)
}

func TestPutUpdatesInPlace(t *testing.T) {
	r := newOrdersRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, Order{Code: "ORD-0001", Status: StatusPending, UserID: "u1"})
	require.NoError(t, err)

	created.Status = StatusShipped
	require.NoError(t, r.Put(ctx, created))

	got, err := r.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got.Status)
	assert.Len(t, r.List(), 1)
}

func TestListByUser(t *testing.T) {
	r := newOrdersRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, Order{Code: "ORD-0001", UserID: "u1", Status: StatusPending})
	require.NoError(t, err)
	_, err = r.Create(ctx, Order{Code: "ORD-0002", UserID: "u2", Status: StatusPending})
	require.NoError(t, err)
	_, err = r.Create(ctx, Order{Code: "ORD-0003", UserID: "u1", Status: StatusDelivered})
	require.NoError(t, err)

	mine := r.ListByUser("u1")
	require.Len(t, mine, 2)
	assert.Equal(t, "ORD-0001", mine[0].Code)
	assert.Equal(t, "ORD-0003", mine[1].Code)

	_, err = r.Get("no-such-id")
	assert.Error(t, err)
}
