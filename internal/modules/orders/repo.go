package orders

import (
	"context"
	"log/slog"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
	"github.com/st3v3nn/KLADISHOP/internal/mirror"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

type Repo struct {
	mirror *mirror.Mirror[Order]
}

func NewRepo(store backend.Store, notifier backend.Notifier, logger *slog.Logger) *Repo {
	m := mirror.New(store, notifier, Collection,
		func(o Order, id string) Order { return o.WithID(id) }, logger)
	return &Repo{mirror: m}
}

func (r *Repo) Mirror() *mirror.Mirror[Order] { return r.mirror }

func (r *Repo) Sync(ctx context.Context) (backend.CancelFunc, error) {
	if err := r.mirror.FetchAll(ctx); err != nil {
		return nil, err
	}
	return r.mirror.Subscribe(ctx)
}

func (r *Repo) List() []Order { return r.mirror.Items() }

// ListByUser returns the orders owned by one user, in arrival order.
func (r *Repo) ListByUser(userID string) []Order {
	all := r.mirror.Items()
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

func (r *Repo) Get(id string) (Order, error) {
	for _, o := range r.mirror.Items() {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, apperr.NotFoundErr("Order not found.")
}

// Create persists a new order under a backend-assigned id. The display
// code travels in the document body only, so orders whose codes happen
// to repeat never overwrite each other.
func (r *Repo) Create(ctx context.Context, o Order) (Order, error) {
	return r.mirror.Create(ctx, o)
}

func (r *Repo) Put(ctx context.Context, o Order) error {
	return r.mirror.Put(ctx, o)
}
