package products

import (
	"context"
	"log/slog"
	"strings"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
	"github.com/st3v3nn/KLADISHOP/internal/mirror"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

// Repo serves product reads from the collection mirror and routes
// writes through it. UI-facing code never mutates the mirror directly.
type Repo struct {
	mirror *mirror.Mirror[Product]
}

func NewRepo(store backend.Store, notifier backend.Notifier, logger *slog.Logger) *Repo {
	m := mirror.New(store, notifier, Collection,
		func(p Product, id string) Product { return p.WithID(id) }, logger)
	return &Repo{mirror: m}
}

func (r *Repo) Mirror() *mirror.Mirror[Product] { return r.mirror }

func (r *Repo) Sync(ctx context.Context) (backend.CancelFunc, error) {
	if err := r.mirror.FetchAll(ctx); err != nil {
		return nil, err
	}
	return r.mirror.Subscribe(ctx)
}

type ListFilter struct {
	Category string // empty or "ALL" -> no category filter
	Query    string // free-text match on name and description
}

func (r *Repo) List(filter ListFilter) []Product {
	items := r.mirror.Items()

	cat := strings.TrimSpace(filter.Category)
	if strings.EqualFold(cat, "ALL") {
		cat = ""
	}
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	if cat == "" && q == "" {
		return items
	}

	out := make([]Product, 0, len(items))
	for _, p := range items {
		if cat != "" && !strings.EqualFold(p.Category, cat) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *Repo) Get(id string) (Product, error) {
	for _, p := range r.mirror.Items() {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, apperr.NotFoundErr("Product not found.")
}

func (r *Repo) Put(ctx context.Context, p Product) error {
	return r.mirror.Put(ctx, p)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.mirror.Delete(ctx, id)
}
