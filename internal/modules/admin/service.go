// Package admin is the mutation surface behind the dashboard: bulk
// replacement writes of products and orders.
package admin

import (
	"context"
	"log/slog"

	"github.com/st3v3nn/KLADISHOP/internal/modules/orders"
	"github.com/st3v3nn/KLADISHOP/internal/modules/products"
)

type Service struct {
	products *products.Repo
	orders   *orders.Repo
	logger   *slog.Logger
}

func NewService(productsRepo *products.Repo, ordersRepo *orders.Repo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{products: productsRepo, orders: ordersRepo, logger: logger}
}

// ReplaceProducts writes every record one at a time, keyed by id
// (upsert: create if absent, overwrite if present). The first failure
// is logged and stops the loop, leaving the backend in a mixed state;
// there is no resumption or compensation.
func (s *Service) ReplaceProducts(ctx context.Context, items []products.Product) error {
	for _, p := range items {
		if err := s.products.Put(ctx, p); err != nil {
			s.logger.Error("product_upsert_failed",
				slog.String("product_id", p.ID),
				slog.Any("err", err),
			)
			return err
		}
	}
	return nil
}

// ReplaceOrders is the same loop for orders; in practice the dashboard
// uses it for status changes, which are unconstrained in direction.
func (s *Service) ReplaceOrders(ctx context.Context, items []orders.Order) error {
	for _, o := range items {
		if err := s.orders.Put(ctx, o); err != nil {
			s.logger.Error("order_upsert_failed",
				slog.String("order_id", o.ID),
				slog.Any("err", err),
			)
			return err
		}
	}
	return nil
}
