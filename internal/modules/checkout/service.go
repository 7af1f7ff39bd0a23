// Package checkout turns the current cart into a persisted order.
package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/st3v3nn/KLADISHOP/internal/modules/cart"
	"github.com/st3v3nn/KLADISHOP/internal/modules/orders"
)

type Service struct {
	carts  *cart.Store
	orders *orders.Repo
	logger *slog.Logger
	now    func() time.Time
}

func NewService(carts *cart.Store, ordersRepo *orders.Repo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{carts: carts, orders: ordersRepo, logger: logger, now: time.Now}
}

// Checkout builds a Pending order from the user's current cart and
// persists it. The amount is recomputed here from the cart as it is at
// submission time, never reused from an earlier display value. On
// success the cart is cleared; on failure it is left intact so the user
// can retry manually. There is no rollback path and no guard against
// rapid double-submission.
func (s *Service) Checkout(ctx context.Context, userID, customerName, phone string) (orders.Order, error) {
	lines := s.carts.Lines(userID)
	if len(lines) == 0 {
		return orders.Order{}, ErrCartEmpty
	}

	items := make([]orders.Item, len(lines))
	amount := 0
	for i, l := range lines {
		items[i] = orders.Item{ProductID: l.ProductID, Name: l.Name, Price: l.Price}
		amount += l.Price
	}

	now := s.now()
	o := orders.Order{
		Code:         orders.NewCode(now),
		CustomerName: customerName,
		Phone:        phone,
		Items:        items,
		Amount:       amount,
		Status:       orders.StatusPending,
		Date:         now.Format("2006-01-02"),
		UserID:       userID,
	}

	created, err := s.orders.Create(ctx, o)
	if err != nil {
		s.logger.Error("order_create_failed",
			slog.String("user_id", userID),
			slog.String("order_code", o.Code),
			slog.Any("err", err),
		)
		return orders.Order{}, err
	}

	s.carts.Clear(userID)
	s.logger.Info("order_created",
		slog.String("user_id", userID),
		slog.String("order_id", created.ID),
		slog.String("order_code", created.Code),
		slog.Int("amount", created.Amount),
		slog.Int("items", len(created.Items)),
	)
	return created, nil
}
