package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/st3v3nn/KLADISHOP/internal/http/middleware"
	"github.com/st3v3nn/KLADISHOP/internal/modules/orders"
)

type OrdersHandler struct {
	Repo *orders.Repo
}

func NewOrdersHandler(repo *orders.Repo) *OrdersHandler {
	return &OrdersHandler{Repo: repo}
}

// ListMine serves the caller's order history from the mirror.
func (h *OrdersHandler) ListMine(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"orders": h.Repo.ListByUser(u.ID)})
}
