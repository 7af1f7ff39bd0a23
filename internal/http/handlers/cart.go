package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/st3v3nn/KLADISHOP/internal/http/middleware"
	"github.com/st3v3nn/KLADISHOP/internal/http/validation"
	"github.com/st3v3nn/KLADISHOP/internal/modules/cart"
	"github.com/st3v3nn/KLADISHOP/internal/modules/products"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

// Routes here sit behind RequireAuth; adding to a cart without a
// session never reaches these handlers.
type CartHandler struct {
	Carts    *cart.Store
	Products *products.Repo
}

func NewCartHandler(carts *cart.Store, productsRepo *products.Repo) *CartHandler {
	return &CartHandler{Carts: carts, Products: productsRepo}
}

func (h *CartHandler) Get(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	lines := h.Carts.Lines(u.ID)
	c.JSON(http.StatusOK, gin.H{
		"items": lines,
		"total": h.Carts.Total(u.ID),
		"count": len(lines),
	})
}

type addItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
}

// AddItem snapshots the product into the cart. Adding the same product
// twice yields two lines.
func (h *CartHandler) AddItem(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var in addItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("product_id is required.", validation.FromBindError(err, &in)))
		return
	}

	p, err := h.Products.Get(in.ProductID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	h.Carts.Add(u.ID, p)
	c.JSON(http.StatusOK, gin.H{
		"items": h.Carts.Lines(u.ID),
		"total": h.Carts.Total(u.ID),
	})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		middleware.Fail(c, apperr.InvalidErr("Invalid cart index.", nil))
		return
	}

	h.Carts.Remove(u.ID, index)
	c.JSON(http.StatusOK, gin.H{
		"items": h.Carts.Lines(u.ID),
		"total": h.Carts.Total(u.ID),
	})
}
