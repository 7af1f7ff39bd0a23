package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/st3v3nn/KLADISHOP/internal/http/middleware"
	"github.com/st3v3nn/KLADISHOP/internal/modules/products"
)

type ProductsHandler struct {
	Repo *products.Repo
}

func NewProductsHandler(repo *products.Repo) *ProductsHandler {
	return &ProductsHandler{Repo: repo}
}

// List serves the product catalog from the local mirror; no backend
// round trip happens here. A stale mirror surfaces via "sync_error".
func (h *ProductsHandler) List(c *gin.Context) {
	items := h.Repo.List(products.ListFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})

	out := gin.H{
		"products":   items,
		"categories": products.Categories,
	}
	if msg := h.Repo.Mirror().Err(); msg != "" {
		out["sync_error"] = msg
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProductsHandler) Get(c *gin.Context) {
	p, err := h.Repo.Get(c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}
