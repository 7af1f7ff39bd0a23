package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/st3v3nn/KLADISHOP/internal/http/middleware"
	"github.com/st3v3nn/KLADISHOP/internal/http/validation"
	"github.com/st3v3nn/KLADISHOP/internal/modules/favorites"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

// Routes here sit behind RequireAuth; CurrentUser is always set.
type FavoritesHandler struct {
	Favorites *favorites.Service
}

func NewFavoritesHandler(svc *favorites.Service) *FavoritesHandler {
	return &FavoritesHandler{Favorites: svc}
}

func (h *FavoritesHandler) List(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	ids, err := h.Favorites.ProductIDs(c.Request.Context(), u.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": ids})
}

type toggleInput struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (h *FavoritesHandler) Toggle(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var in toggleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("product_id is required.", validation.FromBindError(err, &in)))
		return
	}

	favorited, err := h.Favorites.Toggle(c.Request.Context(), u.ID, in.ProductID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": in.ProductID, "favorited": favorited})
}
