package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/st3v3nn/KLADISHOP/internal/auth"
	"github.com/st3v3nn/KLADISHOP/internal/http/middleware"
	"github.com/st3v3nn/KLADISHOP/internal/http/validation"
	"github.com/st3v3nn/KLADISHOP/internal/modules/favorites"
	"github.com/st3v3nn/KLADISHOP/internal/session"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

type AuthHandler struct {
	Provider  auth.Provider
	Favorites *favorites.Service
	Cfg       middleware.SessionCfg
}

func NewAuthHandler(provider auth.Provider, favs *favorites.Service, cfg middleware.SessionCfg) *AuthHandler {
	return &AuthHandler{Provider: provider, Favorites: favs, Cfg: cfg}
}

type registerInput struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Name     string `json:"name" binding:"omitempty,max=100"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Check the form fields.", validation.FromBindError(err, &in)))
		return
	}

	token, ident, err := h.Provider.Register(c.Request.Context(), in.Email, in.Password, in.Name)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	middleware.SetSessionCookie(c, h.Cfg, token)
	c.JSON(http.StatusCreated, gin.H{"user": ident})
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Check the form fields.", validation.FromBindError(err, &in)))
		return
	}

	token, ident, err := h.Provider.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	middleware.SetSessionCookie(c, h.Cfg, token)
	c.JSON(http.StatusOK, gin.H{"user": ident})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if u, ok := middleware.CurrentUser(c); ok {
		h.Favorites.Release(u.ID)
	}
	if token, ok := middleware.SessionToken(c); ok {
		if err := h.Provider.Logout(c.Request.Context(), token); err != nil {
			middleware.Fail(c, apperr.Wrap(err))
			return
		}
	}
	middleware.ClearSessionCookie(c, h.Cfg)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Session reports the current session snapshot. Admin may lag behind
// identity right after sign-in while the privilege lookup settles.
func (h *AuthHandler) Session(c *gin.Context) {
	snap := middleware.CurrentSession(c)
	out := gin.H{
		"state": snap.State,
		"admin": snap.Admin,
	}
	if snap.State == session.StateAuthenticated {
		out["user"] = snap.Identity
	}
	c.JSON(http.StatusOK, out)
}
