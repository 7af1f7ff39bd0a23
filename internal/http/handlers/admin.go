package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/st3v3nn/KLADISHOP/internal/http/middleware"
	"github.com/st3v3nn/KLADISHOP/internal/http/validation"
	adminmod "github.com/st3v3nn/KLADISHOP/internal/modules/admin"
	"github.com/st3v3nn/KLADISHOP/internal/modules/orders"
	"github.com/st3v3nn/KLADISHOP/internal/modules/products"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
	"github.com/st3v3nn/KLADISHOP/internal/storage"
)

type AdminHandler struct {
	Service *adminmod.Service
	Storage storage.Storage
	PIN     string
}

func NewAdminHandler(svc *adminmod.Service, store storage.Storage, pin string) *AdminHandler {
	return &AdminHandler{Service: svc, Storage: store, PIN: pin}
}

type unlockInput struct {
	PIN string `json:"pin" binding:"required,len=4"`
}

// Unlock checks the 4-digit dashboard PIN. This is a cosmetic gate for
// the dashboard UI only; every admin route is separately guarded by the
// backend-verified privilege flag, and a correct PIN grants nothing on
// its own.
func (h *AdminHandler) Unlock(c *gin.Context) {
	var in unlockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Enter the 4-digit PIN.", validation.FromBindError(err, &in)))
		return
	}

	if subtle.ConstantTimeCompare([]byte(in.PIN), []byte(h.PIN)) != 1 {
		middleware.Fail(c, apperr.ForbiddenErr("Wrong PIN."))
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": true})
}

type replaceProductsInput struct {
	Products []products.Product `json:"products" binding:"required,dive"`
}

// ReplaceProducts takes the dashboard's full product list and upserts
// each record. A mid-loop failure stops the loop and surfaces; already
// written records stay written.
func (h *AdminHandler) ReplaceProducts(c *gin.Context) {
	var in replaceProductsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid product list.", validation.FromBindError(err, &in)))
		return
	}

	for _, p := range in.Products {
		if p.ID == "" {
			middleware.Fail(c, apperr.InvalidErr("Every product needs an id.", nil))
			return
		}
		if p.Price < 0 {
			middleware.Fail(c, apperr.InvalidErr("Price must not be negative.", map[string]string{"price": "Must be 0 or more."}))
			return
		}
		if p.Category != "" && !products.ValidCategory(p.Category) {
			middleware.Fail(c, apperr.InvalidErr("Unknown category: "+p.Category, nil))
			return
		}
	}

	if err := h.Service.ReplaceProducts(c.Request.Context(), in.Products); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"written": len(in.Products)})
}

type replaceOrdersInput struct {
	Orders []orders.Order `json:"orders" binding:"required,dive"`
}

// ReplaceOrders is how the dashboard changes order status. Transitions
// are unconstrained: any status may be set at any time, in either
// direction.
func (h *AdminHandler) ReplaceOrders(c *gin.Context) {
	var in replaceOrdersInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid order list.", validation.FromBindError(err, &in)))
		return
	}

	for _, o := range in.Orders {
		if o.ID == "" {
			middleware.Fail(c, apperr.InvalidErr("Every order needs an id.", nil))
			return
		}
		if !orders.ValidStatus(o.Status) {
			middleware.Fail(c, apperr.InvalidErr("Unknown status: "+string(o.Status), nil))
			return
		}
	}

	if err := h.Service.ReplaceOrders(c.Request.Context(), in.Orders); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"written": len(in.Orders)})
}

// Upload stores a product image and returns its public URL.
func (h *AdminHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Attach a file field named 'file'.", nil))
		return
	}

	src, err := file.Open()
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	defer src.Close()

	res, err := h.Storage.Put(c.Request.Context(), src, storage.PutInput{
		Dir:         c.DefaultPostForm("dir", "products"),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
	})
	if err != nil {
		middleware.Fail(c, apperr.WriteFailedErr(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": res.Key, "url": res.URL})
}
