package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/st3v3nn/KLADISHOP/internal/http/middleware"
	"github.com/st3v3nn/KLADISHOP/internal/http/validation"
	"github.com/st3v3nn/KLADISHOP/internal/modules/cart"
	"github.com/st3v3nn/KLADISHOP/internal/modules/checkout"
	"github.com/st3v3nn/KLADISHOP/internal/modules/payments"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

type CheckoutHandler struct {
	Carts    *cart.Store
	Checkout *checkout.Service
	Payments *payments.Simulator
}

func NewCheckoutHandler(carts *cart.Store, svc *checkout.Service, sim *payments.Simulator) *CheckoutHandler {
	return &CheckoutHandler{Carts: carts, Checkout: svc, Payments: sim}
}

type checkoutInput struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Phone string `json:"phone" binding:"required,min=5,max=32"`
}

// Post runs the simulated STK push and then the checkout orchestrator.
// On persistence failure the cart is left intact so the customer can
// retry; there is no automatic retry here.
func (h *CheckoutHandler) Post(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var in checkoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Check the form fields.", validation.FromBindError(err, &in)))
		return
	}

	// The push shows the customer the current total; the order amount
	// is recomputed from the cart again inside the orchestrator.
	push, err := h.Payments.Push(c.Request.Context(), in.Phone, h.Carts.Total(u.ID))
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	order, err := h.Checkout.Checkout(c.Request.Context(), u.ID, in.Name, in.Phone)
	if err != nil {
		if errors.Is(err, checkout.ErrCartEmpty) {
			middleware.Fail(c, apperr.InvalidErr("Your cart is empty.", nil))
			return
		}
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":   order,
		"payment": push,
	})
}
