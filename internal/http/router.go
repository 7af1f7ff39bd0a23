package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/st3v3nn/KLADISHOP/internal/http/handlers"
	"github.com/st3v3nn/KLADISHOP/internal/http/middleware"
)

// Deps is everything the router needs, wired in main.
type Deps struct {
	Logger     *slog.Logger
	SessionCfg middleware.SessionCfg
	Auth       *handlers.AuthHandler
	Products   *handlers.ProductsHandler
	Favorites  *handlers.FavoritesHandler
	Cart       *handlers.CartHandler
	Checkout   *handlers.CheckoutHandler
	Orders     *handlers.OrdersHandler
	Admin      *handlers.AdminHandler
	Metrics    prometheus.Registerer
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	// ErrorHandler sits outside Recovery: a panic unwinds to Recovery,
	// which records it, and ErrorHandler then writes the 500 on the way
	// back out. Logger and Metrics wrap both so they see the final
	// status.
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.Metrics(d.Metrics),
		middleware.ErrorHandler(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.Session(d.SessionCfg),
	)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/auth/register", d.Auth.Register)
		api.POST("/auth/login", d.Auth.Login)
		api.POST("/auth/logout", d.Auth.Logout)
		api.GET("/session", d.Auth.Session)

		api.GET("/products", d.Products.List)
		api.GET("/products/:id", d.Products.Get)

		authed := api.Group("", middleware.RequireAuth())
		{
			authed.GET("/favorites", d.Favorites.List)
			authed.POST("/favorites/toggle", d.Favorites.Toggle)

			authed.GET("/cart", d.Cart.Get)
			authed.POST("/cart/items", d.Cart.AddItem)
			authed.DELETE("/cart/items/:index", d.Cart.RemoveItem)

			authed.POST("/checkout", d.Checkout.Post)
			authed.GET("/orders", d.Orders.ListMine)

			// The PIN endpoint only needs a session; real authorization
			// happens on the admin group below.
			authed.POST("/admin/unlock", d.Admin.Unlock)
		}

		admin := api.Group("/admin", middleware.RequireAdmin())
		{
			admin.PUT("/products", d.Admin.ReplaceProducts)
			admin.PUT("/orders", d.Admin.ReplaceOrders)
			admin.POST("/uploads", d.Admin.Upload)
		}
	}

	return r
}
