package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/st3v3nn/KLADISHOP/internal/auth"
	"github.com/st3v3nn/KLADISHOP/internal/backend"
	"github.com/st3v3nn/KLADISHOP/internal/config"
	apphttp "github.com/st3v3nn/KLADISHOP/internal/http"
	"github.com/st3v3nn/KLADISHOP/internal/http/handlers"
	"github.com/st3v3nn/KLADISHOP/internal/http/middleware"
	adminmod "github.com/st3v3nn/KLADISHOP/internal/modules/admin"
	"github.com/st3v3nn/KLADISHOP/internal/modules/cart"
	"github.com/st3v3nn/KLADISHOP/internal/modules/checkout"
	"github.com/st3v3nn/KLADISHOP/internal/modules/favorites"
	"github.com/st3v3nn/KLADISHOP/internal/modules/orders"
	"github.com/st3v3nn/KLADISHOP/internal/modules/payments"
	"github.com/st3v3nn/KLADISHOP/internal/modules/products"
	"github.com/st3v3nn/KLADISHOP/internal/session"
	"github.com/st3v3nn/KLADISHOP/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Change notifications: NATS when configured, in-process otherwise.
	var notifier backend.Notifier
	if cfg.NATSURL != "" {
		nn, err := backend.NewNATSNotifier(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to NATS: %v", err)
		}
		defer nn.Close()
		notifier = nn
	} else {
		notifier = backend.NewLocalNotifier()
	}

	store := backend.NewGormStore(db, notifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Collection mirrors: initial snapshot plus push-driven resync.
	productsRepo := products.NewRepo(store, notifier, logger)
	cancelProducts, err := productsRepo.Sync(ctx)
	if err != nil {
		log.Fatalf("products sync: %v", err)
	}
	defer cancelProducts()

	ordersRepo := orders.NewRepo(store, notifier, logger)
	cancelOrders, err := ordersRepo.Sync(ctx)
	if err != nil {
		log.Fatalf("orders sync: %v", err)
	}
	defer cancelOrders()

	provider := auth.NewStoreProvider(store, logger)
	registry := session.NewRegistry(provider.Privilege, logger)
	registry.Listen(ctx, provider)
	defer registry.Close()

	favoritesSvc := favorites.NewService(store, notifier, logger)
	defer favoritesSvc.Close()

	carts := cart.NewStore()
	checkoutSvc := checkout.NewService(carts, ordersRepo, logger)
	adminSvc := adminmod.NewService(productsRepo, ordersRepo, logger)
	paymentsSim := payments.NewSimulator(cfg.PaymentPushDelay, logger)

	uploads, err := storage.FromEnv(ctx)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	logger.Info("storage_ready", slog.String("driver", fmt.Sprint(uploads)))

	sessionCfg := middleware.SessionCfg{
		Provider:   provider,
		Registry:   registry,
		CookieName: cfg.SessionCookie,
		Secure:     cfg.SecureCookies,
		TTL:        cfg.SessionTTL,
	}

	r := apphttp.NewRouter(apphttp.Deps{
		Logger:     logger,
		SessionCfg: sessionCfg,
		Auth:       handlers.NewAuthHandler(provider, favoritesSvc, sessionCfg),
		Products:   handlers.NewProductsHandler(productsRepo),
		Favorites:  handlers.NewFavoritesHandler(favoritesSvc),
		Cart:       handlers.NewCartHandler(carts, productsRepo),
		Checkout:   handlers.NewCheckoutHandler(carts, checkoutSvc, paymentsSim),
		Orders:     handlers.NewOrdersHandler(ordersRepo),
		Admin:      handlers.NewAdminHandler(adminSvc, uploads, cfg.AdminPIN),
		Metrics:    prometheus.DefaultRegisterer,
	})

	logger.Info("listening", slog.String("addr", cfg.Addr))
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
