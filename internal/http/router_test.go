package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nn/KLADISHOP/internal/auth"
	"github.com/st3v3nn/KLADISHOP/internal/backend"
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

const testCookie = "kladi_session"

type testApp struct {
	router   *gin.Engine
	store    *backend.MemStore
	provider *auth.StoreProvider
	carts    *cart.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	notifier := backend.NewLocalNotifier()
	store := backend.NewMemStore(notifier)
	require.NoError(t, store.Seed("products", "1", products.Product{
		Name: "Vintage Denim Jacket", Price: 2500, Category: "Outerwear", Description: "Classic 90s wash",
	}))
	require.NoError(t, store.Seed("products", "2", products.Product{
		Name: "Cargo Pants", Price: 1200, Category: "Bottoms", Description: "Six pockets",
	}))

	productsRepo := products.NewRepo(store, notifier, logger)
	cancelProducts, err := productsRepo.Sync(ctx)
	require.NoError(t, err)
	t.Cleanup(cancelProducts)

	ordersRepo := orders.NewRepo(store, notifier, logger)
	cancelOrders, err := ordersRepo.Sync(ctx)
	require.NoError(t, err)
	t.Cleanup(cancelOrders)

	provider := auth.NewStoreProvider(store, logger)
	registry := session.NewRegistry(provider.Privilege, logger)
	registry.Listen(ctx, provider)
	t.Cleanup(registry.Close)

	favs := favorites.NewService(store, notifier, logger)
	t.Cleanup(favs.Close)
	carts := cart.NewStore()
	checkoutSvc := checkout.NewService(carts, ordersRepo, logger)
	adminSvc := adminmod.NewService(productsRepo, ordersRepo, logger)
	sim := payments.NewSimulator(0, logger)
	files := storage.NewLocal(t.TempDir(), "/uploads")

	cfg := middleware.SessionCfg{
		Provider:   provider,
		Registry:   registry,
		CookieName: testCookie,
		TTL:        time.Hour,
	}

	router := NewRouter(Deps{
		Logger:     logger,
		SessionCfg: cfg,
		Auth:       handlers.NewAuthHandler(provider, favs, cfg),
		Products:   handlers.NewProductsHandler(productsRepo),
		Favorites:  handlers.NewFavoritesHandler(favs),
		Cart:       handlers.NewCartHandler(carts, productsRepo),
		Checkout:   handlers.NewCheckoutHandler(carts, checkoutSvc, sim),
		Orders:     handlers.NewOrdersHandler(ordersRepo),
		Admin:      handlers.NewAdminHandler(adminSvc, files, "1234"),
		Metrics:    prometheus.NewRegistry(),
	})

	return &testApp{router: router, store: store, provider: provider, carts: carts}
}

func (a *testApp) do(t *testing.T, method, path, cookie string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&stdhttp.Cookie{Name: testCookie, Value: cookie})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// signUp registers a fresh account and returns its session token.
func (a *testApp) signUp(t *testing.T, email string) string {
	t.Helper()
	w := a.do(t, "POST", "/api/auth/register", "", gin.H{
		"email": email, "password": "sikr3t", "name": "Jane Doe",
	})
	require.Equal(t, stdhttp.StatusCreated, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("no session cookie in register response")
	return ""
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t)
	w := a.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, stdhttp.StatusOK, w.Code)
}

func TestPanicBecomesInternalError(t *testing.T) {
	a := newTestApp(t)
	a.router.GET("/explode", func(c *gin.Context) {
		panic("handler blew up")
	})

	w := a.do(t, "GET", "/explode", "", nil)
	require.Equal(t, stdhttp.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Something went wrong.", body["error"])
	assert.NotEmpty(t, body["request_id"])
}

func TestProductsArePublic(t *testing.T) {
	a := newTestApp(t)

	w := a.do(t, "GET", "/api/products", "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["products"], 2)
	assert.Len(t, body["categories"], len(products.Categories))
	assert.NotContains(t, body, "sync_error")

	w = a.do(t, "GET", "/api/products?category=Outerwear", "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["products"], 1)

	w = a.do(t, "GET", "/api/products/1", "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)

	w = a.do(t, "GET", "/api/products/999", "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, w.Code)
}

func TestGuardedRoutesPromptForAuth(t *testing.T) {
	a := newTestApp(t)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/cart"},
		{"POST", "/api/cart/items"},
		{"POST", "/api/checkout"},
		{"GET", "/api/favorites"},
		{"GET", "/api/orders"},
		{"POST", "/api/admin/unlock"},
	} {
		w := a.do(t, tc.method, tc.path, "", nil)
		require.Equal(t, stdhttp.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, true, decode(t, w)["auth_prompt"])
	}

	// The rejected add-to-cart changed nothing.
	assert.Empty(t, a.carts.Lines("u1"))
}

func TestSessionLifecycle(t *testing.T) {
	a := newTestApp(t)

	w := a.do(t, "GET", "/api/session", "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Equal(t, "anonymous", decode(t, w)["state"])

	tok := a.signUp(t, "jane@kladi.shop")
	w = a.do(t, "GET", "/api/session", tok, nil)
	body := decode(t, w)
	assert.Equal(t, "authenticated", body["state"])
	assert.Equal(t, false, body["admin"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "jane@kladi.shop", user["email"])

	w = a.do(t, "POST", "/api/auth/logout", tok, nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	w = a.do(t, "GET", "/api/session", tok, nil)
	assert.Equal(t, "anonymous", decode(t, w)["state"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestApp(t)
	a.signUp(t, "jane@kladi.shop")

	w := a.do(t, "POST", "/api/auth/login", "", gin.H{"email": "jane@kladi.shop", "password": "wrong"})
	assert.Equal(t, stdhttp.StatusUnauthorized, w.Code)

	w = a.do(t, "POST", "/api/auth/login", "", gin.H{"email": "not-an-email", "password": "x"})
	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)
}

func TestCartFlow(t *testing.T) {
	a := newTestApp(t)
	tok := a.signUp(t, "jane@kladi.shop")

	w := a.do(t, "POST", "/api/cart/items", tok, gin.H{"product_id": "1"})
	require.Equal(t, stdhttp.StatusOK, w.Code)
	w = a.do(t, "POST", "/api/cart/items", tok, gin.H{"product_id": "1"})
	require.Equal(t, stdhttp.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, float64(5000), body["total"])

	w = a.do(t, "POST", "/api/cart/items", tok, gin.H{"product_id": "404"})
	assert.Equal(t, stdhttp.StatusNotFound, w.Code)

	w = a.do(t, "DELETE", "/api/cart/items/0", tok, nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	w = a.do(t, "DELETE", "/api/cart/items/abc", tok, nil)
	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)
}

func TestCheckoutFlow(t *testing.T) {
	a := newTestApp(t)
	tok := a.signUp(t, "jane@kladi.shop")

	w := a.do(t, "POST", "/api/cart/items", tok, gin.H{"product_id": "1"})
	require.Equal(t, stdhttp.StatusOK, w.Code)
	w = a.do(t, "POST", "/api/cart/items", tok, gin.H{"product_id": "2"})
	require.Equal(t, stdhttp.StatusOK, w.Code)

	w = a.do(t, "POST", "/api/checkout", tok, gin.H{"name": "Jane Doe", "phone": "0712345678"})
	require.Equal(t, stdhttp.StatusCreated, w.Code)
	body := decode(t, w)

	order := body["order"].(map[string]any)
	assert.Equal(t, float64(3700), order["amount"])
	assert.Equal(t, "Pending", order["status"])
	assert.Len(t, order["items"], 2)
	assert.NotEmpty(t, order["id"])
	assert.True(t, strings.HasPrefix(order["code"].(string), "ORD-"))

	payment := body["payment"].(map[string]any)
	assert.Equal(t, "SUCCESS", payment["status"])
	assert.Equal(t, "0712345678", payment["phone"])
	assert.Equal(t, float64(3700), payment["amount"])

	// The cart is cleared and the order shows in history.
	w = a.do(t, "GET", "/api/cart", tok, nil)
	assert.Len(t, decode(t, w)["items"], 0)
	w = a.do(t, "GET", "/api/orders", tok, nil)
	assert.Len(t, decode(t, w)["orders"], 1)

	// A second submit with an empty cart is rejected.
	w = a.do(t, "POST", "/api/checkout", tok, gin.H{"name": "Jane Doe", "phone": "0712345678"})
	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)
}

func TestFavoritesFlow(t *testing.T) {
	a := newTestApp(t)
	tok := a.signUp(t, "jane@kladi.shop")

	w := a.do(t, "POST", "/api/favorites/toggle", tok, gin.H{"product_id": "1"})
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["favorited"])

	w = a.do(t, "GET", "/api/favorites", tok, nil)
	body := decode(t, w)
	require.Len(t, body["favorites"], 1)
	assert.Equal(t, "1", body["favorites"].([]any)[0])

	w = a.do(t, "POST", "/api/favorites/toggle", tok, gin.H{"product_id": "1"})
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["favorited"])
}

func TestAdminUnlockPIN(t *testing.T) {
	a := newTestApp(t)
	tok := a.signUp(t, "jane@kladi.shop")

	w := a.do(t, "POST", "/api/admin/unlock", tok, gin.H{"pin": "0000"})
	assert.Equal(t, stdhttp.StatusForbidden, w.Code)

	w = a.do(t, "POST", "/api/admin/unlock", tok, gin.H{"pin": "12345"})
	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)

	w = a.do(t, "POST", "/api/admin/unlock", tok, gin.H{"pin": "1234"})
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["unlocked"])
}

func TestAdminRoutesRequirePrivilege(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	// Anonymous: 401.
	w := a.do(t, "PUT", "/api/admin/products", "", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, w.Code)

	// Authenticated without the flag: 403, PIN or not.
	tok := a.signUp(t, "jane@kladi.shop")
	w = a.do(t, "PUT", "/api/admin/products", tok, gin.H{"products": []gin.H{}})
	assert.Equal(t, stdhttp.StatusForbidden, w.Code)

	// Flag the account and sign in again so the privilege lookup runs.
	ident, ok := a.provider.Resolve(tok)
	require.True(t, ok)
	require.NoError(t, a.store.Upsert(ctx, "profiles", ident.ID, []byte(`{"is_admin":true}`)))

	w = a.do(t, "POST", "/api/auth/login", "", gin.H{"email": "jane@kladi.shop", "password": "sikr3t"})
	require.Equal(t, stdhttp.StatusOK, w.Code)
	var adminTok string
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie && c.Value != "" {
			adminTok = c.Value
		}
	}
	require.NotEmpty(t, adminTok)

	// The flag lands asynchronously after sign-in.
	assert.Eventually(t, func() bool {
		res := a.do(t, "GET", "/api/session", adminTok, nil)
		return decode(t, res)["admin"] == true
	}, time.Second, 10*time.Millisecond)

	w = a.do(t, "PUT", "/api/admin/products", adminTok, gin.H{"products": []gin.H{
		{"id": "3", "name": "Wool Beanie", "price": 500, "category": "Accessories"},
	}})
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["written"])

	// The write is visible on the public catalog.
	w = a.do(t, "GET", "/api/products/3", "", nil)
	assert.Equal(t, stdhttp.StatusOK, w.Code)

	// Bad payloads are rejected before any write.
	w = a.do(t, "PUT", "/api/admin/products", adminTok, gin.H{"products": []gin.H{
		{"id": "4", "name": "X", "price": -5},
	}})
	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)

	w = a.do(t, "PUT", "/api/admin/orders", adminTok, gin.H{"orders": []gin.H{
		{"id": "ORD-0001", "status": "Cancelled"},
	}})
	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)
}
