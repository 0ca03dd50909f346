package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Wijeboy/CYD-shop-sub000/internal/auth"
	"github.com/Wijeboy/CYD-shop-sub000/internal/cart"
	"github.com/Wijeboy/CYD-shop-sub000/internal/orders"
	"github.com/Wijeboy/CYD-shop-sub000/internal/products"
	"github.com/Wijeboy/CYD-shop-sub000/internal/users"
	pkgAuth "github.com/Wijeboy/CYD-shop-sub000/pkg/auth"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/config"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/metrics"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

// Embedded interfaces panic on any method a test does not expect to reach.
type stubAuth struct{ auth.Service }

func (stubAuth) RegisterAdmin(_ context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: uuid.New(), Email: req.Email, Role: enums.UserRoleAdmin}, nil
}

type stubProducts struct{ products.Service }

func (stubProducts) List(context.Context, products.ListInput) (*products.ProductList, error) {
	return &products.ProductList{Products: []products.ProductDTO{}}, nil
}

type stubCart struct{ cart.Service }

func (stubCart) Get(_ context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{ID: uuid.New(), UserID: userID, Items: []cart.CartItemDTO{}}, nil
}

type stubOrders struct{ orders.Service }

func (stubOrders) AdminList(context.Context, orders.AdminListInput) (*orders.OrderList, error) {
	return &orders.OrderList{Orders: []orders.OrderDTO{}}, nil
}

func (stubOrders) ListForUser(context.Context, uuid.UUID, *enums.OrderStatus, pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{Orders: []orders.OrderDTO{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		Storage: config.StorageConfig{PublicPrefix: "/uploads", MaxUploadMB: 1},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()
	return NewRouter(cfg, logg, Dependencies{
		DB:          stubPinger{},
		Redis:       stubPinger{},
		Sessions:    stubSessions{},
		Metrics:     reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Auth:        stubAuth{},
		Products:    stubProducts{},
		Cart:        stubCart{},
		Orders:      stubOrders{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func do(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		if resp := do(router, http.MethodGet, path, ""); resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestCatalogIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	if resp := do(router, http.MethodGet, "/api/products", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCartRequiresJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	if resp := do(router, http.MethodGet, "/api/cart", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/cart", "garbage"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token got %d", resp.Code)
	}
	resp := do(router, http.MethodGet, "/api/cart", buildToken(t, cfg, enums.UserRoleCustomer))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOrdersListRoutesToUserListing(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	resp := do(router, http.MethodGet, "/api/orders/user?limit=5", buildToken(t, cfg, enums.UserRoleCustomer))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	if resp := do(router, http.MethodGet, "/api/admin/orders", buildToken(t, cfg, enums.UserRoleCustomer)); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/admin/orders", buildToken(t, cfg, enums.UserRoleAdmin)); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAdminRegisterIsFlagGated(t *testing.T) {
	body := `{"first_name":"Ada","last_name":"Admin","email":"ada@example.com","password":"longenough"}`

	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when flag is off got %d", resp.Code)
	}

	cfg.FeatureFlags.AllowAdminRegister = true
	router = newTestRouter(cfg)
	req = httptest.NewRequest(http.MethodPost, "/api/admin/auth/register", strings.NewReader(body))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 when flag is on got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUploadsServedWithoutListing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cfg := testConfig()
	cfg.Storage.UploadDir = dir
	router := newTestRouter(cfg)

	resp := do(router, http.MethodGet, "/uploads/a.png", "")
	if resp.Code != http.StatusOK || resp.Body.String() != "png-bytes" {
		t.Fatalf("expected stored file, got %d %q", resp.Code, resp.Body.String())
	}
	if resp := do(router, http.MethodGet, "/uploads/", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for directory listing got %d", resp.Code)
	}
}
