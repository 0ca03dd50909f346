package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Wijeboy/CYD-shop-sub000/api/controllers"
	"github.com/Wijeboy/CYD-shop-sub000/api/middleware"
	"github.com/Wijeboy/CYD-shop-sub000/internal/auth"
	"github.com/Wijeboy/CYD-shop-sub000/internal/cart"
	"github.com/Wijeboy/CYD-shop-sub000/internal/media"
	"github.com/Wijeboy/CYD-shop-sub000/internal/orders"
	"github.com/Wijeboy/CYD-shop-sub000/internal/products"
	"github.com/Wijeboy/CYD-shop-sub000/internal/users"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/auth/session"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/config"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/metrics"
	pkgredis "github.com/Wijeboy/CYD-shop-sub000/pkg/redis"
)

// Dependencies carries everything the router hands to controllers and
// middleware. Nil infrastructure (Redis, metrics) disables the features that
// need it.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Sessions    session.AccessSessionChecker
	Idempotency pkgredis.IdempotencyStore
	RateLimiter pkgredis.RateLimiter
	Metrics     prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth      auth.Service
	Products  products.Service
	Catalog   controllers.ProductCounter
	Cart      cart.Service
	Orders    orders.Service
	Customers users.CustomerService
	Media     media.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	loginLimit := middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)
	registerLimit := middleware.AuthRateLimit(registerPolicy, deps.RateLimiter, logg)
	authenticate := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	idempotent := middleware.Idempotency(deps.Idempotency, cfg.Checkout.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
	mountUploads(r, cfg.Storage)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(registerLimit).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(loginLimit).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(authenticate).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/admin/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/login", controllers.AdminAuthLogin(deps.Auth, logg))
		if cfg.FeatureFlags.AllowAdminRegister && !cfg.App.IsProd() {
			r.With(registerLimit).Post("/register", controllers.AdminAuthRegister(deps.Auth, logg))
		}
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.Products, logg))
		r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/api/me", controllers.AuthMe(deps.Auth, logg))

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/", controllers.CartAddItem(deps.Cart, logg))
			r.Put("/update/{lineId}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/remove/{lineId}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Delete("/clear", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/api/orders", func(r chi.Router) {
			r.With(idempotent).Post("/place", controllers.OrderPlace(deps.Orders, logg))
			r.Get("/user", controllers.OrderListForUser(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
			r.With(idempotent).Put("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

		r.Get("/stats", controllers.AdminStats(deps.Orders, deps.Catalog, deps.Customers, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderGet(deps.Orders, logg))
			r.Put("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
			r.Put("/{orderId}/delivery-fee", controllers.AdminOrderUpdateDeliveryFee(deps.Orders, logg))
			r.Delete("/{orderId}", controllers.AdminOrderDelete(deps.Orders, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(deps.Products, logg))
			r.Post("/", controllers.AdminProductCreate(deps.Products, logg))
			r.Get("/{productId}", controllers.AdminProductGet(deps.Products, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(deps.Products, logg))
		})

		r.Post("/uploads", controllers.AdminUploadImage(deps.Media, cfg.Storage.MaxUploadBytes(), logg))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.AdminCustomerList(deps.Customers, logg))
			r.Get("/{userId}", controllers.AdminCustomerGet(deps.Customers, logg))
		})
	})

	return r
}

// mountUploads serves stored images read-only. Directory listings are refused.
func mountUploads(r chi.Router, cfg config.StorageConfig) {
	prefix := "/" + strings.Trim(cfg.PublicPrefix, "/")
	if prefix == "/" || cfg.UploadDir == "" {
		return
	}
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir)))
	r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/") {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, req)
	})
}
