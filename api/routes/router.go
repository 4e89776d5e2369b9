package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inventra/pos-backend/api/controllers"
	"github.com/inventra/pos-backend/api/middleware"
	internalauth "github.com/inventra/pos-backend/internal/auth"
	"github.com/inventra/pos-backend/internal/cartsession"
	"github.com/inventra/pos-backend/internal/catalog"
	"github.com/inventra/pos-backend/internal/customers"
	"github.com/inventra/pos-backend/internal/receipts"
	"github.com/inventra/pos-backend/internal/settlement"
	"github.com/inventra/pos-backend/pkg/auth/session"
	"github.com/inventra/pos-backend/pkg/config"
	"github.com/inventra/pos-backend/pkg/db"
	"github.com/inventra/pos-backend/pkg/enums"
	"github.com/inventra/pos-backend/pkg/logger"
	pkgredis "github.com/inventra/pos-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Cfg         *config.Config
	Logg        *logger.Logger
	DB          db.Pinger
	Redis       *pkgredis.Client
	Sessions    *session.Manager
	Registry    prometheus.Gatherer
	AuthService internalauth.Service
	Catalog     catalog.Service
	Customers   customers.Service
	CartSvc     cartsession.Service
	Settlement  settlement.Service
	Receipts    *receipts.Renderer
}

// NewRouter wires the full route tree.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Cfg
	logg := deps.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(deps.AuthService, logg))
		r.Post("/refresh", controllers.Refresh(deps.AuthService, logg))
		r.Post("/logout", controllers.Logout(deps.AuthService, cfg.JWT, logg))
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.Register(deps.AuthService, logg))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Catalog, logg))
			r.Get("/lookup", controllers.LookupProduct(deps.Catalog, logg))
			r.Get("/{id}", controllers.GetProduct(deps.Catalog, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
				r.Post("/", controllers.CreateProduct(deps.Catalog, logg))
				r.Patch("/{id}", controllers.UpdateProduct(deps.Catalog, logg))
				r.Delete("/{id}", controllers.DeleteProduct(deps.Catalog, logg))
			})
		})

		r.Route("/customer-types", func(r chi.Router) {
			r.Get("/", controllers.ListCustomerTypes(deps.Customers, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
				r.Post("/", controllers.CreateCustomerType(deps.Customers, logg))
				r.Put("/{id}", controllers.UpdateCustomerType(deps.Customers, logg))
				r.Delete("/{id}", controllers.DeleteCustomerType(deps.Customers, logg))
			})
		})

		r.Get("/customers", controllers.ListCustomers(deps.Customers, logg))

		r.Route("/cart-sessions", func(r chi.Router) {
			r.Post("/", controllers.StartCartSession(deps.CartSvc, logg))
			r.Get("/{token}", controllers.GetCartSession(deps.CartSvc, logg))
			r.Post("/{token}/scan", controllers.ScanCode(deps.CartSvc, logg))
			r.Patch("/{token}/lines/{index}", controllers.AdjustLine(deps.CartSvc, logg))
			r.Delete("/{token}/lines/{index}", controllers.RemoveLine(deps.CartSvc, logg))
			r.Post("/{token}/checkout", controllers.Checkout(deps.Settlement, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(deps.Settlement, logg))
			r.Get("/{id}", controllers.GetTransaction(deps.Settlement, logg))
			r.Get("/{id}/receipt", controllers.TransactionReceipt(deps.Settlement, deps.Receipts, logg))
			r.Get("/{id}/receipt/qr", controllers.TransactionReceiptQR(deps.Settlement, deps.Receipts, logg))
		})
	})

	return r
}
