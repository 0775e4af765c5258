package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmarrero/stockpilot-backend/api/controllers"
	webhookcontrollers "github.com/dmarrero/stockpilot-backend/api/controllers/webhooks"
	"github.com/dmarrero/stockpilot-backend/api/middleware"
	accountsvc "github.com/dmarrero/stockpilot-backend/internal/account"
	"github.com/dmarrero/stockpilot-backend/internal/audit"
	authsvc "github.com/dmarrero/stockpilot-backend/internal/auth"
	inventorysvc "github.com/dmarrero/stockpilot-backend/internal/inventory"
	locationsvc "github.com/dmarrero/stockpilot-backend/internal/locations"
	"github.com/dmarrero/stockpilot-backend/internal/orders"
	productsvc "github.com/dmarrero/stockpilot-backend/internal/products"
	reportsvc "github.com/dmarrero/stockpilot-backend/internal/reports"
	"github.com/dmarrero/stockpilot-backend/internal/transfers"
	"github.com/dmarrero/stockpilot-backend/pkg/auth/session"
	"github.com/dmarrero/stockpilot-backend/pkg/config"
	"github.com/dmarrero/stockpilot-backend/pkg/db"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
	"github.com/dmarrero/stockpilot-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               *db.Client
	Redis            *redis.Client
	SessionManager   session.AccessSessionChecker
	AuthService      authsvc.Service
	ProductService   productsvc.Service
	LocationService  locationsvc.Service
	InventoryService inventorysvc.Service
	ReportService    reportsvc.Service
	AccountService   accountsvc.Service
	OrderRepo        *orders.Repository
	TransferRepo     *transfers.Repository
	AuditRepo        *audit.Repository
	Metrics          *prometheus.Registry
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Post("/sales", webhookcontrollers.SalesWebhook(p.InventoryService, logg))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(p.ProductService, logg))
			r.Post("/", controllers.ProductCreate(p.ProductService, logg))
			r.Get("/{productId}", controllers.ProductGet(p.ProductService, logg))
			r.Put("/{productId}", controllers.ProductUpdate(p.ProductService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(p.ProductService, logg))
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", controllers.LocationList(p.LocationService, logg))
			r.Post("/", controllers.LocationCreate(p.LocationService, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Post("/adjust", controllers.StockAdjust(p.InventoryService, logg))
			r.Post("/transfer", controllers.TransferCreate(p.InventoryService, logg))
		})

		r.Post("/sales", controllers.SaleCreate(p.InventoryService, logg))
		r.Post("/orders/route", controllers.RouteOrder(p.InventoryService, logg))

		r.Get("/orders", controllers.OrderList(p.OrderRepo, logg))
		r.Get("/transfers", controllers.TransferList(p.TransferRepo, logg))
		r.Get("/audit", controllers.AuditList(p.AuditRepo, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", controllers.DashboardReport(p.ReportService, logg))
			r.Get("/inventory.csv", controllers.InventoryReport(p.ReportService, logg))
		})

		r.Delete("/account/data", controllers.AccountDeleteData(p.AccountService, logg))
	})

	return r
}
