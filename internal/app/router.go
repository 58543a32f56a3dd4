package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/warelog/warelog/internal/catalog/partners"
	"github.com/warelog/warelog/internal/catalog/products"
	"github.com/warelog/warelog/internal/catalog/warehouses"
	"github.com/warelog/warelog/internal/dashboard"
	"github.com/warelog/warelog/internal/stock"
	"github.com/warelog/warelog/internal/transactions"
	"github.com/warelog/warelog/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	ProductsHandler     *products.Handler
	PartnersHandler     *partners.Handler
	WarehousesHandler   *warehouses.Handler
	StockHandler        *stock.Handler
	TransactionsHandler *transactions.Handler
	DashboardHandler    *dashboard.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/catalog/products", params.ProductsHandler.MountRoutes)
		api.Route("/catalog/partners", params.PartnersHandler.MountRoutes)
		api.Route("/catalog/warehouses", params.WarehousesHandler.MountRoutes)
		api.Route("/stock", params.StockHandler.MountRoutes)
		api.Route("/transactions", params.TransactionsHandler.MountRoutes)
		api.Route("/dashboard", params.DashboardHandler.MountRoutes)
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
