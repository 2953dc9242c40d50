package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gsatlink/pos-backend/api/controllers"
	"github.com/gsatlink/pos-backend/api/middleware"
	basketsvc "github.com/gsatlink/pos-backend/internal/basket"
	catalogsvc "github.com/gsatlink/pos-backend/internal/catalog"
	gsatsvc "github.com/gsatlink/pos-backend/internal/gsat"
	"github.com/gsatlink/pos-backend/internal/scan"
	"github.com/gsatlink/pos-backend/pkg/config"
	"github.com/gsatlink/pos-backend/pkg/logger"
	pkgredis "github.com/gsatlink/pos-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	Checks     map[string]controllers.HealthCheck
	IdempStore pkgredis.IdempotencyStore
	Registry   *prometheus.Registry
	CatalogSvc catalogsvc.Service
	BasketSvc  basketsvc.Service
	SalesRepo  basketsvc.Repository
	GSATSvc    gsatsvc.Service
	ScanStream *scan.Stream
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Checks))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.IdempStore, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(deps.CatalogSvc, logg))
			r.Post("/", controllers.CatalogCreate(deps.CatalogSvc, logg))
			r.Post("/refresh", controllers.CatalogRefresh(deps.CatalogSvc, logg))
			r.Put("/{itemID}", controllers.CatalogUpdate(deps.CatalogSvc, logg))
			r.Delete("/{itemID}", controllers.CatalogDelete(deps.CatalogSvc, logg))
		})

		r.Route("/baskets", func(r chi.Router) {
			r.Post("/", controllers.BasketOpen(deps.BasketSvc, logg))
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", controllers.BasketGet(deps.BasketSvc, logg))
				r.Post("/scan", controllers.BasketScan(deps.BasketSvc, logg))
				r.Post("/lines", controllers.BasketAddItem(deps.BasketSvc, logg))
				r.Put("/lines/{index}", controllers.BasketSetQuantity(deps.BasketSvc, logg))
				r.Delete("/lines/{index}", controllers.BasketRemoveLine(deps.BasketSvc, logg))
				r.Post("/clear", controllers.BasketClear(deps.BasketSvc, logg))
				r.Post("/load/{recordID}", controllers.BasketLoadRecord(deps.BasketSvc, logg))
				r.Post("/save", controllers.BasketSave(deps.BasketSvc, logg))
			})
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(deps.SalesRepo, logg))
			r.Get("/{recordID}", controllers.SalesDetail(deps.SalesRepo, logg))
		})

		if deps.ScanStream != nil {
			r.Post("/scan/ingest", controllers.ScanIngest(deps.ScanStream, logg))
		}

		r.Route("/gsat", func(r chi.Router) {
			r.Get("/export", controllers.GSATExport(deps.GSATSvc, logg))
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.GSATCustomerList(deps.GSATSvc, logg))
				r.Post("/", controllers.GSATCustomerCreate(deps.GSATSvc, logg))
				r.Get("/search", controllers.GSATCustomerSearch(deps.GSATSvc, logg))
				r.Route("/{customerID}", func(r chi.Router) {
					r.Get("/", controllers.GSATCustomerDetail(deps.GSATSvc, logg))
					r.Put("/", controllers.GSATCustomerUpdate(deps.GSATSvc, logg))
					r.Delete("/", controllers.GSATCustomerDelete(deps.GSATSvc, logg))
					r.Get("/activations", controllers.GSATActivationList(deps.GSATSvc, logg))
					r.Post("/activations", controllers.GSATActivationCreate(deps.GSATSvc, logg))
				})
			})
			r.Delete("/activations/{activationID}", controllers.GSATActivationDelete(deps.GSATSvc, logg))
		})
	})

	return r
}
