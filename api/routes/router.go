package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tableloop/menusync-backend/api/controllers"
	"github.com/tableloop/menusync-backend/api/middleware"
	catalog "github.com/tableloop/menusync-backend/internal/catalogs"
	"github.com/tableloop/menusync-backend/internal/dashboard"
	menu "github.com/tableloop/menusync-backend/internal/menus"
	override "github.com/tableloop/menusync-backend/internal/overrides"
	"github.com/tableloop/menusync-backend/internal/sync"
	synclink "github.com/tableloop/menusync-backend/internal/synclinks"
	version "github.com/tableloop/menusync-backend/internal/versions"
	"github.com/tableloop/menusync-backend/pkg/config"
	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/logger"
	"github.com/tableloop/menusync-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsRegistry *prometheus.Registry,
	catalogService catalog.Service,
	versionService version.Service,
	linkService synclink.Service,
	overrideService override.Service,
	syncService sync.Service,
	menuService menu.Service,
	dashboardService dashboard.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Get("/public/locations/{slug}/menu", controllers.PublicMenu(menuService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/catalogs", func(r chi.Router) {
			r.Post("/", controllers.CatalogCreate(catalogService, logg))
			r.Get("/", controllers.CatalogList(catalogService, logg))

			r.Route("/{catalogId}", func(r chi.Router) {
				r.Get("/", controllers.CatalogGet(catalogService, logg))

				r.Post("/categories", controllers.CategoryAdd(catalogService, logg))
				r.Patch("/categories/{categoryId}", controllers.CategoryUpdate(catalogService, logg))
				r.Delete("/categories/{categoryId}", controllers.CategoryRemove(catalogService, logg))

				r.Post("/items", controllers.ItemAdd(catalogService, logg))
				r.Patch("/items/{itemId}", controllers.ItemUpdate(catalogService, logg))
				r.Delete("/items/{itemId}", controllers.ItemRemove(catalogService, logg))

				r.Post("/offers", controllers.OfferCreate(catalogService, logg))
				r.Patch("/offers/{offerId}", controllers.OfferUpdate(catalogService, logg))
				r.Delete("/offers/{offerId}", controllers.OfferDelete(catalogService, logg))

				r.Route("/versions", func(r chi.Router) {
					r.Get("/", controllers.VersionList(versionService, logg))
					r.Get("/diff", controllers.VersionDiff(versionService, logg))
					r.Get("/{number}", controllers.VersionGet(versionService, logg))
				})

				r.Post("/sync/bulk", controllers.SyncBulk(syncService, logg))
			})
		})

		r.Route("/locations/{locationId}/catalogs/{catalogId}", func(r chi.Router) {
			r.Post("/link", controllers.LinkInitialize(linkService, logg))

			r.Route("/sync", func(r chi.Router) {
				r.Get("/", controllers.LinkStatus(linkService, logg))
				r.Post("/", controllers.SyncBranch(linkService, syncService, logg))
				r.Get("/preview", controllers.LinkPreview(linkService, logg))
				r.Put("/mode", controllers.LinkSetMode(linkService, logg))
				r.Get("/history", controllers.SyncHistory(linkService, syncService, logg))
			})

			r.Route("/overrides", func(r chi.Router) {
				r.Get("/", controllers.OverrideList(linkService, overrideService, logg))
				r.Put("/{itemId}", controllers.OverrideSet(linkService, overrideService, logg))
				r.Delete("/{itemId}", controllers.OverrideRemove(linkService, overrideService, logg))
			})
		})

		r.Get("/franchises/{franchiseId}/dashboard", controllers.FranchiseDashboard(dashboardService, logg))
	})

	return r
}
