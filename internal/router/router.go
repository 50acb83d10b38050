package router

import (
	"net/http"

	"autohub-rest-api/internal/handler"
	"autohub-rest-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	CatalogHandler   *handler.CatalogHandler
	OrderHandler     *handler.OrderHandler
	FavoritesHandler *handler.FavoritesHandler
	AdminHandler     *handler.AdminHandler
	AdminMiddleware  func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Admin-Token", "X-Login-Key", "X-Client-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Generated-At", "X-Client-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Storefront catalog endpoints
		if cfg.CatalogHandler != nil {
			r.Route("/cars", func(r chi.Router) {
				r.Get("/", cfg.CatalogHandler.List)
				r.Get("/popular", cfg.CatalogHandler.Popular)
				r.Get("/stats", cfg.CatalogHandler.Stats)
				r.Get("/{id}", cfg.CatalogHandler.Get)
				r.Post("/{id}/view", cfg.CatalogHandler.View)
			})
		}

		// Storefront order submission
		if cfg.OrderHandler != nil {
			r.Post("/orders", cfg.OrderHandler.Create)
		}

		// Per-visitor favorites and compare sets
		if cfg.FavoritesHandler != nil {
			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", cfg.FavoritesHandler.ListFavorites)
				r.Post("/{car_id}", cfg.FavoritesHandler.ToggleFavorite)
			})
			r.Route("/compare", func(r chi.Router) {
				r.Get("/", cfg.FavoritesHandler.ListCompare)
				r.Post("/{car_id}", cfg.FavoritesHandler.ToggleCompare)
			})
		}

		// Public site settings (contacts, socials)
		if cfg.AdminHandler != nil {
			r.Get("/settings/{group}", cfg.AdminHandler.GetSettings)
			r.Post("/admin/login", cfg.AdminHandler.VerifyLogin)
		}

		// ADMIN routes (back-office, auth middleware applies)
		r.Group(func(r chi.Router) {
			if cfg.AdminMiddleware != nil {
				r.Use(cfg.AdminMiddleware)
			}

			r.Route("/admin", func(r chi.Router) {
				if cfg.AdminHandler != nil {
					r.Post("/logout", cfg.AdminHandler.Logout)
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Put("/settings/{group}", cfg.AdminHandler.UpdateSettings)
					r.Post("/import", cfg.AdminHandler.Import)
					r.Post("/images", cfg.AdminHandler.UploadImage)
					r.Post("/cars/{id}/images", cfg.AdminHandler.AssignImage)
				}

				if cfg.CatalogHandler != nil {
					r.Post("/cars", cfg.CatalogHandler.Create)
					r.Put("/cars/{id}", cfg.CatalogHandler.Update)
					r.Delete("/cars/{id}", cfg.CatalogHandler.Delete)
					r.Post("/catalog/refresh", cfg.CatalogHandler.Refresh)
				}

				if cfg.OrderHandler != nil {
					r.Route("/orders", func(r chi.Router) {
						r.Get("/", cfg.OrderHandler.List)
						r.Get("/export", cfg.OrderHandler.ExportCSV)
						r.Post("/reconcile", cfg.OrderHandler.Reconcile)
						r.Put("/{id}/status", cfg.OrderHandler.SetStatus)
						r.Delete("/{id}", cfg.OrderHandler.Delete)
					})
				}
			})
		})
	})

	return r
}
