package httpapi

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the full chi router: browse/ingest endpoints are
// thin handlers that call straight into the core packages, with no
// business logic of their own.
func NewRouter(deps *Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", deps.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/disks", deps.ListDisks)

		r.Route("/storage-locations", func(r chi.Router) {
			r.Get("/", deps.ListStorageLocations)
			r.Get("/{storageID}/browse", deps.Browse)
			r.Get("/{storageID}/browse/*", deps.Browse)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(deps.AuthSecret))
				r.Post("/", deps.CreateStorageLocation)
				r.Post("/{storageID}/default", deps.SetDefaultStorageLocation)
				r.Post("/{storageID}/ingest", deps.Ingest)
			})
		})

		r.Route("/clients/{clientID}/bindings/{storageID}", func(r chi.Router) {
			r.Use(RequireAuth(deps.AuthSecret))
			r.Put("/", deps.UpsertClientBinding)
			r.Delete("/", deps.DeleteClientBinding)
		})
	})

	return r
}
