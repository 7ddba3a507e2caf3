package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"splittab/internal/auth"
	"splittab/internal/metrics"
	"splittab/internal/middleware"
)

// NewRouter assembles the full HTTP surface: ambient middleware, the metrics
// and health endpoints, and the versioned API tree.
func NewRouter(h *Handler, tokens *auth.Tokens, m *metrics.Metrics, corsOrigins []string) http.Handler {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Instrument(m))
	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(v chi.Router) {
		v.Route("/auth", func(a chi.Router) {
			a.Post("/register", h.Register)
			a.Post("/login", h.Login)

			a.Group(func(protected chi.Router) {
				protected.Use(middleware.RequireAuth(tokens))
				protected.Get("/me", h.Me)
			})
		})

		v.Post("/split/preview", h.Preview)

		v.Route("/receipts", func(rc chi.Router) {
			rc.Use(middleware.RequireAuth(tokens))
			rc.Get("/", h.ListReceipts)
			rc.Post("/", h.CreateReceipt)

			rc.Route("/{receiptID}", func(one chi.Router) {
				one.Get("/", h.GetReceipt)
				one.Patch("/", h.UpdateReceipt)
				one.Delete("/", h.DeleteReceipt)
				one.Get("/totals", h.Totals)
				one.Get("/breakdown", h.Breakdown)

				one.Post("/items", h.AddItems)
				one.Route("/items/{itemID}", func(item chi.Router) {
					item.Patch("/", h.UpdateItem)
					item.Delete("/", h.DeleteItem)
					item.Put("/shares", h.SetShares)
				})

				one.Post("/people", h.AddPerson)
				one.Patch("/people/{personID}", h.UpdatePerson)
				one.Delete("/people/{personID}", h.DeletePerson)
			})
		})
	})

	return r
}
