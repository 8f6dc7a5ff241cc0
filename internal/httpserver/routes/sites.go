package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mgaillard/cooloff/internal/httpserver/deps"
	"github.com/mgaillard/cooloff/internal/httpserver/handlers"
)

func init() { Register(registerSites) }

func registerSites(r chi.Router, d deps.Deps) {
	r.Get("/api/sites", handlers.ListSites(d))
	r.Post("/api/sites", handlers.UpsertSite(d))
	r.Delete("/api/sites/{id}", handlers.DeleteSite(d))

	r.Post("/api/sites/{id}/start", handlers.StartCooldown(d))
	r.Post("/api/sites/{id}/reset", handlers.ResetCooldown(d))
	r.Post("/api/sites/{id}/clear", handlers.ClearCooldown(d))
}
