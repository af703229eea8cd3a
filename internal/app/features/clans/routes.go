// internal/app/features/clans/routes.go
package clans

import (
	"github.com/clanhaven/clanhaven/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the clan endpoints, mounted under /clans.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{clanID}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/", h.ServeCreate)
		pr.Post("/{clanID}/join", h.ServeJoin)
		pr.Post("/{clanID}/leave", h.ServeLeave)
		pr.Post("/{clanID}/kick", h.ServeKick)
		pr.Post("/{clanID}/promote", h.ServePromote)
		pr.Post("/{clanID}/demote", h.ServeDemote)
		pr.Post("/{clanID}/transfer", h.ServeTransfer)
		pr.Post("/{clanID}/dissolve", h.ServeDissolve)
	})

	return r
}
