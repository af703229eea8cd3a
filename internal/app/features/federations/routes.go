// internal/app/features/federations/routes.go
package federations

import (
	"github.com/clanhaven/clanhaven/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the federation endpoints, mounted under
// /federations.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{federationID}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/", h.ServeCreate)
		pr.Post("/{federationID}/join", h.ServeJoin)
		pr.Post("/{federationID}/leave", h.ServeLeave)
		pr.Post("/{federationID}/kick", h.ServeKick)
		pr.Post("/{federationID}/promote", h.ServePromote)
		pr.Post("/{federationID}/demote", h.ServeDemote)
		pr.Post("/{federationID}/transfer", h.ServeTransfer)
		pr.Post("/{federationID}/dissolve", h.ServeDissolve)
		pr.Post("/{federationID}/clans/{clanID}", h.ServeAttachClan)
		pr.Delete("/{federationID}/clans/{clanID}", h.ServeDetachClan)
	})

	return r
}
