// internal/app/features/users/routes.go
package users

import (
	"github.com/clanhaven/clanhaven/internal/app/system/auth"
	"github.com/clanhaven/clanhaven/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the user endpoints, mounted under /users.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ServeRegister)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/me", h.ServeMe)
		pr.Get("/{userID}", h.ServeView)

		pr.Group(func(ar chi.Router) {
			ar.Use(auth.RequireRole(authz.RoleAdmin))
			ar.Post("/{userID}/purge", h.ServePurge)
		})
	})

	return r
}
