package testutil

import (
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminSession attaches an admin session user to the request, as the
// LoadSessionUser middleware would.
func AdminSession(r *http.Request) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.example",
		Role:  "admin",
	})
}

// UserSession attaches a plain user session for the given user id.
func UserSession(r *http.Request, id primitive.ObjectID) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		ID:    id.Hex(),
		Name:  "Test User",
		Email: "user@test.example",
		Role:  "user",
	})
}
