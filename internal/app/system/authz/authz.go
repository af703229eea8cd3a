// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/clanhaven/clanhaven/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Platform roles. Group-tier roles (leader/officer/member) are not session
// state; they live on the group documents.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserCtx returns the session user's role (lowercased), name, ObjectID, and
// a found flag. A missing user or malformed id yields ok=false, so callers
// can trust ok=true means a valid authenticated user.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed id in session: fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is a platform admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleAdmin
}

// SameUser reports whether the current request's user is id.
func SameUser(r *http.Request, id primitive.ObjectID) bool {
	_, _, uid, ok := UserCtx(r)
	return ok && uid == id
}
