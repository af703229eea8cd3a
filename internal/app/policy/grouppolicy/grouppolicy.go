// internal/app/policy/grouppolicy.go
package grouppolicy

import (
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/system/authz"
	"github.com/clanhaven/clanhaven/internal/domain/models"
)

// These checks authorize who may request a mutation. The membership engine
// still validates the mutation itself; a permitted actor can still get a
// domain error back (leader cannot be kicked, group full, and so on).

// CanManage reports whether the request user may run leadership operations
// on the group: promote, demote, transfer, kick. Admins always can; the
// group's leader can.
func CanManage(r *http.Request, g *models.Group) bool {
	if authz.IsAdmin(r) {
		return true
	}
	_, _, uid, ok := authz.UserCtx(r)
	return ok && g.IsLeader(uid)
}

// CanKick reports whether the request user may kick target. Admins and the
// leader may kick anyone the engine allows; officers may kick plain
// members only.
func CanKick(r *http.Request, g *models.Group, target models.User) bool {
	if CanManage(r, g) {
		return true
	}
	_, _, uid, ok := authz.UserCtx(r)
	if !ok || !g.HasOfficer(uid) {
		return false
	}
	return g.RoleOf(target.ID) == models.RoleMember
}

// CanDissolve reports whether the request user may dissolve the group
// administratively.
func CanDissolve(r *http.Request, g *models.Group) bool {
	return CanManage(r, g)
}

// CanLink reports whether the request user may attach or detach a clan to a
// federation. Admins can; so can the federation's leader.
func CanLink(r *http.Request, fed *models.Group) bool {
	if authz.IsAdmin(r) {
		return true
	}
	_, _, uid, ok := authz.UserCtx(r)
	return ok && fed.IsLeader(uid)
}
