// internal/app/features/clans/types.go
package clans

// createRequest is the body for POST /clans. LeaderID is admin-only: empty
// means the caller leads the new clan themselves, or, for admins, that the
// clan starts forming with no members.
type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LeaderID    string `json:"leader_id,omitempty"`
	Forming     bool   `json:"forming,omitempty"`
}

// memberRequest names the target user of a membership mutation.
type memberRequest struct {
	UserID string `json:"user_id"`
}

// joinRequest is the body for POST /clans/{clanID}/join. UserID is
// optional; it defaults to the caller and only admins may set it to someone
// else. AdminOverride moves a user who already belongs to another clan,
// removing them from it in the same mutation.
type joinRequest struct {
	UserID        string `json:"user_id,omitempty"`
	AdminOverride bool   `json:"admin_override,omitempty"`
}
