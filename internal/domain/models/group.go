// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group status values. A group is "forming" between admin-bootstrap
// creation and the arrival of its first member; only active groups are
// subject to the empty-group invariant.
const (
	StatusForming = "forming"
	StatusActive  = "active"
)

// Group is the shared shape of clans and federations.
//
// NOTE:
//   - MemberIDs is ordered by join time. Leadership succession breaks ties
//     by this order, so the order must be preserved across saves.
//   - OfficerIDs has set semantics and never contains LeaderID.
//   - Version is bumped on every save; writers must pass the version they
//     read (optimistic concurrency).
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Kind        GroupKind          `bson:"kind" json:"kind"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`

	LeaderID   *primitive.ObjectID  `bson:"leader_id,omitempty" json:"leader_id,omitempty"`
	OfficerIDs []primitive.ObjectID `bson:"officer_ids" json:"officer_ids"`
	MemberIDs  []primitive.ObjectID `bson:"member_ids" json:"member_ids"`

	// ParentFederationID is set only on clans that joined a federation.
	ParentFederationID *primitive.ObjectID `bson:"parent_federation_id,omitempty" json:"parent_federation_id,omitempty"`
	// ClanIDs is maintained only on federations (the back-reference to
	// every clan whose ParentFederationID points here).
	ClanIDs []primitive.ObjectID `bson:"clan_ids,omitempty" json:"clan_ids,omitempty"`

	Status  string `bson:"status" json:"status"`
	Version int64  `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether id appears in the member list.
func (g *Group) HasMember(id primitive.ObjectID) bool {
	for _, m := range g.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// HasOfficer reports whether id appears in the officer set.
func (g *Group) HasOfficer(id primitive.ObjectID) bool {
	for _, o := range g.OfficerIDs {
		if o == id {
			return true
		}
	}
	return false
}

// IsLeader reports whether id is the current leader.
func (g *Group) IsLeader(id primitive.ObjectID) bool {
	return g.LeaderID != nil && *g.LeaderID == id
}

// RoleOf returns the tier of id within the group, or "" if not a member.
func (g *Group) RoleOf(id primitive.ObjectID) Role {
	switch {
	case !g.HasMember(id):
		return ""
	case g.IsLeader(id):
		return RoleLeader
	case g.HasOfficer(id):
		return RoleOfficer
	default:
		return RoleMember
	}
}

// HasClan reports whether a federation lists clanID as a member clan.
func (g *Group) HasClan(clanID primitive.ObjectID) bool {
	for _, c := range g.ClanIDs {
		if c == clanID {
			return true
		}
	}
	return false
}
