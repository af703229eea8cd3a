// internal/app/membership/cascade/cascade.go
//
// The cascade propagator computes, for one logical group mutation, the
// full ordered batch of dependent writes needed to keep group documents,
// user back-references, and clan/federation linkage consistent. It mutates
// nothing itself: every function takes loaded snapshots by value and
// returns a Batch for the caller to persist under the group lock.
package cascade

import (
	"github.com/clanhaven/clanhaven/internal/app/membership/succession"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupWrite is one group document save with its expected prior version.
type GroupWrite struct {
	Group    models.Group
	Expected int64
}

// GroupDelete removes a group document, version-checked like a save.
type GroupDelete struct {
	ID       primitive.ObjectID
	Expected int64
}

// UserWrite is one user document save with its expected prior version.
type UserWrite struct {
	User     models.User
	Expected int64
}

// Batch is the ordered write set for one logical mutation. Persist order
// is Saves (primary group first), then Users, then Deletes.
type Batch struct {
	Saves   []GroupWrite
	Users   []UserWrite
	Deletes []GroupDelete
}

// Touched returns every entity id whose cached representation is stale
// once the batch lands.
func (b *Batch) Touched() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(b.Saves)+len(b.Users)+len(b.Deletes))
	for _, s := range b.Saves {
		ids = append(ids, s.Group.ID)
	}
	for _, u := range b.Users {
		ids = append(ids, u.User.ID)
	}
	for _, d := range b.Deletes {
		ids = append(ids, d.ID)
	}
	return ids
}

// Join adds u to g. If the group is still forming (no leader), the first
// joiner becomes leader and the group goes active.
func Join(g models.Group, u models.User) *Batch {
	gv, uv := g.Version, u.Version

	role := models.RoleMember
	g.MemberIDs = withID(g.MemberIDs, u.ID)
	if g.LeaderID == nil {
		id := u.ID
		g.LeaderID = &id
		g.Status = models.StatusActive
		role = models.RoleLeader
	}
	gid := g.ID
	u.SetMembership(g.Kind, &gid, role)

	return &Batch{
		Saves: []GroupWrite{{Group: g, Expected: gv}},
		Users: []UserWrite{{User: u, Expected: uv}},
	}
}

// MergeJoin extends a batch that removes userID from another group of the
// same kind so that the user lands in g instead of groupless: g gains the
// member (and leadership, if g is still forming) and the user's
// back-reference already in the batch is rewritten to point at g.
func MergeJoin(b *Batch, g models.Group, userID primitive.ObjectID) {
	gv := g.Version

	role := models.RoleMember
	g.MemberIDs = withID(g.MemberIDs, userID)
	if g.LeaderID == nil {
		id := userID
		g.LeaderID = &id
		g.Status = models.StatusActive
		role = models.RoleLeader
	}
	gid := g.ID
	for i := range b.Users {
		if b.Users[i].User.ID == userID {
			b.Users[i].User.SetMembership(g.Kind, &gid, role)
		}
	}
	b.Saves = append(b.Saves, GroupWrite{Group: g, Expected: gv})
}

// Remove takes target out of g for a NoOp or Promote succession decision.
// Dissolve decisions go through Dissolve instead. successor must be the
// loaded user record for dec.Successor when dec is Promote.
func Remove(g models.Group, target models.User, dec succession.Decision, successor *models.User) *Batch {
	gv, tv := g.Version, target.Version

	g.MemberIDs = without(g.MemberIDs, target.ID)
	g.OfficerIDs = without(g.OfficerIDs, target.ID)
	target.SetMembership(g.Kind, nil, "")

	b := &Batch{Users: []UserWrite{{User: target, Expected: tv}}}

	if dec.Outcome == succession.Promote {
		id := dec.Successor
		g.LeaderID = &id
		g.OfficerIDs = without(g.OfficerIDs, id)

		succ := *successor
		sv := succ.Version
		gid := g.ID
		succ.SetMembership(g.Kind, &gid, models.RoleLeader)
		b.Users = append(b.Users, UserWrite{User: succ, Expected: sv})
	}

	b.Saves = []GroupWrite{{Group: g, Expected: gv}}
	return b
}

// Promote raises u to officer.
func Promote(g models.Group, u models.User) *Batch {
	gv, uv := g.Version, u.Version
	g.OfficerIDs = withID(g.OfficerIDs, u.ID)
	gid := g.ID
	u.SetMembership(g.Kind, &gid, models.RoleOfficer)
	return &Batch{
		Saves: []GroupWrite{{Group: g, Expected: gv}},
		Users: []UserWrite{{User: u, Expected: uv}},
	}
}

// Demote lowers officer u back to plain member.
func Demote(g models.Group, u models.User) *Batch {
	gv, uv := g.Version, u.Version
	g.OfficerIDs = without(g.OfficerIDs, u.ID)
	gid := g.ID
	u.SetMembership(g.Kind, &gid, models.RoleMember)
	return &Batch{
		Saves: []GroupWrite{{Group: g, Expected: gv}},
		Users: []UserWrite{{User: u, Expected: uv}},
	}
}

// Transfer hands leadership of g to target. The demoted leader becomes a
// plain member; target leaves the officer set if present. oldLeader is nil
// when the group had no leader (forming groups).
func Transfer(g models.Group, oldLeader *models.User, target models.User) *Batch {
	gv, tv := g.Version, target.Version

	id := target.ID
	g.LeaderID = &id
	g.OfficerIDs = without(g.OfficerIDs, target.ID)
	g.Status = models.StatusActive
	gid := g.ID

	b := &Batch{Saves: []GroupWrite{{Group: g, Expected: gv}}}

	if oldLeader != nil && oldLeader.ID != target.ID {
		old := *oldLeader
		ov := old.Version
		old.SetMembership(g.Kind, &gid, models.RoleMember)
		b.Users = append(b.Users, UserWrite{User: old, Expected: ov})
	}

	target.SetMembership(g.Kind, &gid, models.RoleLeader)
	b.Users = append(b.Users, UserWrite{User: target, Expected: tv})
	return b
}

// Dissolve destroys g. Every remaining member's back-reference is cleared.
// For a clan inside a federation, the federation's clan list drops the
// clan. For a federation, every child clan is detached; the clans' own
// membership is untouched, only the federation linkage is severed.
func Dissolve(g models.Group, members []models.User, parent *models.Group, clans []models.Group) *Batch {
	b := &Batch{
		Deletes: []GroupDelete{{ID: g.ID, Expected: g.Version}},
	}

	for _, m := range members {
		mv := m.Version
		m.SetMembership(g.Kind, nil, "")
		b.Users = append(b.Users, UserWrite{User: m, Expected: mv})
	}

	if parent != nil {
		p := *parent
		pv := p.Version
		p.ClanIDs = without(p.ClanIDs, g.ID)
		b.Saves = append(b.Saves, GroupWrite{Group: p, Expected: pv})
	}

	for _, c := range clans {
		cv := c.Version
		c.ParentFederationID = nil
		b.Saves = append(b.Saves, GroupWrite{Group: c, Expected: cv})
	}

	return b
}

// Attach links clan into fed (both sides of the back-reference).
func Attach(fed, clan models.Group) *Batch {
	fv, cv := fed.Version, clan.Version
	fed.ClanIDs = withID(fed.ClanIDs, clan.ID)
	fid := fed.ID
	clan.ParentFederationID = &fid
	return &Batch{Saves: []GroupWrite{
		{Group: fed, Expected: fv},
		{Group: clan, Expected: cv},
	}}
}

// Detach severs the clan/federation link on both sides.
func Detach(fed, clan models.Group) *Batch {
	fv, cv := fed.Version, clan.Version
	fed.ClanIDs = without(fed.ClanIDs, clan.ID)
	clan.ParentFederationID = nil
	return &Batch{Saves: []GroupWrite{
		{Group: fed, Expected: fv},
		{Group: clan, Expected: cv},
	}}
}

// without returns a copy of list with every occurrence of id removed.
func without(list []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// withID returns a copy of list with id appended.
func withID(list []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(list)+1)
	out = append(out, list...)
	return append(out, id)
}
