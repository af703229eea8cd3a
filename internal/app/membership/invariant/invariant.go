// internal/app/membership/invariant/invariant.go
package invariant

import (
	"fmt"

	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind identifies one class of consistency rule a group can violate.
type Kind string

const (
	LeaderNotMember     Kind = "leader_not_member"      // leader id missing from member list
	OfficerNotMember    Kind = "officer_not_member"     // officer id missing from member list
	LeaderIsOfficer     Kind = "leader_is_officer"      // leader id present in officer set
	DuplicateMember     Kind = "duplicate_member"       // member list contains an id twice
	MemberRecordMissing Kind = "member_record_missing"  // no user record for a member id
	BackRefMismatch     Kind = "backref_mismatch"       // user's group field does not point here
	RoleMismatch        Kind = "role_mismatch"          // user's role field disagrees with tier
	ParentLinkBroken    Kind = "parent_link_broken"     // clan <-> federation references disagree
	EmptyGroup          Kind = "empty_group"            // active group persisted with no members
)

// Violation is one failed check with enough context to log or assert on.
type Violation struct {
	Kind    Kind
	Subject primitive.ObjectID // the user/clan id involved, if any
	Detail  string
}

func (v Violation) String() string {
	if v.Subject.IsZero() {
		return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
	}
	return fmt.Sprintf("%s (%s): %s", v.Kind, v.Subject.Hex(), v.Detail)
}

// Snapshot is the read-only state a validation runs against. The checker
// never touches live storage; callers assemble whatever referenced state
// they have. Users may be nil to skip back-reference checks (for callers
// that only need the group-local rules); when non-nil it must contain a
// record for every member. Parent and Clans likewise gate the
// cross-linkage checks.
type Snapshot struct {
	Group  models.Group
	Users  map[primitive.ObjectID]models.User
	Parent *models.Group                         // clan's federation, when linked
	Clans  map[primitive.ObjectID]models.Group   // federation's child clans
}

// Validate checks the snapshot against every membership rule and returns
// the violations found. An empty result means the group is consistent.
func Validate(s Snapshot) []Violation {
	var out []Violation
	g := &s.Group

	seen := make(map[primitive.ObjectID]bool, len(g.MemberIDs))
	for _, m := range g.MemberIDs {
		if seen[m] {
			out = append(out, Violation{Kind: DuplicateMember, Subject: m, Detail: "member listed more than once"})
		}
		seen[m] = true
	}

	if g.LeaderID != nil && !seen[*g.LeaderID] {
		out = append(out, Violation{Kind: LeaderNotMember, Subject: *g.LeaderID, Detail: "leader absent from member list"})
	}
	for _, o := range g.OfficerIDs {
		if !seen[o] {
			out = append(out, Violation{Kind: OfficerNotMember, Subject: o, Detail: "officer absent from member list"})
		}
		if g.LeaderID != nil && o == *g.LeaderID {
			out = append(out, Violation{Kind: LeaderIsOfficer, Subject: o, Detail: "leader present in officer set"})
		}
	}

	// An empty group may only exist while forming (admin bootstrap). Once
	// active it must be dissolved, never stored memberless.
	if len(g.MemberIDs) == 0 {
		if g.LeaderID != nil {
			out = append(out, Violation{Kind: LeaderNotMember, Subject: *g.LeaderID, Detail: "leader set on empty group"})
		}
		if g.Status != models.StatusForming {
			out = append(out, Violation{Kind: EmptyGroup, Detail: "active group has no members"})
		}
	}

	if s.Users != nil {
		out = append(out, validateBackRefs(g, s.Users)...)
	}
	out = append(out, validateLinkage(g, s.Parent, s.Clans)...)
	return out
}

func validateBackRefs(g *models.Group, users map[primitive.ObjectID]models.User) []Violation {
	var out []Violation
	for _, m := range g.MemberIDs {
		u, ok := users[m]
		if !ok {
			out = append(out, Violation{Kind: MemberRecordMissing, Subject: m, Detail: "no user record for member"})
			continue
		}
		id, role := u.Membership(g.Kind)
		if id == nil || *id != g.ID {
			out = append(out, Violation{Kind: BackRefMismatch, Subject: m, Detail: "user does not reference this group"})
			continue
		}
		if want := g.RoleOf(m); role != want {
			out = append(out, Violation{
				Kind: RoleMismatch, Subject: m,
				Detail: fmt.Sprintf("user role %q, group says %q", role, want),
			})
		}
	}
	return out
}

func validateLinkage(g *models.Group, parent *models.Group, clans map[primitive.ObjectID]models.Group) []Violation {
	var out []Violation
	if g.Kind == models.KindClan && g.ParentFederationID != nil && parent != nil {
		if parent.ID != *g.ParentFederationID || !parent.HasClan(g.ID) {
			out = append(out, Violation{Kind: ParentLinkBroken, Subject: *g.ParentFederationID, Detail: "federation does not list this clan"})
		}
	}
	if g.Kind == models.KindFederation && clans != nil {
		for _, cid := range g.ClanIDs {
			c, ok := clans[cid]
			if !ok {
				out = append(out, Violation{Kind: ParentLinkBroken, Subject: cid, Detail: "listed clan not found"})
				continue
			}
			if c.ParentFederationID == nil || *c.ParentFederationID != g.ID {
				out = append(out, Violation{Kind: ParentLinkBroken, Subject: cid, Detail: "clan does not reference this federation"})
			}
		}
	}
	return out
}
