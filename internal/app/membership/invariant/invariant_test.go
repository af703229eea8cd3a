package invariant_test

import (
	"testing"

	"github.com/clanhaven/clanhaven/internal/app/membership/invariant"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func user(id, groupID primitive.ObjectID, kind models.GroupKind, role models.Role) models.User {
	u := models.User{ID: id, Status: models.StatusActive}
	gid := groupID
	u.SetMembership(kind, &gid, role)
	return u
}

func consistentClan() (models.Group, map[primitive.ObjectID]models.User) {
	leader := primitive.NewObjectID()
	officer := primitive.NewObjectID()
	member := primitive.NewObjectID()

	lid := leader
	g := models.Group{
		ID:         primitive.NewObjectID(),
		Kind:       models.KindClan,
		LeaderID:   &lid,
		OfficerIDs: []primitive.ObjectID{officer},
		MemberIDs:  []primitive.ObjectID{leader, officer, member},
		Status:     models.StatusActive,
	}
	users := map[primitive.ObjectID]models.User{
		leader:  user(leader, g.ID, models.KindClan, models.RoleLeader),
		officer: user(officer, g.ID, models.KindClan, models.RoleOfficer),
		member:  user(member, g.ID, models.KindClan, models.RoleMember),
	}
	return g, users
}

func kinds(vs []invariant.Violation) map[invariant.Kind]int {
	out := make(map[invariant.Kind]int)
	for _, v := range vs {
		out[v.Kind]++
	}
	return out
}

func TestValidate_ConsistentGroup(t *testing.T) {
	g, users := consistentClan()
	vs := invariant.Validate(invariant.Snapshot{Group: g, Users: users})
	if len(vs) != 0 {
		t.Fatalf("expected no violations, got %v", vs)
	}
}

func TestValidate_GroupLocalViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *models.Group)
		want   invariant.Kind
	}{
		{
			name: "leader absent from member list",
			mutate: func(g *models.Group) {
				id := primitive.NewObjectID()
				g.LeaderID = &id
			},
			want: invariant.LeaderNotMember,
		},
		{
			name: "officer absent from member list",
			mutate: func(g *models.Group) {
				g.OfficerIDs = append(g.OfficerIDs, primitive.NewObjectID())
			},
			want: invariant.OfficerNotMember,
		},
		{
			name: "leader inside officer set",
			mutate: func(g *models.Group) {
				g.OfficerIDs = append(g.OfficerIDs, *g.LeaderID)
			},
			want: invariant.LeaderIsOfficer,
		},
		{
			name: "duplicate member entry",
			mutate: func(g *models.Group) {
				g.MemberIDs = append(g.MemberIDs, g.MemberIDs[1])
			},
			want: invariant.DuplicateMember,
		},
		{
			name: "active group with no members",
			mutate: func(g *models.Group) {
				g.LeaderID = nil
				g.OfficerIDs = nil
				g.MemberIDs = nil
			},
			want: invariant.EmptyGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := consistentClan()
			tt.mutate(&g)
			vs := invariant.Validate(invariant.Snapshot{Group: g})
			if kinds(vs)[tt.want] == 0 {
				t.Fatalf("expected %s violation, got %v", tt.want, vs)
			}
		})
	}
}

func TestValidate_FormingGroupMayBeEmpty(t *testing.T) {
	g := models.Group{
		ID:     primitive.NewObjectID(),
		Kind:   models.KindClan,
		Status: models.StatusForming,
	}
	if vs := invariant.Validate(invariant.Snapshot{Group: g}); len(vs) != 0 {
		t.Fatalf("forming empty group should be valid, got %v", vs)
	}
}

func TestValidate_BackRefViolations(t *testing.T) {
	t.Run("missing user record", func(t *testing.T) {
		g, users := consistentClan()
		delete(users, g.MemberIDs[2])
		vs := invariant.Validate(invariant.Snapshot{Group: g, Users: users})
		if kinds(vs)[invariant.MemberRecordMissing] == 0 {
			t.Fatalf("expected member_record_missing, got %v", vs)
		}
	})

	t.Run("user points at another group", func(t *testing.T) {
		g, users := consistentClan()
		id := g.MemberIDs[2]
		users[id] = user(id, primitive.NewObjectID(), models.KindClan, models.RoleMember)
		vs := invariant.Validate(invariant.Snapshot{Group: g, Users: users})
		if kinds(vs)[invariant.BackRefMismatch] == 0 {
			t.Fatalf("expected backref_mismatch, got %v", vs)
		}
	})

	t.Run("user role disagrees with tier", func(t *testing.T) {
		g, users := consistentClan()
		id := g.OfficerIDs[0]
		users[id] = user(id, g.ID, models.KindClan, models.RoleMember)
		vs := invariant.Validate(invariant.Snapshot{Group: g, Users: users})
		if kinds(vs)[invariant.RoleMismatch] == 0 {
			t.Fatalf("expected role_mismatch, got %v", vs)
		}
	})
}

func TestValidate_Linkage(t *testing.T) {
	fedID := primitive.NewObjectID()

	t.Run("clan linked and listed", func(t *testing.T) {
		g, _ := consistentClan()
		fid := fedID
		g.ParentFederationID = &fid
		parent := models.Group{ID: fedID, Kind: models.KindFederation, ClanIDs: []primitive.ObjectID{g.ID}, Status: models.StatusActive, MemberIDs: []primitive.ObjectID{primitive.NewObjectID()}}
		// Parent member list is not this snapshot's concern.
		parent.LeaderID = &parent.MemberIDs[0]
		if vs := invariant.Validate(invariant.Snapshot{Group: g, Parent: &parent}); len(vs) != 0 {
			t.Fatalf("expected clean linkage, got %v", vs)
		}
	})

	t.Run("federation does not list clan", func(t *testing.T) {
		g, _ := consistentClan()
		fid := fedID
		g.ParentFederationID = &fid
		parent := models.Group{ID: fedID, Kind: models.KindFederation, Status: models.StatusForming}
		vs := invariant.Validate(invariant.Snapshot{Group: g, Parent: &parent})
		if kinds(vs)[invariant.ParentLinkBroken] == 0 {
			t.Fatalf("expected parent_link_broken, got %v", vs)
		}
	})

	t.Run("listed clan does not point back", func(t *testing.T) {
		clan, _ := consistentClan()
		fed, users := consistentClan()
		fed.Kind = models.KindFederation
		for id, u := range users {
			cid := fed.ID
			u.ClanID = nil
			u.ClanRole = ""
			u.FederationID = &cid
			u.FederationRole = fed.RoleOf(id)
			users[id] = u
		}
		fed.ClanIDs = []primitive.ObjectID{clan.ID}
		vs := invariant.Validate(invariant.Snapshot{
			Group: fed,
			Users: users,
			Clans: map[primitive.ObjectID]models.Group{clan.ID: clan},
		})
		if kinds(vs)[invariant.ParentLinkBroken] == 0 {
			t.Fatalf("expected parent_link_broken, got %v", vs)
		}
	})
}
