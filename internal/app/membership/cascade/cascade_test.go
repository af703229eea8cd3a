package cascade_test

import (
	"testing"

	"github.com/clanhaven/clanhaven/internal/app/membership/cascade"
	"github.com/clanhaven/clanhaven/internal/app/membership/succession"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func clan(leader primitive.ObjectID, officers []primitive.ObjectID, members ...primitive.ObjectID) models.Group {
	lid := leader
	return models.Group{
		ID:         primitive.NewObjectID(),
		Kind:       models.KindClan,
		LeaderID:   &lid,
		OfficerIDs: officers,
		MemberIDs:  members,
		Status:     models.StatusActive,
		Version:    3,
	}
}

func clanUser(id, groupID primitive.ObjectID, role models.Role) models.User {
	u := models.User{ID: id, Version: 2}
	gid := groupID
	u.SetMembership(models.KindClan, &gid, role)
	return u
}

func TestJoin_AddsMemberAndBackRef(t *testing.T) {
	leader := primitive.NewObjectID()
	g := clan(leader, nil, leader)
	joiner := models.User{ID: primitive.NewObjectID(), Version: 7}

	b := cascade.Join(g, joiner)

	if len(b.Saves) != 1 || len(b.Users) != 1 || len(b.Deletes) != 0 {
		t.Fatalf("unexpected batch shape: %+v", b)
	}
	got := b.Saves[0].Group
	if b.Saves[0].Expected != 3 {
		t.Errorf("group expected version = %d, want 3", b.Saves[0].Expected)
	}
	if !got.HasMember(joiner.ID) || got.HasOfficer(joiner.ID) {
		t.Error("joiner should be a plain member")
	}
	// Join order preserved: joiner appended last.
	if got.MemberIDs[len(got.MemberIDs)-1] != joiner.ID {
		t.Error("joiner not appended at the end of the member list")
	}

	u := b.Users[0].User
	if u.ClanID == nil || *u.ClanID != g.ID || u.ClanRole != models.RoleMember {
		t.Errorf("joiner back-reference wrong: %+v", u)
	}
	if b.Users[0].Expected != 7 {
		t.Errorf("user expected version = %d, want 7", b.Users[0].Expected)
	}
}

func TestJoin_FirstMemberOfFormingGroupLeads(t *testing.T) {
	g := models.Group{
		ID:      primitive.NewObjectID(),
		Kind:    models.KindClan,
		Status:  models.StatusForming,
		Version: 1,
	}
	joiner := models.User{ID: primitive.NewObjectID(), Version: 1}

	b := cascade.Join(g, joiner)
	got := b.Saves[0].Group
	if !got.IsLeader(joiner.ID) {
		t.Error("first joiner should become leader")
	}
	if got.Status != models.StatusActive {
		t.Errorf("status = %q, want active", got.Status)
	}
	if b.Users[0].User.ClanRole != models.RoleLeader {
		t.Errorf("joiner role = %q, want leader", b.Users[0].User.ClanRole)
	}
}

func TestRemove_PlainDeparture(t *testing.T) {
	leader := primitive.NewObjectID()
	member := primitive.NewObjectID()
	g := clan(leader, nil, leader, member)
	target := clanUser(member, g.ID, models.RoleMember)

	b := cascade.Remove(g, target, succession.Decision{Outcome: succession.NoOp}, nil)

	got := b.Saves[0].Group
	if got.HasMember(member) {
		t.Error("target still in member list")
	}
	if !got.IsLeader(leader) {
		t.Error("leader must be untouched")
	}
	u := b.Users[0].User
	if u.ClanID != nil || u.ClanRole != "" {
		t.Errorf("target back-reference not cleared: %+v", u)
	}
}

func TestRemove_PromotesSuccessor(t *testing.T) {
	leader := primitive.NewObjectID()
	officer := primitive.NewObjectID()
	g := clan(leader, []primitive.ObjectID{officer}, leader, officer)
	target := clanUser(leader, g.ID, models.RoleLeader)
	succ := clanUser(officer, g.ID, models.RoleOfficer)

	b := cascade.Remove(g, target, succession.Decision{Outcome: succession.Promote, Successor: officer}, &succ)

	got := b.Saves[0].Group
	if !got.IsLeader(officer) {
		t.Error("successor not installed as leader")
	}
	if got.HasOfficer(officer) {
		t.Error("successor must leave the officer set")
	}
	if got.HasMember(leader) {
		t.Error("departing leader still a member")
	}

	var succWrite *models.User
	for i := range b.Users {
		if b.Users[i].User.ID == officer {
			succWrite = &b.Users[i].User
		}
	}
	if succWrite == nil || succWrite.ClanRole != models.RoleLeader {
		t.Fatalf("successor user write missing or wrong role: %+v", succWrite)
	}
}

func TestTransfer_DemotedLeaderBecomesPlainMember(t *testing.T) {
	leader := primitive.NewObjectID()
	officer := primitive.NewObjectID()
	g := clan(leader, []primitive.ObjectID{officer}, leader, officer)
	old := clanUser(leader, g.ID, models.RoleLeader)
	target := clanUser(officer, g.ID, models.RoleOfficer)

	b := cascade.Transfer(g, &old, target)

	got := b.Saves[0].Group
	if !got.IsLeader(officer) || got.HasOfficer(officer) {
		t.Error("target should lead and leave the officer set")
	}
	if !got.HasMember(leader) {
		t.Error("old leader must remain a member")
	}

	for _, uw := range b.Users {
		switch uw.User.ID {
		case leader:
			if uw.User.ClanRole != models.RoleMember {
				t.Errorf("old leader role = %q, want member", uw.User.ClanRole)
			}
		case officer:
			if uw.User.ClanRole != models.RoleLeader {
				t.Errorf("target role = %q, want leader", uw.User.ClanRole)
			}
		}
	}
}

func TestDissolve_ClanClearsUsersAndParentList(t *testing.T) {
	leader := primitive.NewObjectID()
	g := clan(leader, nil, leader)
	fid := primitive.NewObjectID()
	g.ParentFederationID = &fid
	parent := models.Group{
		ID: fid, Kind: models.KindFederation,
		ClanIDs: []primitive.ObjectID{g.ID, primitive.NewObjectID()},
		Version: 5,
	}
	member := clanUser(leader, g.ID, models.RoleLeader)

	b := cascade.Dissolve(g, []models.User{member}, &parent, nil)

	if len(b.Deletes) != 1 || b.Deletes[0].ID != g.ID || b.Deletes[0].Expected != 3 {
		t.Fatalf("bad delete: %+v", b.Deletes)
	}
	if b.Users[0].User.ClanID != nil {
		t.Error("member back-reference not cleared")
	}
	var savedParent *models.Group
	for i := range b.Saves {
		if b.Saves[i].Group.ID == fid {
			savedParent = &b.Saves[i].Group
		}
	}
	if savedParent == nil {
		t.Fatal("parent federation not in batch")
	}
	if savedParent.HasClan(g.ID) {
		t.Error("dissolved clan still listed on federation")
	}
	if len(savedParent.ClanIDs) != 1 {
		t.Error("unrelated clan entries must survive")
	}
}

func TestDissolve_FederationDetachesClansOnly(t *testing.T) {
	leader := primitive.NewObjectID()
	fed := clan(leader, nil, leader)
	fed.Kind = models.KindFederation

	fedID := fed.ID
	childLeader := primitive.NewObjectID()
	child := clan(childLeader, nil, childLeader)
	child.ParentFederationID = &fedID
	fed.ClanIDs = []primitive.ObjectID{child.ID}

	var u models.User
	u.ID = leader
	u.Version = 1
	fid := fed.ID
	u.SetMembership(models.KindFederation, &fid, models.RoleLeader)

	b := cascade.Dissolve(fed, []models.User{u}, nil, []models.Group{child})

	if b.Users[0].User.FederationID != nil {
		t.Error("federation member back-reference not cleared")
	}
	var savedChild *models.Group
	for i := range b.Saves {
		if b.Saves[i].Group.ID == child.ID {
			savedChild = &b.Saves[i].Group
		}
	}
	if savedChild == nil {
		t.Fatal("child clan not in batch")
	}
	if savedChild.ParentFederationID != nil {
		t.Error("child clan still references dissolved federation")
	}
	if !savedChild.IsLeader(childLeader) || len(savedChild.MemberIDs) != 1 {
		t.Error("child clan membership must be untouched")
	}
}

func TestAttachDetach_RoundTrip(t *testing.T) {
	fedLeader := primitive.NewObjectID()
	fed := clan(fedLeader, nil, fedLeader)
	fed.Kind = models.KindFederation
	clanLeader := primitive.NewObjectID()
	c := clan(clanLeader, nil, clanLeader)

	b := cascade.Attach(fed, c)
	var gotFed, gotClan models.Group
	for _, gw := range b.Saves {
		if gw.Group.ID == fed.ID {
			gotFed = gw.Group
		} else {
			gotClan = gw.Group
		}
	}
	if !gotFed.HasClan(c.ID) {
		t.Error("attach: federation does not list clan")
	}
	if gotClan.ParentFederationID == nil || *gotClan.ParentFederationID != fed.ID {
		t.Error("attach: clan does not reference federation")
	}

	b2 := cascade.Detach(gotFed, gotClan)
	for _, gw := range b2.Saves {
		if gw.Group.ID == fed.ID && gw.Group.HasClan(c.ID) {
			t.Error("detach: federation still lists clan")
		}
		if gw.Group.ID == c.ID && gw.Group.ParentFederationID != nil {
			t.Error("detach: clan still references federation")
		}
	}
}

func TestBatch_TouchedCoversAllWrites(t *testing.T) {
	leader := primitive.NewObjectID()
	member := primitive.NewObjectID()
	g := clan(leader, nil, leader, member)
	target := clanUser(member, g.ID, models.RoleMember)

	b := cascade.Remove(g, target, succession.Decision{Outcome: succession.NoOp}, nil)
	touched := b.Touched()

	want := map[primitive.ObjectID]bool{g.ID: true, member: true}
	for _, id := range touched {
		delete(want, id)
	}
	if len(want) != 0 {
		t.Errorf("touched set missing ids: %v", want)
	}
}
