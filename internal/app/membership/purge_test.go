package membership_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/clanhaven/clanhaven/internal/app/membership"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"github.com/clanhaven/clanhaven/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPurge_TallyAcrossGroups(t *testing.T) {
	store := testutil.NewMemStore()
	f := testutil.NewFixtures(t, store)
	svc := newService(store, membership.Config{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := f.CreateUser("Ada")

	// Leads clan A, which has an officer and a plain member to succeed them.
	officer := f.CreateUser("Olga")
	plain := f.CreateUser("Milo")
	clanA := f.CreateClan("Ravens", actor, []models.User{officer}, officer, plain)

	// Plain member of clan B.
	leaderB := f.CreateUser("Boris")
	clanB := f.CreateClan("Wolves", leaderB, nil, actor)

	// Sole member and leader of federation F.
	fed := f.CreateFederation("North Reach", actor, nil)

	res, err := svc.Purge(ctx, actor.ID)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if res.Failed() != 0 {
		t.Fatalf("unexpected purge errors: %+v", res.Errors)
	}

	want := membership.PurgeResult{
		ClansTransferred:     1,
		ClansLeft:            1,
		FederationsDissolved: 1,
	}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("tally = %+v, want %+v", res, want)
	}

	// Clan A survives under the officer.
	a, ok := store.GetGroup(clanA.ID)
	if !ok {
		t.Fatal("clan A dissolved despite having successors")
	}
	if !(&a).IsLeader(officer.ID) {
		t.Errorf("clan A leader = %v, want the officer %s", a.LeaderID, officer.ID.Hex())
	}
	if (&a).HasMember(actor.ID) {
		t.Error("actor still listed in clan A")
	}

	// Clan B keeps its leader and loses the actor.
	b, _ := store.GetGroup(clanB.ID)
	if !(&b).IsLeader(leaderB.ID) || (&b).HasMember(actor.ID) {
		t.Errorf("clan B state wrong after purge: %+v", b)
	}

	// Federation F died with its only member.
	if _, ok := store.GetGroup(fed.ID); ok {
		t.Error("federation still exists after sole member purged")
	}

	// The actor references nothing.
	u, _ := store.GetUser(actor.ID)
	if u.ClanID != nil || u.FederationID != nil || u.ClanRole != "" || u.FederationRole != "" {
		t.Errorf("actor membership fields not cleared: %+v", u)
	}
}

func TestPurge_ErrorIsolation(t *testing.T) {
	store := testutil.NewMemStore()
	f := testutil.NewFixtures(t, store)
	svc := newService(store, membership.Config{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := f.CreateUser("Ada")
	leaderA := f.CreateUser("Lena")
	clanA := f.CreateClan("Ravens", leaderA, nil, actor)
	leaderB := f.CreateUser("Boris")
	clanB := f.CreateClan("Wolves", leaderB, nil, actor)

	boom := errors.New("storage unavailable")
	store.FailGroupLoads(clanA.ID, boom)

	res, err := svc.Purge(ctx, actor.ID)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}

	if res.Failed() != 1 {
		t.Fatalf("failed = %d, want 1: %+v", res.Failed(), res.Errors)
	}
	if res.Errors[0].GroupID != clanA.ID {
		t.Errorf("error recorded for %s, want clan A %s", res.Errors[0].GroupID.Hex(), clanA.ID.Hex())
	}
	if res.ClansLeft != 1 {
		t.Errorf("clansLeft = %d, want 1 (clan B must still be processed)", res.ClansLeft)
	}

	b, _ := store.GetGroup(clanB.ID)
	if (&b).HasMember(actor.ID) {
		t.Error("actor still listed in clan B")
	}
	// Clan A is untouched; the repair pass owns it now.
	a, _ := store.GetGroup(clanA.ID)
	if !(&a).HasMember(actor.ID) {
		t.Error("failed clan was modified")
	}
}

func TestPurge_ClearsResidualFields(t *testing.T) {
	store := testutil.NewMemStore()
	f := testutil.NewFixtures(t, store)
	svc := newService(store, membership.Config{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := f.CreateUser("Ada")
	// Drifted record: points at a clan that no longer lists them.
	ghost := primitive.NewObjectID()
	u, _ := store.GetUser(actor.ID)
	u.SetMembership(models.KindClan, &ghost, models.RoleMember)
	store.PutUser(u)

	res, err := svc.Purge(ctx, actor.ID)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if !reflect.DeepEqual(res, membership.PurgeResult{}) {
		t.Errorf("tally = %+v, want all zero", res)
	}

	after, _ := store.GetUser(actor.ID)
	if after.ClanID != nil || after.ClanRole != "" {
		t.Errorf("residual fields not cleared: %+v", after)
	}
}
