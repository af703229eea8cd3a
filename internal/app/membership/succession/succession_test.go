package succession_test

import (
	"testing"

	"github.com/clanhaven/clanhaven/internal/app/membership/succession"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func group(leader primitive.ObjectID, officers []primitive.ObjectID, members ...primitive.ObjectID) models.Group {
	lid := leader
	return models.Group{
		ID:         primitive.NewObjectID(),
		Kind:       models.KindClan,
		LeaderID:   &lid,
		OfficerIDs: officers,
		MemberIDs:  members,
		Status:     models.StatusActive,
	}
}

func TestResolve_NonLeaderIsNoOp(t *testing.T) {
	leader := primitive.NewObjectID()
	member := primitive.NewObjectID()
	g := group(leader, nil, leader, member)

	dec := succession.Resolve(g, member)
	if dec.Outcome != succession.NoOp {
		t.Fatalf("outcome = %v, want noop", dec.Outcome)
	}
}

func TestResolve_PrefersOfficersOverEarlierMembers(t *testing.T) {
	leader := primitive.NewObjectID()
	plainEarly := primitive.NewObjectID()
	officerLate := primitive.NewObjectID()
	// plainEarly joined before officerLate, but officers win.
	g := group(leader, []primitive.ObjectID{officerLate}, leader, plainEarly, officerLate)

	dec := succession.Resolve(g, leader)
	if dec.Outcome != succession.Promote {
		t.Fatalf("outcome = %v, want promote", dec.Outcome)
	}
	if dec.Successor != officerLate {
		t.Errorf("successor = %s, want the officer %s", dec.Successor.Hex(), officerLate.Hex())
	}
}

func TestResolve_OfficerTieBrokenByJoinOrder(t *testing.T) {
	leader := primitive.NewObjectID()
	officerA := primitive.NewObjectID()
	officerB := primitive.NewObjectID()
	// officerB joined first; officer set order must not matter.
	g := group(leader, []primitive.ObjectID{officerA, officerB}, leader, officerB, officerA)

	dec := succession.Resolve(g, leader)
	if dec.Outcome != succession.Promote || dec.Successor != officerB {
		t.Fatalf("got (%v, %s), want promote of first-joined officer %s",
			dec.Outcome, dec.Successor.Hex(), officerB.Hex())
	}
}

func TestResolve_FallsBackToPlainMembersInJoinOrder(t *testing.T) {
	leader := primitive.NewObjectID()
	memberA := primitive.NewObjectID()
	memberB := primitive.NewObjectID()
	g := group(leader, nil, leader, memberA, memberB)

	dec := succession.Resolve(g, leader)
	if dec.Outcome != succession.Promote || dec.Successor != memberA {
		t.Fatalf("got (%v, %s), want promote of first-joined member %s",
			dec.Outcome, dec.Successor.Hex(), memberA.Hex())
	}
}

func TestResolve_LastMemberDissolves(t *testing.T) {
	leader := primitive.NewObjectID()
	g := group(leader, nil, leader)

	dec := succession.Resolve(g, leader)
	if dec.Outcome != succession.Dissolve {
		t.Fatalf("outcome = %v, want dissolve", dec.Outcome)
	}
}

func TestResolve_DoesNotMutateGroup(t *testing.T) {
	leader := primitive.NewObjectID()
	member := primitive.NewObjectID()
	g := group(leader, nil, leader, member)
	before := len(g.MemberIDs)

	_ = succession.Resolve(g, leader)
	if len(g.MemberIDs) != before || !g.IsLeader(leader) {
		t.Error("Resolve mutated its input group")
	}
}
