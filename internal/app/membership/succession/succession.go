// internal/app/membership/succession/succession.go
package succession

import (
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcome is the decision for a group losing a member.
type Outcome int

const (
	// NoOp: the departing member is not the leader; only the membership
	// sets change.
	NoOp Outcome = iota
	// Promote: the departing member is the leader and Successor should be
	// promoted in their place.
	Promote
	// Dissolve: the departing member is the leader and nobody remains to
	// succeed them; the group must be destroyed.
	Dissolve
)

func (o Outcome) String() string {
	switch o {
	case Promote:
		return "promote"
	case Dissolve:
		return "dissolve"
	default:
		return "noop"
	}
}

// Decision is the resolver's output. Successor is set only for Promote.
type Decision struct {
	Outcome   Outcome
	Successor primitive.ObjectID
}

// Resolve decides what happens to g when departing is removed. Pure: it
// inspects the group and mutates nothing.
//
// Successor choice is deterministic: officers are preferred over plain
// members, and ties are broken by ascending join order (the order of
// MemberIDs). Tests can therefore assert exact outcomes.
//
// Resolve does not distinguish "no eligible successor" from "successor
// record unloadable" — the latter is a storage fault the caller surfaces
// as a distinct error after attempting to load the chosen successor.
func Resolve(g models.Group, departing primitive.ObjectID) Decision {
	if !g.IsLeader(departing) {
		return Decision{Outcome: NoOp}
	}

	// Officers first, in join order.
	for _, m := range g.MemberIDs {
		if m == departing {
			continue
		}
		if g.HasOfficer(m) {
			return Decision{Outcome: Promote, Successor: m}
		}
	}
	// Then plain members, in join order.
	for _, m := range g.MemberIDs {
		if m == departing {
			continue
		}
		return Decision{Outcome: Promote, Successor: m}
	}
	return Decision{Outcome: Dissolve}
}
