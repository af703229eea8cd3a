// internal/app/membership/remove.go
package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/clanhaven/clanhaven/internal/app/membership/cascade"
	"github.com/clanhaven/clanhaven/internal/app/membership/succession"
	"github.com/clanhaven/clanhaven/internal/app/system/events"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// removeOutcome records what a removal did to the group, for the purge
// tally.
type removeOutcome int

const (
	outcomeLeft removeOutcome = iota
	outcomeTransferred
	outcomeDissolved
)

// Leave removes userID from the group at their own request. If the
// departing user leads the group, leadership succession runs; with no
// eligible successor the group dissolves.
func (s *Service) Leave(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := s.removeMember(ctx, groupID, userID, events.MemberLeft)
	return err
}

// Kick removes targetID on behalf of actorID. The current leader cannot be
// kicked; leadership changes only through TransferLeadership or Leave.
// Kicking yourself is rejected: voluntary exit goes through Leave.
func (s *Service) Kick(ctx context.Context, groupID, actorID, targetID primitive.ObjectID) error {
	if actorID == targetID {
		return ErrNotAMember
	}
	_, err := s.removeMember(ctx, groupID, targetID, events.MemberKicked)
	return err
}

func (s *Service) removeMember(ctx context.Context, groupID, targetID primitive.ObjectID, kind events.Kind) (removeOutcome, error) {
	outcome := outcomeLeft
	err := s.withGroup(ctx, groupID, true, func(ctx context.Context, g models.Group) (*cascade.Batch, []events.Event, error) {
		if !g.HasMember(targetID) {
			return nil, nil, ErrNotAMember
		}
		if kind == events.MemberKicked && g.IsLeader(targetID) {
			return nil, nil, ErrCannotKickLeader
		}

		target, err := s.store.User(ctx, targetID)
		if err != nil {
			return nil, nil, err
		}

		batch, evs, out, err := s.removalBatch(ctx, g, target, kind)
		if err != nil {
			return nil, nil, err
		}
		outcome = out
		return batch, evs, nil
	})
	return outcome, err
}

// removalBatch computes the cascade that takes target out of g, running
// leadership succession when the departing member leads the group. kind
// tags the removal event. The caller holds g's lock set.
func (s *Service) removalBatch(ctx context.Context, g models.Group, target models.User, kind events.Kind) (*cascade.Batch, []events.Event, removeOutcome, error) {
	dec := succession.Resolve(g, target.ID)
	switch dec.Outcome {
	case succession.NoOp:
		batch := cascade.Remove(g, target, dec, nil)
		return batch, []events.Event{events.New(kind, g.ID, target.ID)}, outcomeLeft, nil

	case succession.Promote:
		succ, err := s.store.User(ctx, dec.Successor)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// A chosen successor without a user record is a storage
				// inconsistency, not a reason to dissolve the group.
				return nil, nil, outcomeLeft, fmt.Errorf("successor %s: %w", dec.Successor.Hex(), ErrSuccessorMissing)
			}
			return nil, nil, outcomeLeft, err
		}
		batch := cascade.Remove(g, target, dec, &succ)

		left := events.New(kind, g.ID, target.ID)
		handover := events.New(events.LeadershipTransferred, g.ID, target.ID, dec.Successor)
		old, nw := target.ID, dec.Successor
		handover.OldLeaderID = &old
		handover.NewLeaderID = &nw
		return batch, []events.Event{left, handover}, outcomeTransferred, nil

	default: // succession.Dissolve
		batch, err := s.dissolveBatch(ctx, g, []models.User{target})
		if err != nil {
			return nil, nil, outcomeLeft, err
		}
		left := events.New(kind, g.ID, target.ID)
		gone := events.New(events.GroupDissolved, g.ID, target.ID)
		return batch, []events.Event{left, gone}, outcomeDissolved, nil
	}
}

// dissolveBatch assembles the full dissolution cascade for g: clearing the
// given member records, dropping the clan from its parent federation, or
// detaching every child clan from a dissolving federation. members must
// already be loaded; any member id without a loadable record is logged and
// skipped so a single orphaned reference cannot block dissolution.
func (s *Service) dissolveBatch(ctx context.Context, g models.Group, members []models.User) (*cascade.Batch, error) {
	var parent *models.Group
	if g.Kind == models.KindClan && g.ParentFederationID != nil {
		p, err := s.store.Group(ctx, *g.ParentFederationID)
		if err != nil {
			return nil, fmt.Errorf("load parent federation %s: %w", g.ParentFederationID.Hex(), err)
		}
		parent = &p
	}

	var clans []models.Group
	if g.Kind == models.KindFederation {
		for _, cid := range g.ClanIDs {
			c, err := s.store.Group(ctx, cid)
			if err != nil {
				return nil, fmt.Errorf("load child clan %s: %w", cid.Hex(), err)
			}
			clans = append(clans, c)
		}
	}

	return cascade.Dissolve(g, members, parent, clans), nil
}
