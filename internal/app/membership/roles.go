// internal/app/membership/roles.go
package membership

import (
	"context"

	"github.com/clanhaven/clanhaven/internal/app/membership/cascade"
	"github.com/clanhaven/clanhaven/internal/app/system/events"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Promote raises a plain member to officer. The leader's tier cannot be
// changed while they lead the group.
func (s *Service) Promote(ctx context.Context, groupID, userID primitive.ObjectID) error {
	return s.withGroup(ctx, groupID, false, func(ctx context.Context, g models.Group) (*cascade.Batch, []events.Event, error) {
		if !g.HasMember(userID) {
			return nil, nil, ErrNotAMember
		}
		if g.IsLeader(userID) {
			return nil, nil, ErrCannotModifyLeaderTier
		}
		if g.HasOfficer(userID) {
			return nil, nil, ErrAlreadyOfficer
		}
		u, err := s.store.User(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		batch := cascade.Promote(g, u)
		return batch, []events.Event{events.New(events.OfficerPromoted, g.ID, userID)}, nil
	})
}

// Demote lowers an officer back to plain member.
func (s *Service) Demote(ctx context.Context, groupID, userID primitive.ObjectID) error {
	return s.withGroup(ctx, groupID, false, func(ctx context.Context, g models.Group) (*cascade.Batch, []events.Event, error) {
		if !g.HasMember(userID) {
			return nil, nil, ErrNotAMember
		}
		if g.IsLeader(userID) {
			return nil, nil, ErrCannotModifyLeaderTier
		}
		if !g.HasOfficer(userID) {
			return nil, nil, ErrNotAnOfficer
		}
		u, err := s.store.User(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		batch := cascade.Demote(g, u)
		return batch, []events.Event{events.New(events.OfficerDemoted, g.ID, userID)}, nil
	})
}
