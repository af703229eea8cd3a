// internal/app/membership/transfer.go
package membership

import (
	"context"

	"github.com/clanhaven/clanhaven/internal/app/membership/cascade"
	"github.com/clanhaven/clanhaven/internal/app/system/events"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransferLeadership makes newLeaderID the leader of the group. The
// demoted leader stays on as a plain member; the target leaves the officer
// set if they were in it. Transferring to the current leader is a no-op.
func (s *Service) TransferLeadership(ctx context.Context, groupID, newLeaderID primitive.ObjectID) error {
	return s.withGroup(ctx, groupID, false, func(ctx context.Context, g models.Group) (*cascade.Batch, []events.Event, error) {
		if !g.HasMember(newLeaderID) {
			return nil, nil, ErrTargetNotMember
		}
		if g.IsLeader(newLeaderID) {
			return nil, nil, nil
		}

		target, err := s.store.User(ctx, newLeaderID)
		if err != nil {
			return nil, nil, err
		}

		var oldLeader *models.User
		ev := events.New(events.LeadershipTransferred, g.ID, newLeaderID)
		nw := newLeaderID
		ev.NewLeaderID = &nw
		if g.LeaderID != nil {
			old, err := s.store.User(ctx, *g.LeaderID)
			if err != nil {
				return nil, nil, err
			}
			oldLeader = &old
			oid := old.ID
			ev.OldLeaderID = &oid
			ev.UserIDs = append(ev.UserIDs, oid)
		}

		batch := cascade.Transfer(g, oldLeader, target)
		return batch, []events.Event{ev}, nil
	})
}
