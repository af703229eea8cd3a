// internal/app/membership/dissolve.go
package membership

import (
	"context"
	"errors"

	"github.com/clanhaven/clanhaven/internal/app/membership/cascade"
	"github.com/clanhaven/clanhaven/internal/app/system/events"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Dissolve destroys the group administratively, running the same cascade
// as a succession-triggered dissolution: every member's back-reference is
// cleared, a clan is dropped from its federation, a federation detaches
// all of its clans.
func (s *Service) Dissolve(ctx context.Context, groupID primitive.ObjectID) error {
	return s.withGroup(ctx, groupID, true, func(ctx context.Context, g models.Group) (*cascade.Batch, []events.Event, error) {
		members := make([]models.User, 0, len(g.MemberIDs))
		for _, m := range g.MemberIDs {
			u, err := s.store.User(ctx, m)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					// An orphaned member reference must not block an
					// administrative dissolve.
					s.log.Warn("dissolve: member record missing",
						zap.String("group_id", g.ID.Hex()),
						zap.String("user_id", m.Hex()))
					continue
				}
				return nil, nil, err
			}
			members = append(members, u)
		}

		batch, err := s.dissolveBatch(ctx, g, members)
		if err != nil {
			return nil, nil, err
		}
		ev := events.New(events.GroupDissolved, g.ID, g.MemberIDs...)
		return batch, []events.Event{ev}, nil
	})
}
