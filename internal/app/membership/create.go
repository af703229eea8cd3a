// internal/app/membership/create.go
package membership

import (
	"context"
	"time"

	"github.com/clanhaven/clanhaven/internal/app/system/events"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateGroup creates a clan or federation. With a leader the group starts
// active and the leader's membership fields are set in the same logical
// unit; with a nil leader (admin bootstrap) the group starts forming and
// empty, and the first joiner becomes its leader.
func (s *Service) CreateGroup(ctx context.Context, kind models.GroupKind, name, description string, leaderID *primitive.ObjectID) (models.Group, error) {
	now := time.Now().UTC()
	g := models.Group{
		ID:          primitive.NewObjectID(),
		Kind:        kind,
		Name:        name,
		NameCI:      text.Fold(name),
		Description: description,
		Status:      models.StatusForming,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if leaderID == nil {
		if err := s.store.InsertGroup(ctx, g); err != nil {
			return models.Group{}, err
		}
		s.notifier.Notify(ctx, events.New(events.GroupCreated, g.ID))
		s.cache.Invalidate(ctx, g.ID)
		return g, nil
	}

	u, err := s.store.User(ctx, *leaderID)
	if err != nil {
		return models.Group{}, err
	}
	if id, _ := u.Membership(kind); id != nil {
		return models.Group{}, ErrAlreadyInAnotherGroup
	}

	uv := u.Version
	lid := *leaderID
	g.LeaderID = &lid
	g.MemberIDs = []primitive.ObjectID{lid}
	g.Status = models.StatusActive
	u.SetMembership(kind, &g.ID, models.RoleLeader)

	if err := s.store.InsertGroup(ctx, g); err != nil {
		return models.Group{}, err
	}
	if err := s.store.SaveUser(ctx, u, uv); err != nil {
		// The group document landed but the leader back-reference did not.
		s.log.Error("partial cascade write, repair pass required",
			zap.String("stage", "save user"),
			zap.String("entity_id", u.ID.Hex()),
			zap.String("group_id", g.ID.Hex()),
			zap.Error(err))
		return models.Group{}, err
	}

	ev := events.New(events.GroupCreated, g.ID, lid)
	ev.NewLeaderID = &lid
	s.notifier.Notify(ctx, ev)
	s.cache.Invalidate(ctx, g.ID, lid)
	return g, nil
}
