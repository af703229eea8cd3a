// internal/app/store/entities/entitystore.go
package entitystore

import (
	"context"

	"github.com/clanhaven/clanhaven/internal/app/membership"
	groupstore "github.com/clanhaven/clanhaven/internal/app/store/groups"
	userstore "github.com/clanhaven/clanhaven/internal/app/store/users"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Adapter presents the group and user collections to the membership
// engine as one entity store.
type Adapter struct {
	groups *groupstore.Store
	users  *userstore.Store
}

var _ membership.Store = (*Adapter)(nil)

func New(db *mongo.Database) *Adapter {
	return &Adapter{
		groups: groupstore.New(db),
		users:  userstore.New(db),
	}
}

func (a *Adapter) Group(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	return a.groups.GetByID(ctx, id)
}

func (a *Adapter) User(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return a.users.GetByID(ctx, id)
}

func (a *Adapter) InsertGroup(ctx context.Context, g models.Group) error {
	return a.groups.Insert(ctx, g)
}

func (a *Adapter) SaveGroup(ctx context.Context, g models.Group, expected int64) error {
	return a.groups.Save(ctx, g, expected)
}

func (a *Adapter) DeleteGroup(ctx context.Context, id primitive.ObjectID, expected int64) error {
	return a.groups.Delete(ctx, id, expected)
}

func (a *Adapter) SaveUser(ctx context.Context, u models.User, expected int64) error {
	return a.users.Save(ctx, u, expected)
}

func (a *Adapter) GroupsWithMember(ctx context.Context, kind models.GroupKind, userID primitive.ObjectID) ([]models.Group, error) {
	return a.groups.WithMember(ctx, kind, userID)
}

func (a *Adapter) Groups(ctx context.Context) ([]models.Group, error) {
	return a.groups.All(ctx)
}
